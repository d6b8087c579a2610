// Package transform converts raw Xero wire records into the normalized
// storage schema. It performs no I/O; malformed fields degrade to nil
// values and per-record warnings instead of errors.
package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Xero encodes timestamps as "/Date(1700000000000+0000)/": milliseconds
// since the Unix epoch with an optional fixed offset suffix.
var xeroDateRe = regexp.MustCompile(`^/Date\((-?\d+)(?:[+-]\d{4})?\)/$`)

// ParseDateTime parses a Xero embedded-epoch date string into a UTC instant.
// Empty or malformed input yields nil and a warning message.
func ParseDateTime(s string) (*time.Time, string) {
	if s == "" {
		return nil, ""
	}
	m := xeroDateRe.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Sprintf("unparseable date %q", s)
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, fmt.Sprintf("unparseable date %q: %v", s, err)
	}
	t := time.UnixMilli(ms).UTC()
	return &t, ""
}

// ParseDate parses a Xero embedded-epoch date string and truncates it to a
// date-only value (UTC midnight), for DATE destination columns.
func ParseDate(s string) (*time.Time, string) {
	t, warn := ParseDateTime(s)
	if t == nil {
		return nil, warn
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d, ""
}
