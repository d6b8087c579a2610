package models

import "time"

// Contact is a normalized Xero contact. (ContactID, TenantID) is the
// upsert key.
type Contact struct {
	ContactID      string
	TenantID       string
	Name           *string
	EmailAddress   *string
	Status         *string
	UpdatedDateUTC *time.Time
}
