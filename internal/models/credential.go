// Package models defines data models persisted in the database.
package models

import "time"

// Credential is the current OAuth credential set for one Xero tenant.
// Exactly one row exists per tenant; it is replaced on every refresh.
type Credential struct {
	TenantID     string
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}
