// Package contacts declares the repository contract for normalized
// contact storage.
package contacts

import (
	"context"

	"github.com/max-sakeco/xero-sync/internal/models"
)

// Repository defines upsert access to normalized contacts.
type Repository interface {
	// Upsert inserts or updates a contact keyed on (contact_id, tenant_id).
	// The returned flag reports whether a new row was inserted.
	Upsert(ctx context.Context, contact *models.Contact) (created bool, err error)
}
