// Package tokens declares the repository contract for persisting the
// OAuth credential set in storage.
package tokens

import (
	"context"

	"github.com/max-sakeco/xero-sync/internal/models"
)

// Repository defines operations for storing and retrieving the current
// OAuth credential.
type Repository interface {
	// Save persists the credential, replacing any prior value stored for
	// the same tenant. The write is a single upsert statement, so a
	// concurrent reader never observes a half-written credential.
	Save(ctx context.Context, cred *models.Credential) error

	// Load returns the most recently saved credential. Implementations
	// return common.ErrNotFound when no credential has ever been stored;
	// storage failures wrap common.ErrPersistence.
	Load(ctx context.Context) (*models.Credential, error)
}
