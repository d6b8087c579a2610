// Package contacts provides a PostgreSQL-backed repository for normalized
// contact records.
package contacts

import (
	"context"
	"fmt"

	"github.com/max-sakeco/xero-sync/internal/common"
	"github.com/max-sakeco/xero-sync/internal/dbx"
	"github.com/max-sakeco/xero-sync/internal/models"
)

// PostgresRepository implements contact storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or updates a contact keyed on (contact_id, tenant_id).
// xmax = 0 holds only for freshly inserted rows, which gives an exact
// created-vs-updated signal.
func (r *PostgresRepository) Upsert(ctx context.Context, contact *models.Contact) (bool, error) {
	query := `
		INSERT INTO contacts (contact_id, tenant_id, name, email_address, status, updated_date_utc, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (contact_id, tenant_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			email_address = EXCLUDED.email_address,
			status = EXCLUDED.status,
			updated_date_utc = EXCLUDED.updated_date_utc,
			updated_at = now()
		RETURNING (xmax = 0);
	`
	var created bool
	if err := r.db.QueryRowContext(ctx, query,
		contact.ContactID, contact.TenantID, contact.Name, contact.EmailAddress,
		contact.Status, contact.UpdatedDateUTC,
	).Scan(&created); err != nil {
		return false, fmt.Errorf("%w: upserting contact %s: %v", common.ErrPersistence, contact.ContactID, err)
	}
	return created, nil
}
