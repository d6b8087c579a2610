// Package tokens provides a PostgreSQL-backed repository for the OAuth
// credential used to authenticate against the remote accounting API.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/max-sakeco/xero-sync/internal/common"
	"github.com/max-sakeco/xero-sync/internal/dbx"
	"github.com/max-sakeco/xero-sync/internal/models"
)

// PostgresRepository implements credential storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save upserts the credential keyed on tenant_id.
func (r *PostgresRepository) Save(ctx context.Context, cred *models.Credential) error {
	query := `
		INSERT INTO oauth_tokens (tenant_id, access_token, refresh_token, token_type, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (tenant_id)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			expires_at = EXCLUDED.expires_at,
			updated_at = now();
	`
	if _, err := r.db.ExecContext(ctx, query,
		cred.TenantID, cred.AccessToken, cred.RefreshToken, cred.TokenType, cred.ExpiresAt); err != nil {
		return fmt.Errorf("%w: saving credential: %v", common.ErrPersistence, err)
	}
	return nil
}

// Load returns the most recently updated credential row.
// If none exists, it returns common.ErrNotFound.
func (r *PostgresRepository) Load(ctx context.Context) (*models.Credential, error) {
	query := `
		SELECT tenant_id, access_token, refresh_token, token_type, expires_at, updated_at
		FROM oauth_tokens
		ORDER BY updated_at DESC
		LIMIT 1
	`
	cred := &models.Credential{}
	if err := r.db.QueryRowContext(ctx, query).Scan(
		&cred.TenantID, &cred.AccessToken, &cred.RefreshToken,
		&cred.TokenType, &cred.ExpiresAt, &cred.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: loading credential: %v", common.ErrPersistence, err)
	}
	return cred, nil
}
