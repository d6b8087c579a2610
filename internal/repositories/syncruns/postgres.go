// Package syncruns provides a PostgreSQL-backed repository for the sync
// run history.
package syncruns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/max-sakeco/xero-sync/internal/common"
	"github.com/max-sakeco/xero-sync/internal/dbx"
	"github.com/max-sakeco/xero-sync/internal/models"
)

// PostgresRepository implements run log storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new in-progress run row.
func (r *PostgresRepository) Create(ctx context.Context, run *models.SyncRun) error {
	query := `
		INSERT INTO sync_runs (id, started_at, status)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, run.ID, run.StartedAt, run.Status); err != nil {
		return fmt.Errorf("%w: creating sync run: %v", common.ErrPersistence, err)
	}
	return nil
}

// Finish records the outcome of a run.
func (r *PostgresRepository) Finish(ctx context.Context, run *models.SyncRun) error {
	query := `
		UPDATE sync_runs
		SET finished_at = $2,
			status = $3,
			error_message = $4,
			records_processed = $5,
			records_created = $6,
			records_updated = $7,
			items_processed = $8,
			items_created = $9,
			items_updated = $10
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query,
		run.ID, run.FinishedAt, run.Status, run.ErrorMessage,
		run.RecordsProcessed, run.RecordsCreated, run.RecordsUpdated,
		run.ItemsProcessed, run.ItemsCreated, run.ItemsUpdated); err != nil {
		return fmt.Errorf("%w: finishing sync run: %v", common.ErrPersistence, err)
	}
	return nil
}

// LastSuccessfulFinish returns the finish instant of the newest successful run.
// If no run ever succeeded, it returns common.ErrNotFound.
func (r *PostgresRepository) LastSuccessfulFinish(ctx context.Context) (time.Time, error) {
	query := `
		SELECT finished_at
		FROM sync_runs
		WHERE status = 'success' AND finished_at IS NOT NULL
		ORDER BY finished_at DESC
		LIMIT 1
	`
	var finished time.Time
	if err := r.db.QueryRowContext(ctx, query).Scan(&finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, common.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("%w: loading last successful run: %v", common.ErrPersistence, err)
	}
	return finished, nil
}
