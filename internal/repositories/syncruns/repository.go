// Package syncruns declares the repository contract for the append-only
// sync run history used for incremental-sync bookkeeping.
package syncruns

import (
	"context"
	"time"

	"github.com/max-sakeco/xero-sync/internal/models"
)

// Repository defines operations over the sync run log.
type Repository interface {
	// Create inserts a new run row in status in_progress.
	Create(ctx context.Context, run *models.SyncRun) error

	// Finish writes end time, final status, error message and the
	// accumulated counters for the given run. Called exactly once per run.
	Finish(ctx context.Context, run *models.SyncRun) error

	// LastSuccessfulFinish returns the finish instant of the most recent
	// successful run, or common.ErrNotFound when no run ever succeeded.
	LastSuccessfulFinish(ctx context.Context) (time.Time, error)
}
