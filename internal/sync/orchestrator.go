// Package sync drives one end-to-end sync run: watermark resolution,
// paginated fetch, per-record transform and upsert, run statistics, and
// run-record finalization.
package sync

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/max-sakeco/xero-sync/internal/common"
	"github.com/max-sakeco/xero-sync/internal/dbx"
	"github.com/max-sakeco/xero-sync/internal/logging"
	"github.com/max-sakeco/xero-sync/internal/models"
	"github.com/max-sakeco/xero-sync/internal/repositories/repomanager"
	"github.com/max-sakeco/xero-sync/internal/transform"
	"github.com/max-sakeco/xero-sync/internal/xero"
)

// SessionManager supplies a valid, non-expired credential.
type SessionManager interface {
	EnsureValid(ctx context.Context) (*models.Credential, error)
}

// Fetcher retrieves raw resource collections from the remote API.
type Fetcher interface {
	FetchContacts(ctx context.Context, cred *models.Credential, modifiedSince *time.Time) ([]xero.Contact, error)
	FetchInvoices(ctx context.Context, cred *models.Credential, modifiedSince *time.Time) ([]xero.Invoice, error)
}

// Stats accumulates per-run counters. Processed can exceed Created+Updated
// when individual records fail; those failures never abort the run.
type Stats struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`

	ItemsProcessed int `json:"items_processed"`
	ItemsCreated   int `json:"items_created"`
	ItemsUpdated   int `json:"items_updated"`
}

// Result summarizes one sync run for the trigger surface.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Stats   Stats  `json:"stats"`
}

// Orchestrator coordinates the sync components. A single Orchestrator
// allows one run at a time; concurrent triggers are rejected.
type Orchestrator struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	session SessionManager
	fetcher Fetcher
	logger  logging.Logger

	active atomic.Bool

	// inTx runs fn inside one transaction; swappable in tests
	inTx func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
}

// NewOrchestrator constructs an Orchestrator over the given collaborators.
func NewOrchestrator(db *sql.DB, repos repomanager.RepositoryManager, session SessionManager, fetcher Fetcher, logger logging.Logger) *Orchestrator {
	o := &Orchestrator{
		db:      db,
		repos:   repos,
		session: session,
		fetcher: fetcher,
		logger:  logger,
	}
	o.inTx = func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
		return dbx.WithTx(ctx, o.db, nil, fn)
	}
	return o
}

// Run executes one sync. forceFull skips the incremental watermark and
// fetches the complete remote dataset. A second concurrent invocation
// returns common.ErrSyncInProgress without creating a run record.
func (o *Orchestrator) Run(ctx context.Context, forceFull bool) (*Result, error) {
	if !o.active.CompareAndSwap(false, true) {
		return nil, common.ErrSyncInProgress
	}
	defer o.active.Store(false)

	runs := o.repos.SyncRuns(o.db)

	run := &models.SyncRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    models.RunInProgress,
	}
	if err := runs.Create(ctx, run); err != nil {
		o.logger.Error(ctx, "failed to create sync run record", "error", err)
		return &Result{Success: false, Error: err.Error()}, nil
	}

	stats := &Stats{}
	runErr := o.execute(ctx, forceFull, stats)

	// Finalization must not throw past this point; a persistence failure
	// here is logged and swallowed.
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.RecordsProcessed = stats.Processed
	run.RecordsCreated = stats.Created
	run.RecordsUpdated = stats.Updated
	run.ItemsProcessed = stats.ItemsProcessed
	run.ItemsCreated = stats.ItemsCreated
	run.ItemsUpdated = stats.ItemsUpdated
	if runErr != nil {
		msg := runErr.Error()
		run.Status = models.RunError
		run.ErrorMessage = &msg
	} else {
		run.Status = models.RunSuccess
	}
	if err := runs.Finish(ctx, run); err != nil {
		o.logger.Error(ctx, "failed to finalize sync run record", "run_id", run.ID, "error", err)
	}

	result := &Result{Success: runErr == nil, Stats: *stats}
	if runErr != nil {
		result.Error = runErr.Error()
		o.logger.Error(ctx, "sync run failed", "run_id", run.ID, "error", runErr)
	} else {
		o.logger.Info(ctx, "sync run finished", "run_id", run.ID,
			"processed", stats.Processed, "created", stats.Created, "updated", stats.Updated,
			"items_processed", stats.ItemsProcessed)
	}
	return result, nil
}

// execute performs the fetch/transform/upsert phases. Auth and fetch errors
// abort the run; record-level errors are isolated and counted.
func (o *Orchestrator) execute(ctx context.Context, forceFull bool, stats *Stats) error {
	cred, err := o.session.EnsureValid(ctx)
	if err != nil {
		return err
	}

	var since *time.Time
	if forceFull {
		o.logger.Info(ctx, "full sync initiated")
	} else {
		since = o.watermark(ctx)
		if since != nil {
			o.logger.Info(ctx, "incremental sync", "modified_since", since.UTC())
		} else {
			o.logger.Info(ctx, "no watermark found, full sync initiated")
		}
	}

	// Contacts first: invoices reference them.
	rawContacts, err := o.fetcher.FetchContacts(ctx, cred, since)
	if err != nil {
		return err
	}
	o.upsertContacts(ctx, cred.TenantID, rawContacts, stats)

	rawInvoices, err := o.fetcher.FetchInvoices(ctx, cred, since)
	if err != nil {
		return err
	}
	o.upsertInvoices(ctx, cred.TenantID, rawInvoices, stats)

	return nil
}

// watermark resolves the incremental boundary: the last successful run's
// finish instant, falling back to the earliest stored invoice timestamp.
// Absence of both, or a lookup failure, means full sync.
func (o *Orchestrator) watermark(ctx context.Context) *time.Time {
	finished, err := o.repos.SyncRuns(o.db).LastSuccessfulFinish(ctx)
	if err == nil {
		return &finished
	}
	if !errors.Is(err, common.ErrNotFound) {
		o.logger.Warn(ctx, "failed to load last successful run, falling back to full sync", "error", err)
		return nil
	}

	earliest, err := o.repos.Invoices(o.db).EarliestUpdated(ctx)
	if err == nil {
		return &earliest
	}
	if !errors.Is(err, common.ErrNotFound) {
		o.logger.Warn(ctx, "failed to load earliest invoice timestamp, falling back to full sync", "error", err)
	}
	return nil
}

func (o *Orchestrator) upsertContacts(ctx context.Context, tenantID string, raw []xero.Contact, stats *Stats) {
	repo := o.repos.Contacts(o.db)
	for i := range raw {
		stats.Processed++

		contact, warnings := transform.Contact(&raw[i], tenantID)
		for _, w := range warnings {
			o.logger.Warn(ctx, "transform warning", "warning", w)
		}

		created, err := repo.Upsert(ctx, contact)
		if err != nil {
			o.logger.Error(ctx, "failed to upsert contact", "contact_id", contact.ContactID, "error", err)
			continue
		}
		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
	}
}

// upsertInvoices writes each invoice together with its line items in one
// transaction, so a stored invoice never lacks its items. A failed invoice
// rolls back alone and the run moves on.
func (o *Orchestrator) upsertInvoices(ctx context.Context, tenantID string, raw []xero.Invoice, stats *Stats) {
	for i := range raw {
		stats.Processed++

		invoice, items, warnings := transform.Invoice(&raw[i], tenantID)
		for _, w := range warnings {
			o.logger.Warn(ctx, "transform warning", "warning", w)
		}

		var created bool
		var itemsCreated, itemsUpdated int
		err := o.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			repo := o.repos.Invoices(tx)

			var err error
			created, err = repo.Upsert(ctx, invoice)
			if err != nil {
				return err
			}

			for _, item := range items {
				itemCreated, err := repo.UpsertLineItem(ctx, item)
				if err != nil {
					return err
				}
				if itemCreated {
					itemsCreated++
				} else {
					itemsUpdated++
				}
			}
			return nil
		})
		if err != nil {
			o.logger.Error(ctx, "failed to upsert invoice", "invoice_id", invoice.InvoiceID, "error", err)
			continue
		}

		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
		stats.ItemsProcessed += len(items)
		stats.ItemsCreated += itemsCreated
		stats.ItemsUpdated += itemsUpdated
	}
}
