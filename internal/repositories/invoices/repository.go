// Package invoices declares the repository contract for normalized
// invoice and line item storage.
package invoices

import (
	"context"
	"time"

	"github.com/max-sakeco/xero-sync/internal/models"
)

// Repository defines upsert access to normalized invoices and their
// line items, plus the watermark fallback query.
type Repository interface {
	// Upsert inserts or updates an invoice keyed on (invoice_id, tenant_id).
	// The returned flag reports whether a new row was inserted.
	Upsert(ctx context.Context, invoice *models.Invoice) (created bool, err error)

	// UpsertLineItem inserts or updates a line item keyed on
	// (invoice_id, line_item_id).
	UpsertLineItem(ctx context.Context, item *models.InvoiceLineItem) (created bool, err error)

	// EarliestUpdated returns the earliest updated_date_utc already stored,
	// used as the incremental watermark when no successful run is recorded.
	// Returns common.ErrNotFound when the table holds no timestamped rows.
	EarliestUpdated(ctx context.Context) (time.Time, error)
}
