// Package invoices provides a PostgreSQL-backed repository for normalized
// invoice records and their line items.
package invoices

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

// PostgresRepository implements invoice storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or updates an invoice keyed on (invoice_id, tenant_id).
// xmax = 0 holds only for freshly inserted rows, which gives an exact
// created-vs-updated signal.
func (r *PostgresRepository) Upsert(ctx context.Context, invoice *models.Invoice) (bool, error) {
	query := `
		INSERT INTO invoices (
			invoice_id, tenant_id, invoice_number, reference, type, status,
			contact_id, contact_name, currency_code, issue_date, due_date, updated_date_utc,
			sub_total, total_tax, total, amount_due, amount_paid, amount_credited, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now())
		ON CONFLICT (invoice_id, tenant_id)
		DO UPDATE SET
			invoice_number = EXCLUDED.invoice_number,
			reference = EXCLUDED.reference,
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			contact_id = EXCLUDED.contact_id,
			contact_name = EXCLUDED.contact_name,
			currency_code = EXCLUDED.currency_code,
			issue_date = EXCLUDED.issue_date,
			due_date = EXCLUDED.due_date,
			updated_date_utc = EXCLUDED.updated_date_utc,
			sub_total = EXCLUDED.sub_total,
			total_tax = EXCLUDED.total_tax,
			total = EXCLUDED.total,
			amount_due = EXCLUDED.amount_due,
			amount_paid = EXCLUDED.amount_paid,
			amount_credited = EXCLUDED.amount_credited,
			updated_at = now()
		RETURNING (xmax = 0);
	`
	var created bool
	if err := r.db.QueryRowContext(ctx, query,
		invoice.InvoiceID, invoice.TenantID, invoice.InvoiceNumber, invoice.Reference,
		invoice.Type, invoice.Status, invoice.ContactID, invoice.ContactName,
		invoice.CurrencyCode, invoice.IssueDate, invoice.DueDate, invoice.UpdatedDateUTC,
		invoice.SubTotal, invoice.TotalTax, invoice.Total,
		invoice.AmountDue, invoice.AmountPaid, invoice.AmountCredited,
	).Scan(&created); err != nil {
		return false, fmt.Errorf("%w: upserting invoice %s: %v", common.ErrPersistence, invoice.InvoiceID, err)
	}
	return created, nil
}

// UpsertLineItem inserts or updates a line item keyed on (invoice_id, line_item_id).
func (r *PostgresRepository) UpsertLineItem(ctx context.Context, item *models.InvoiceLineItem) (bool, error) {
	query := `
		INSERT INTO invoice_line_items (
			line_item_id, invoice_id, tenant_id, description, account_code, tax_type, item_code,
			quantity, unit_amount, tax_amount, line_amount, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (invoice_id, line_item_id)
		DO UPDATE SET
			description = EXCLUDED.description,
			account_code = EXCLUDED.account_code,
			tax_type = EXCLUDED.tax_type,
			item_code = EXCLUDED.item_code,
			quantity = EXCLUDED.quantity,
			unit_amount = EXCLUDED.unit_amount,
			tax_amount = EXCLUDED.tax_amount,
			line_amount = EXCLUDED.line_amount,
			updated_at = now()
		RETURNING (xmax = 0);
	`
	var created bool
	if err := r.db.QueryRowContext(ctx, query,
		item.LineItemID, item.InvoiceID, item.TenantID, item.Description,
		item.AccountCode, item.TaxType, item.ItemCode,
		item.Quantity, item.UnitAmount, item.TaxAmount, item.LineAmount,
	).Scan(&created); err != nil {
		return false, fmt.Errorf("%w: upserting line item %s: %v", common.ErrPersistence, item.LineItemID, err)
	}
	return created, nil
}

// EarliestUpdated returns the earliest stored updated_date_utc.
// If no timestamped invoices exist, it returns common.ErrNotFound.
func (r *PostgresRepository) EarliestUpdated(ctx context.Context) (time.Time, error) {
	query := `
		SELECT updated_date_utc
		FROM invoices
		WHERE updated_date_utc IS NOT NULL
		ORDER BY updated_date_utc ASC
		LIMIT 1
	`
	var updated time.Time
	if err := r.db.QueryRowContext(ctx, query).Scan(&updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, common.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("%w: loading earliest invoice timestamp: %v", common.ErrPersistence, err)
	}
	return updated, nil
}
