package transform

import (
	"fmt"

	"github.com/max-sakeco/xero-sync/internal/models"
	"github.com/max-sakeco/xero-sync/internal/xero"
)

// nullable maps a missing optional string to NULL rather than "", so empty
// values never collide with real data in the destination schema.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Contact maps one raw contact to its normalized form. The returned warnings
// describe fields that could not be normalized; they never fail the record.
func Contact(raw *xero.Contact, tenantID string) (*models.Contact, []string) {
	var warnings []string

	updated, warn := ParseDateTime(raw.UpdatedDateUTC)
	if warn != "" {
		warnings = append(warnings, fmt.Sprintf("contact %s: %s", raw.ContactID, warn))
	}

	return &models.Contact{
		ContactID:      raw.ContactID,
		TenantID:       tenantID,
		Name:           nullable(raw.Name),
		EmailAddress:   nullable(raw.EmailAddress),
		Status:         nullable(raw.ContactStatus),
		UpdatedDateUTC: updated,
	}, warnings
}

// Invoice maps one raw invoice and its nested line items to normalized form.
// Date and DueDate go through the date-only path, UpdatedDateUTC through the
// full-instant path. Amounts pass through as decimals.
func Invoice(raw *xero.Invoice, tenantID string) (*models.Invoice, []*models.InvoiceLineItem, []string) {
	var warnings []string

	collect := func(field, warn string) {
		if warn != "" {
			warnings = append(warnings, fmt.Sprintf("invoice %s: %s: %s", raw.InvoiceID, field, warn))
		}
	}

	issueDate, warn := ParseDate(raw.Date)
	collect("Date", warn)
	dueDate, warn := ParseDate(raw.DueDate)
	collect("DueDate", warn)
	updated, warn := ParseDateTime(raw.UpdatedDateUTC)
	collect("UpdatedDateUTC", warn)

	invoice := &models.Invoice{
		InvoiceID:      raw.InvoiceID,
		TenantID:       tenantID,
		InvoiceNumber:  nullable(raw.InvoiceNumber),
		Reference:      nullable(raw.Reference),
		Type:           nullable(raw.Type),
		Status:         nullable(raw.Status),
		ContactID:      nullable(raw.Contact.ContactID),
		ContactName:    nullable(raw.Contact.Name),
		CurrencyCode:   nullable(raw.CurrencyCode),
		IssueDate:      issueDate,
		DueDate:        dueDate,
		UpdatedDateUTC: updated,
		SubTotal:       raw.SubTotal,
		TotalTax:       raw.TotalTax,
		Total:          raw.Total,
		AmountDue:      raw.AmountDue,
		AmountPaid:     raw.AmountPaid,
		AmountCredited: raw.AmountCredited,
	}

	items := make([]*models.InvoiceLineItem, 0, len(raw.LineItems))
	for _, li := range raw.LineItems {
		items = append(items, &models.InvoiceLineItem{
			LineItemID:  li.LineItemID,
			InvoiceID:   raw.InvoiceID,
			TenantID:    tenantID,
			Description: nullable(li.Description),
			AccountCode: nullable(li.AccountCode),
			TaxType:     nullable(li.TaxType),
			ItemCode:    nullable(li.ItemCode),
			Quantity:    li.Quantity,
			UnitAmount:  li.UnitAmount,
			TaxAmount:   li.TaxAmount,
			LineAmount:  li.LineAmount,
		})
	}

	return invoice, items, warnings
}
