package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a normalized Xero invoice. (InvoiceID, TenantID) is the
// upsert key. IssueDate and DueDate carry date-only values; UpdatedDateUTC
// is a full instant. Amounts stay decimal end to end.
type Invoice struct {
	InvoiceID      string
	TenantID       string
	InvoiceNumber  *string
	Reference      *string
	Type           *string
	Status         *string
	ContactID      *string
	ContactName    *string
	CurrencyCode   *string
	IssueDate      *time.Time
	DueDate        *time.Time
	UpdatedDateUTC *time.Time

	SubTotal       decimal.Decimal
	TotalTax       decimal.Decimal
	Total          decimal.Decimal
	AmountDue      decimal.Decimal
	AmountPaid     decimal.Decimal
	AmountCredited decimal.Decimal
}

// InvoiceLineItem is one billed row of an invoice.
// (InvoiceID, LineItemID) is the upsert key.
type InvoiceLineItem struct {
	LineItemID  string
	InvoiceID   string
	TenantID    string
	Description *string
	AccountCode *string
	TaxType     *string
	ItemCode    *string

	Quantity   decimal.Decimal
	UnitAmount decimal.Decimal
	TaxAmount  decimal.Decimal
	LineAmount decimal.Decimal
}
