package xero

import "github.com/shopspring/decimal"

// Wire types mirroring the JSON the Xero accounting API returns. Dates stay
// raw strings ("/Date(ms+0000)/") until the transform layer normalizes them;
// amounts decode straight into decimals, never through float64.

// ContactRef is the one-level contact reference embedded in an invoice.
type ContactRef struct {
	ContactID string `json:"ContactID"`
	Name      string `json:"Name"`
}

// Contact is a raw contact record from GET /Contacts.
type Contact struct {
	ContactID      string `json:"ContactID"`
	Name           string `json:"Name"`
	EmailAddress   string `json:"EmailAddress"`
	ContactStatus  string `json:"ContactStatus"`
	UpdatedDateUTC string `json:"UpdatedDateUTC"`
}

// LineItem is one billed row nested inside a raw invoice.
type LineItem struct {
	LineItemID  string          `json:"LineItemID"`
	Description string          `json:"Description"`
	Quantity    decimal.Decimal `json:"Quantity"`
	UnitAmount  decimal.Decimal `json:"UnitAmount"`
	TaxAmount   decimal.Decimal `json:"TaxAmount"`
	LineAmount  decimal.Decimal `json:"LineAmount"`
	AccountCode string          `json:"AccountCode"`
	TaxType     string          `json:"TaxType"`
	ItemCode    string          `json:"ItemCode"`
}

// Invoice is a raw invoice record from GET /Invoices.
type Invoice struct {
	InvoiceID      string          `json:"InvoiceID"`
	InvoiceNumber  string          `json:"InvoiceNumber"`
	Reference      string          `json:"Reference"`
	Type           string          `json:"Type"`
	Status         string          `json:"Status"`
	Contact        ContactRef      `json:"Contact"`
	Date           string          `json:"Date"`
	DueDate        string          `json:"DueDate"`
	UpdatedDateUTC string          `json:"UpdatedDateUTC"`
	CurrencyCode   string          `json:"CurrencyCode"`
	SubTotal       decimal.Decimal `json:"SubTotal"`
	TotalTax       decimal.Decimal `json:"TotalTax"`
	Total          decimal.Decimal `json:"Total"`
	AmountDue      decimal.Decimal `json:"AmountDue"`
	AmountPaid     decimal.Decimal `json:"AmountPaid"`
	AmountCredited decimal.Decimal `json:"AmountCredited"`
	LineItems      []LineItem      `json:"LineItems"`
}
