package einvoice

import "github.com/shopspring/decimal"

// Dialect names the adapter that produced a NormalizedInvoice.
type Dialect string

const (
	DialectUBL       Dialect = "ubl"
	DialectGeneric   Dialect = "generic"
	DialectHeuristic Dialect = "heuristic"
)

// TotalsSource says where the invoice totals came from.
type TotalsSource string

const (
	TotalsFromDocument TotalsSource = "document"
	TotalsFromItems    TotalsSource = "items"
)

// NormalizedInvoice is the dialect-independent shape every adapter produces.
// Unknown optional strings are nil so they serialize as JSON null.
type NormalizedInvoice struct {
	Supplier Supplier `json:"supplier"`
	Invoice  Header   `json:"invoice"`
	Items    []Item   `json:"items"`
	Totals   Totals   `json:"totals"`
}

type Supplier struct {
	TaxID   *string `json:"tax_id"`
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type Header struct {
	Number    *string `json:"number"`
	IssueDate *string `json:"issue_date"`
	DueDate   *string `json:"due_date"`
}

type Item struct {
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TaxPercentage decimal.Decimal `json:"tax_percentage"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
}

type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Source        TotalsSource    `json:"source"`
	Discrepancies []string        `json:"discrepancies"`
}

// Result is what the detector returns: the invoice plus how it was read.
type Result struct {
	Invoice *NormalizedInvoice
	Dialect Dialect
	// EnvelopeDepth counts the envelopes unwrapped to reach the document.
	EnvelopeDepth int
}

// SupplierName returns the supplier name or "".
func (inv *NormalizedInvoice) SupplierName() string { return deref(inv.Supplier.Name) }

// Number returns the invoice number or "".
func (inv *NormalizedInvoice) Number() string { return deref(inv.Invoice.Number) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional turns "" into nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
