// Package export renders an import preview as CSV or XLSX for review
// outside the application.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoicebridge/internal/service"
)

// columns defines the header row shared by every format.
var columns = []string{
	"Invoice Number",
	"Issue Date",
	"Supplier Name",
	"Supplier Tax ID",
	"Line",
	"SKU",
	"Description",
	"Quantity",
	"Unit Price",
	"Tax %",
	"Tax Amount",
	"Subtotal",
	"Total",
	"Removed",
	"Matched By",
	"New Product",
	"Sale Price",
}

// cell is one exported value. Amounts stay decimals so XLSX can store them
// as numbers.
type cell struct {
	text   string
	amount *decimal.Decimal
}

func textCell(s string) cell { return cell{text: s} }

func amountCell(d decimal.Decimal) cell { return cell{amount: &d} }

func (c cell) String() string {
	if c.amount != nil {
		return c.amount.StringFixed(2)
	}
	return c.text
}

// previewRows converts every previewed item, removed ones included, into a row.
func previewRows(p *service.PreviewResult) [][]cell {
	var number, issued, taxID string
	if inv := p.Invoice; inv != nil {
		number = inv.Number()
		issued = stringOrEmpty(inv.Invoice.IssueDate)
		taxID = stringOrEmpty(inv.Supplier.TaxID)
	}
	supplier := p.SupplierName

	rows := make([][]cell, 0, len(p.Items))
	for _, it := range p.Items {
		rows = append(rows, []cell{
			textCell(number),
			textCell(issued),
			textCell(supplier),
			textCell(taxID),
			textCell(fmt.Sprintf("%d", it.SourceIndex+1)),
			textCell(it.Item.SKU),
			textCell(it.Item.Name),
			textCell(it.Item.Quantity.String()),
			amountCell(it.Item.UnitPrice),
			textCell(it.Item.TaxPercentage.String()),
			amountCell(it.Item.TaxAmount),
			amountCell(it.Item.Subtotal),
			amountCell(it.Item.Total),
			textCell(formatBool(it.Removed)),
			textCell(it.MatchedBy),
			textCell(formatBool(it.NewProduct)),
			saleCell(it),
		})
	}
	return rows
}

func saleCell(it service.PreviewItem) cell {
	if it.Removed {
		return textCell("")
	}
	return amountCell(it.SalePrice)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func invoiceNumber(p *service.PreviewResult) string {
	if p.Invoice == nil {
		return ""
	}
	return p.Invoice.Number()
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans an invoice number for use in a file name.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_invoice_number}_{YYYY-MM-DD}.{ext}.
func BuildFilename(invoiceNumber, ext string) string {
	sanitized := SanitizeFilename(invoiceNumber)
	if sanitized == "" {
		sanitized = "invoice"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
