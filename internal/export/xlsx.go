package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invoicebridge/internal/service"
)

const (
	itemsSheet   = "Items"
	summarySheet = "Summary"
)

// WriteXLSX writes a workbook with the previewed items on one sheet and the
// purchase totals on another.
func WriteXLSX(out io.Writer, p *service.PreviewResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// NewFile starts with "Sheet1".
	if err := f.SetSheetName("Sheet1", itemsSheet); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}

	for i, h := range columns {
		if err := setCell(f, itemsSheet, i+1, 1, h); err != nil {
			return err
		}
	}
	for r, row := range previewRows(p) {
		for col, c := range row {
			var v interface{} = c.text
			if c.amount != nil {
				v = c.amount.InexactFloat64()
			}
			if err := setCell(f, itemsSheet, col+1, r+2, v); err != nil {
				return err
			}
		}
	}

	summary := []struct {
		label string
		value interface{}
	}{
		{"Invoice Number", invoiceNumber(p)},
		{"Supplier", p.SupplierName},
		{"Dialect", string(p.Dialect)},
		{"Valid", formatBool(p.Valid)},
		{"Duplicate", formatBool(p.IsDuplicate)},
		{"Profit Margin %", p.ProfitMargin.InexactFloat64()},
		{"Subtotal", p.Subtotal.InexactFloat64()},
		{"Tax", p.TaxTotal.InexactFloat64()},
		{"Shipping", p.ShippingCost.InexactFloat64()},
		{"Discount", p.DiscountAmount.InexactFloat64()},
		{"Total", p.Total.InexactFloat64()},
	}
	for i, s := range summary {
		if err := setCell(f, summarySheet, 1, i+1, s.label); err != nil {
			return err
		}
		if err := setCell(f, summarySheet, 2, i+1, s.value); err != nil {
			return err
		}
	}

	idx, err := f.GetSheetIndex(itemsSheet)
	if err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	f.SetActiveSheet(idx)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("export.WriteXLSX: writing workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, v interface{}) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("export.setCell: %w", err)
	}
	if err := f.SetCellValue(sheet, name, v); err != nil {
		return fmt.Errorf("export.setCell %s!%s: %w", sheet, name, err)
	}
	return nil
}
