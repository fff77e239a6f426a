package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicebridge/internal/config"
	"invoicebridge/internal/export"
)

func testConfig() *config.Config {
	return &config.Config{
		Import: config.ImportConfig{
			DefaultProfitMargin: 30,
			DefaultTaxRate:      19,
			MaxEntryMB:          20,
			MaxTotalMB:          50,
			MaxEnvelopeDepth:    3,
		},
	}
}

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "internal", "einvoice", "testdata", "ubl_invoice.xml"))
	require.NoError(t, err)
	return data
}

func TestPreviewBundle(t *testing.T) {
	setPreviewFlags(t, func() { previewFlags.removed = []int{1} })
	opts, err := previewOptions()
	require.NoError(t, err)

	result, err := previewBundle(context.Background(), testConfig(), "ubl_invoice.xml", fixture(t), opts)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.False(t, result.SupplierExists)
	require.Len(t, result.Items, 3)
	assert.True(t, result.Items[1].Removed)
	for _, it := range []int{0, 2} {
		assert.True(t, result.Items[it].NewProduct)
	}
	assert.True(t, result.ProfitMargin.Equal(decimal.NewFromInt(30)))
	assert.True(t, result.Total.Equal(decimal.NewFromInt(2380)), result.Total.String())
}

func TestPreviewBundle_CSVExport(t *testing.T) {
	setPreviewFlags(t, func() {})
	opts, err := previewOptions()
	require.NoError(t, err)

	result, err := previewBundle(context.Background(), testConfig(), "ubl_invoice.xml", fixture(t), opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, result))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "FE-1001", rows[1][0])
	assert.Equal(t, "CUA-001", rows[1][5])
}

func TestPreviewOptions(t *testing.T) {
	setPreviewFlags(t, func() {
		previewFlags.margin = "40"
		previewFlags.shipping = "100"
		previewFlags.discount = "12.50"
		previewFlags.supplier = "Andina"
	})
	opts, err := previewOptions()
	require.NoError(t, err)

	require.NotNil(t, opts.ProfitMargin)
	assert.True(t, opts.ProfitMargin.Equal(decimal.NewFromInt(40)))
	assert.True(t, opts.ShippingCost.Equal(decimal.NewFromInt(100)))
	assert.True(t, opts.DiscountAmount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "Andina", opts.SupplierName)
}

func TestPreviewOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		set  func()
	}{
		{"margin", func() { previewFlags.margin = "thirty" }},
		{"shipping", func() { previewFlags.shipping = "1,5" }},
		{"discount", func() { previewFlags.discount = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setPreviewFlags(t, tt.set)
			_, err := previewOptions()
			assert.Error(t, err)
		})
	}
}

// setPreviewFlags clears the preview flags, applies set, and restores them
// when the test ends.
func setPreviewFlags(t *testing.T, set func()) {
	t.Helper()
	saved := previewFlags
	t.Cleanup(func() { previewFlags = saved })
	previewFlags.margin = ""
	previewFlags.supplier = ""
	previewFlags.removed = nil
	previewFlags.shipping = ""
	previewFlags.discount = ""
	set()
}
