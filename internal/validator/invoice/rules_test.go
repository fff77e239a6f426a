package invoice_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/einvoice"
	"invoicebridge/internal/validator/invoice"
)

func strPtr(s string) *string { return &s }

func line(name string, qty, sub, rate, tax int64) einvoice.Item {
	return einvoice.Item{
		Name:          name,
		SKU:           "SKU-" + name,
		Quantity:      decimal.NewFromInt(qty),
		UnitPrice:     decimal.NewFromInt(sub / max(qty, 1)),
		TaxPercentage: decimal.NewFromInt(rate),
		TaxAmount:     decimal.NewFromInt(tax),
		Subtotal:      decimal.NewFromInt(sub),
		Total:         decimal.NewFromInt(sub + tax),
	}
}

func completeInvoice() *einvoice.NormalizedInvoice {
	return &einvoice.NormalizedInvoice{
		Supplier: einvoice.Supplier{Name: strPtr("Distribuidora Andina")},
		Invoice:  einvoice.Header{Number: strPtr("FE-1001")},
		Items:    []einvoice.Item{line("cafe", 2, 1000, 19, 190)},
	}
}

func byKey(t *testing.T, key string) *invoice.BuiltinValidator {
	t.Helper()
	for _, v := range invoice.AllBuiltinValidators() {
		if v.RuleKey() == key {
			return v
		}
	}
	require.Failf(t, "rule not registered", "key %s", key)
	return nil
}

func allPassed(results []invoice.ValidationResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func TestAllBuiltinValidators_RequiredFirst(t *testing.T) {
	all := invoice.AllBuiltinValidators()
	require.NotEmpty(t, all)

	seenOther := false
	keys := map[string]bool{}
	for _, v := range all {
		assert.False(t, keys[v.RuleKey()], "duplicate key %s", v.RuleKey())
		keys[v.RuleKey()] = true
		if v.RuleType() != domain.ValidationRuleRequired {
			seenOther = true
			assert.Equal(t, domain.ValidationSeverityWarning, v.Severity(), v.RuleKey())
			continue
		}
		assert.False(t, seenOther, "required rule %s after non-required rules", v.RuleKey())
		assert.Equal(t, domain.ValidationSeverityError, v.Severity(), v.RuleKey())
	}
}

func TestRequiredRules(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		mutate func(*einvoice.NormalizedInvoice)
	}{
		{"supplier name missing", "req.supplier.name", func(d *einvoice.NormalizedInvoice) { d.Supplier.Name = nil }},
		{"supplier name empty", "req.supplier.name", func(d *einvoice.NormalizedInvoice) { d.Supplier.Name = strPtr("") }},
		{"no items", "req.items.min", func(d *einvoice.NormalizedInvoice) { d.Items = nil }},
		{"invoice number missing", "req.invoice.number", func(d *einvoice.NormalizedInvoice) { d.Invoice.Number = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := byKey(t, tt.key)

			ok := completeInvoice()
			assert.True(t, allPassed(v.Validate(context.Background(), ok)))

			bad := completeInvoice()
			tt.mutate(bad)
			results := v.Validate(context.Background(), bad)
			require.Len(t, results, 1)
			assert.False(t, results[0].Passed)
			assert.NotEmpty(t, results[0].Message)
		})
	}
}

func TestQuantityPositive(t *testing.T) {
	v := byKey(t, "logic.items.quantity_positive")

	d := completeInvoice()
	d.Items = append(d.Items, line("azucar", 0, 500, 19, 95))

	results := v.Validate(context.Background(), d)
	require.Len(t, results, 2)
	assert.True(t, results[0].Passed)
	assert.False(t, results[1].Passed)
	assert.Equal(t, "items[1].quantity", results[1].FieldPath)
}

func TestItemNamePresent(t *testing.T) {
	v := byKey(t, "logic.items.name_present")

	d := completeInvoice()
	d.Items[0].Name = ""

	results := v.Validate(context.Background(), d)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed)
	assert.Contains(t, results[0].Message, "SKU")
}

func TestLineTaxAmount(t *testing.T) {
	v := byKey(t, "math.items.tax_amount")

	tests := []struct {
		name   string
		tax    int64
		passed bool
	}{
		{"exact", 190, true},
		{"within tolerance", 191, true},
		{"off", 250, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := completeInvoice()
			d.Items[0] = line("cafe", 2, 1000, 19, tt.tax)

			results := v.Validate(context.Background(), d)
			require.Len(t, results, 1)
			assert.Equal(t, tt.passed, results[0].Passed)
			assert.Equal(t, "190.00", results[0].ExpectedValue)
		})
	}
}

func TestTotalsReconciled(t *testing.T) {
	v := byKey(t, "math.totals.reconciled")

	d := completeInvoice()
	assert.True(t, allPassed(v.Validate(context.Background(), d)))

	d.Totals.Discrepancies = []string{"subtotal: document 1200.00, items 1000.00"}
	results := v.Validate(context.Background(), d)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed)
	assert.Contains(t, results[0].Message, "document 1200.00")
}
