package invoice

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/einvoice"
)

var mathTolerance = decimal.NewFromInt(1)

// mathValidator checks arithmetic relationships between fields.
type mathValidator struct {
	ruleKey  string
	ruleName string
	severity domain.ValidationSeverity
	validate func(*einvoice.NormalizedInvoice) []ValidationResult
}

func (v *mathValidator) RuleKey() string                     { return v.ruleKey }
func (v *mathValidator) RuleName() string                    { return v.ruleName }
func (v *mathValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleSumCheck }
func (v *mathValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *mathValidator) Validate(_ context.Context, data *einvoice.NormalizedInvoice) []ValidationResult {
	return v.validate(data)
}

func approxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(mathTolerance)
}

func mathResult(passed bool, fieldPath string, expected, actual decimal.Decimal) ValidationResult {
	msg := fmt.Sprintf("%s matches", fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s mismatch (expected %s, got %s)", fieldPath, expected.StringFixed(2), actual.StringFixed(2))
	}
	return ValidationResult{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: expected.StringFixed(2), ActualValue: actual.StringFixed(2), Message: msg,
	}
}

// MathValidators returns the arithmetic rules. They only warn: the document's
// own numbers are kept even when they do not add up.
func MathValidators() []*mathValidator {
	return []*mathValidator{
		{
			ruleKey: "math.items.tax_amount", ruleName: "Math: Line Tax Amount",
			severity: domain.ValidationSeverityWarning,
			validate: func(d *einvoice.NormalizedInvoice) []ValidationResult {
				results := make([]ValidationResult, 0, len(d.Items))
				for i := range d.Items {
					item := &d.Items[i]
					expected := item.Subtotal.Mul(item.TaxPercentage).Div(decimal.NewFromInt(100)).Round(2)
					results = append(results, mathResult(approxEqual(expected, item.TaxAmount),
						fmt.Sprintf("items[%d].tax_amount", i), expected, item.TaxAmount))
				}
				return results
			},
		},
		{
			ruleKey: "math.totals.reconciled", ruleName: "Math: Totals Match Items",
			severity: domain.ValidationSeverityWarning,
			validate: func(d *einvoice.NormalizedInvoice) []ValidationResult {
				if len(d.Totals.Discrepancies) == 0 {
					return []ValidationResult{{Passed: true, FieldPath: "totals", Message: "totals match items"}}
				}
				results := make([]ValidationResult, 0, len(d.Totals.Discrepancies))
				for _, msg := range d.Totals.Discrepancies {
					results = append(results, ValidationResult{FieldPath: "totals", Message: "totals mismatch " + msg})
				}
				return results
			},
		},
	}
}
