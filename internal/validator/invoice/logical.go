package invoice

import (
	"context"
	"fmt"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/einvoice"
)

// logicalValidator checks logical constraints on the invoice data.
type logicalValidator struct {
	ruleKey  string
	ruleName string
	severity domain.ValidationSeverity
	validate func(*einvoice.NormalizedInvoice) []ValidationResult
}

func (v *logicalValidator) RuleKey() string                     { return v.ruleKey }
func (v *logicalValidator) RuleName() string                    { return v.ruleName }
func (v *logicalValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleLogical }
func (v *logicalValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *logicalValidator) Validate(_ context.Context, data *einvoice.NormalizedInvoice) []ValidationResult {
	return v.validate(data)
}

// LogicalValidators returns all logical validators.
func LogicalValidators() []*logicalValidator {
	return []*logicalValidator{
		{
			ruleKey: "logic.items.quantity_positive", ruleName: "Logical: Item Quantity Positive",
			severity: domain.ValidationSeverityWarning,
			validate: func(d *einvoice.NormalizedInvoice) []ValidationResult {
				results := make([]ValidationResult, 0, len(d.Items))
				for i, item := range d.Items {
					path := fmt.Sprintf("items[%d].quantity", i)
					passed := item.Quantity.IsPositive()
					msg := fmt.Sprintf("%s is positive", path)
					if !passed {
						msg = fmt.Sprintf("%s must be greater than zero", path)
					}
					results = append(results, ValidationResult{
						Passed: passed, FieldPath: path,
						ExpectedValue: "> 0", ActualValue: item.Quantity.String(), Message: msg,
					})
				}
				return results
			},
		},
		{
			ruleKey: "logic.items.name_present", ruleName: "Logical: Item Description Present",
			severity: domain.ValidationSeverityWarning,
			validate: func(d *einvoice.NormalizedInvoice) []ValidationResult {
				results := make([]ValidationResult, 0, len(d.Items))
				for i, item := range d.Items {
					path := fmt.Sprintf("items[%d].name", i)
					msg := fmt.Sprintf("%s is present", path)
					if item.Name == "" {
						msg = fmt.Sprintf("%s is empty, product will be named after its SKU", path)
					}
					results = append(results, ValidationResult{
						Passed: item.Name != "", FieldPath: path,
						ExpectedValue: "non-empty value", ActualValue: item.Name, Message: msg,
					})
				}
				return results
			},
		},
	}
}
