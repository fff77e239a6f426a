package invoice

import (
	"context"
	"strconv"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/einvoice"
)

// requiredFieldValidator checks that a required field is not empty.
type requiredFieldValidator struct {
	ruleKey   string
	ruleName  string
	fieldPath string
	message   string
	severity  domain.ValidationSeverity
	extract   func(*einvoice.NormalizedInvoice) string
}

func (v *requiredFieldValidator) RuleKey() string  { return v.ruleKey }
func (v *requiredFieldValidator) RuleName() string { return v.ruleName }
func (v *requiredFieldValidator) RuleType() domain.ValidationRuleType {
	return domain.ValidationRuleRequired
}
func (v *requiredFieldValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *requiredFieldValidator) Validate(_ context.Context, data *einvoice.NormalizedInvoice) []ValidationResult {
	val := v.extract(data)
	return []ValidationResult{{
		Passed:        val != "",
		FieldPath:     v.fieldPath,
		ExpectedValue: "non-empty value",
		ActualValue:   val,
		Message:       v.message,
	}}
}

// RequiredFieldValidators returns the rules an invoice must pass to be imported.
func RequiredFieldValidators() []*requiredFieldValidator {
	return []*requiredFieldValidator{
		{
			ruleKey: "req.supplier.name", ruleName: "Required: Supplier Name",
			fieldPath: "supplier.name", severity: domain.ValidationSeverityError,
			message: "supplier name is required",
			extract: func(d *einvoice.NormalizedInvoice) string { return d.SupplierName() },
		},
		{
			ruleKey: "req.items.min", ruleName: "Required: At Least One Item",
			fieldPath: "items", severity: domain.ValidationSeverityError,
			message: "the invoice has no items",
			extract: func(d *einvoice.NormalizedInvoice) string {
				if len(d.Items) == 0 {
					return ""
				}
				return strconv.Itoa(len(d.Items))
			},
		},
		{
			ruleKey: "req.invoice.number", ruleName: "Required: Invoice Number",
			fieldPath: "invoice.number", severity: domain.ValidationSeverityError,
			message: "invoice number is required",
			extract: func(d *einvoice.NormalizedInvoice) string { return d.Number() },
		},
	}
}
