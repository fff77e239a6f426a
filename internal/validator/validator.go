package validator

import (
	"context"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/einvoice"
	"invoicebridge/internal/validator/invoice"
)

// Validator is the interface for a single built-in validation rule.
type Validator interface {
	Validate(ctx context.Context, data *einvoice.NormalizedInvoice) []invoice.ValidationResult
	RuleKey() string
	RuleName() string
	RuleType() domain.ValidationRuleType
	Severity() domain.ValidationSeverity
}
