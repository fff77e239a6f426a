package invoice

import (
	"context"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/einvoice"
)

// BuiltinValidator wraps a validator function and its metadata for the registry.
type BuiltinValidator struct {
	key      string
	name     string
	ruleType domain.ValidationRuleType
	sev      domain.ValidationSeverity
	fn       func(context.Context, *einvoice.NormalizedInvoice) []ValidationResult
}

func (b *BuiltinValidator) Validate(ctx context.Context, data *einvoice.NormalizedInvoice) []ValidationResult {
	return b.fn(ctx, data)
}
func (b *BuiltinValidator) RuleKey() string                     { return b.key }
func (b *BuiltinValidator) RuleName() string                    { return b.name }
func (b *BuiltinValidator) RuleType() domain.ValidationRuleType { return b.ruleType }
func (b *BuiltinValidator) Severity() domain.ValidationSeverity { return b.sev }

type rule interface {
	RuleKey() string
	RuleName() string
	RuleType() domain.ValidationRuleType
	Severity() domain.ValidationSeverity
	Validate(context.Context, *einvoice.NormalizedInvoice) []ValidationResult
}

func wrap(v rule) *BuiltinValidator {
	return &BuiltinValidator{
		key: v.RuleKey(), name: v.RuleName(),
		ruleType: v.RuleType(), sev: v.Severity(),
		fn: v.Validate,
	}
}

// AllBuiltinValidators returns every built-in rule, required fields first.
func AllBuiltinValidators() []*BuiltinValidator {
	reqVals := RequiredFieldValidators()
	mathVals := MathValidators()
	logVals := LogicalValidators()
	all := make([]*BuiltinValidator, 0, len(reqVals)+len(mathVals)+len(logVals))

	for _, v := range reqVals {
		all = append(all, wrap(v))
	}
	for _, v := range logVals {
		all = append(all, wrap(v))
	}
	for _, v := range mathVals {
		all = append(all, wrap(v))
	}
	return all
}
