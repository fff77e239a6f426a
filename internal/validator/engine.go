package validator

import (
	"context"

	"github.com/rs/zerolog/log"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/einvoice"
	"invoicebridge/internal/validator/invoice"
)

// Result is the verdict on one invoice. Valid is false exactly when Errors is
// non-empty; warnings never block an import.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Engine runs every registered rule against an invoice.
type Engine struct {
	registry *Registry
}

// NewEngine creates a new validation engine.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Validate runs all rules and sorts failures into errors and warnings by
// rule severity.
func (e *Engine) Validate(ctx context.Context, inv *einvoice.NormalizedInvoice) *Result {
	res := &Result{Errors: []string{}, Warnings: []string{}}

	for _, v := range e.registry.All() {
		for _, vr := range v.Validate(ctx, inv) {
			if vr.Passed {
				continue
			}
			if v.Severity() == domain.ValidationSeverityError {
				res.Errors = append(res.Errors, vr.Message)
			} else {
				res.Warnings = append(res.Warnings, vr.Message)
			}
		}
	}
	res.Valid = len(res.Errors) == 0

	log.Debug().Bool("valid", res.Valid).Int("errors", len(res.Errors)).Int("warnings", len(res.Warnings)).
		Msg("validator.Engine: invoice validated")
	return res
}

// Err returns a *domain.ValidationError for an invalid result, nil otherwise.
func (r *Result) Err() error {
	if r.Valid {
		return nil
	}
	return &domain.ValidationError{Errors: r.Errors}
}

func invoiceBuiltins() []Validator {
	builtins := invoice.AllBuiltinValidators()
	out := make([]Validator, 0, len(builtins))
	for _, b := range builtins {
		out = append(out, b)
	}
	return out
}
