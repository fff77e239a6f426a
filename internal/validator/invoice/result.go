package invoice

// ValidationResult is the outcome of one rule on one field.
type ValidationResult struct {
	Passed        bool
	FieldPath     string
	ExpectedValue string
	ActualValue   string
	Message       string
}
