package models

// ValidationResult is the outcome of checking a CSV against a template.
// Errors make the import unusable; warnings are advisory.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewValidationResult returns a valid result with empty lists.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}
}

// AddError records a hard error and marks the result invalid.
func (r *ValidationResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Valid = false
}

// AddWarning records an advisory message.
func (r *ValidationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
