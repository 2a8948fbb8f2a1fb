package generator

import "fmt"

// Validator checks a generated worksheet set.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator, e.g. "structural".
	Name() string

	// Validate returns nil if the result passes, or a ValidationError.
	Validate(res *Result, input GenerateInput) *ValidationError
}

// ValidationError describes why a worksheet set failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Tier      string // Offending tier, if any
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	if e.Tier != "" {
		return fmt.Sprintf("validator %q (tier %s): %s", e.Validator, e.Tier, e.Message)
	}
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
