package generator

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators is the ordered list of validators to run on every
	// generated set. The first failure stops the pipeline.
	Validators []Validator

	// MaxTokens is the token budget for the LLM response. All tiers
	// share one response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxSourceChars truncates long source material in the prompt.
	MaxSourceChars int

	// ValidationRetries is how many extra requests are made after a
	// retryable validation failure.
	ValidationRetries int
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&ShapeValidator{},
		},
		MaxTokens:         8192,
		Temperature:       0.7,
		MaxSourceChars:    12000,
		ValidationRetries: 1,
	}
}
