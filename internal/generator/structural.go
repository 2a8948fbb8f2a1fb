package generator

import "strings"

// maxTierChars bounds a single tier's text.
const maxTierChars = 20000

// StructuralValidator checks that every requested tier is present,
// non-empty and within length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(res *Result, input GenerateInput) *ValidationError {
	for _, tier := range input.Tiers {
		text, ok := res.Tiers[tier]
		if !ok {
			return &ValidationError{
				Validator: v.Name(),
				Tier:      tier,
				Message:   "tier missing from response",
				Retryable: true,
			}
		}
		if strings.TrimSpace(text) == "" {
			return &ValidationError{
				Validator: v.Name(),
				Tier:      tier,
				Message:   "worksheet text is empty",
				Retryable: true,
			}
		}
		if len(text) > maxTierChars {
			return &ValidationError{
				Validator: v.Name(),
				Tier:      tier,
				Message:   "worksheet text exceeds 20000 characters",
				Retryable: true,
			}
		}
	}
	return nil
}
