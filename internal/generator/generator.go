// Package generator asks an LLM for a set of worksheets, one per
// difficulty tier, and checks that each tier's text is usable.
package generator

import "context"

// Generator produces raw worksheet texts using an LLM provider.
type Generator interface {
	// Generate produces one worksheet per requested tier.
	// All configured validators are run before returning.
	Generate(ctx context.Context, input GenerateInput) (*Result, error)

	// Regenerate replaces a single tier of an earlier set.
	Regenerate(ctx context.Context, input GenerateInput, tier string) (string, error)
}
