package generator

import (
	"fmt"

	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// ShapeValidator parses each tier with the requested grammar and rejects
// tiers that yield no questions.
type ShapeValidator struct{}

func (v *ShapeValidator) Name() string { return "shape" }

func (v *ShapeValidator) Validate(res *Result, input GenerateInput) *ValidationError {
	for _, tier := range input.Tiers {
		ws := worksheet.Parse(res.Tiers[tier], tier, input.Type)
		if len(ws.Questions) == 0 {
			return &ValidationError{
				Validator: v.Name(),
				Tier:      tier,
				Message:   fmt.Sprintf("no %s questions found", input.Type.Label()),
				Retryable: true,
			}
		}
	}
	return nil
}
