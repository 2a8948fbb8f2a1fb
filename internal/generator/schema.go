package generator

import (
	"strings"

	"github.com/abhisek/worksheetgen/internal/llm"
)

// WorksheetSetSchema returns the response schema for the given tiers:
//
//	{"worksheets": {"<tier>": "<raw worksheet text>", ...}}
//
// The name includes the tiers so compiled validators are cached per set.
func WorksheetSetSchema(tiers []string) *llm.Schema {
	props := make(map[string]any, len(tiers))
	required := make([]any, len(tiers))
	for i, t := range tiers {
		props[t] = map[string]any{
			"type":        "string",
			"description": "Complete " + t + " worksheet as plain text, including its answer key",
		}
		required[i] = t
	}

	return &llm.Schema{
		Name:        "worksheet-set-" + strings.Join(tiers, "-"),
		Description: "One worksheet per difficulty tier",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"worksheets": map[string]any{
					"type":                 "object",
					"properties":           props,
					"required":             required,
					"additionalProperties": false,
				},
			},
			"required":             []any{"worksheets"},
			"additionalProperties": false,
		},
	}
}

// tierSchema is the single-tier schema used by Regenerate.
func tierSchema(tier string) *llm.Schema {
	return WorksheetSetSchema([]string{tier})
}
