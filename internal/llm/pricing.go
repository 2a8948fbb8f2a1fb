package llm

import (
	"regexp"
	"strings"
)

// ModelCost holds per-million-token pricing for a model.
// Prices are in USD per 1 million tokens.
type ModelCost struct {
	InputPerMTok  float64 // USD per 1M input tokens
	OutputPerMTok float64 // USD per 1M output tokens
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// dateSuffix matches snapshot suffixes such as -20250514 or -2024-08-06.
var dateSuffix = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2})$`)

// LookupCost returns the pricing for a model ID, or nil if unknown.
// Vendor prefixes ("google/...") and dated snapshot suffixes fall back to
// the base model's price.
func LookupCost(modelID string) *ModelCost {
	id := strings.ToLower(strings.TrimSpace(modelID))
	candidates := []string{id}
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
		candidates = append(candidates, id)
	}
	id = strings.TrimSuffix(id, "-exp")
	candidates = append(candidates, id, dateSuffix.ReplaceAllString(id, ""))

	for _, c := range candidates {
		if cost, ok := modelCosts[c]; ok {
			return &cost
		}
	}
	return nil
}

// modelCosts is the embedded pricing table from models.dev.
// Last updated: 2026-02-15.
var modelCosts = map[string]ModelCost{
	// Anthropic
	"claude-3-5-haiku":  {0.8, 4},
	"claude-3-5-sonnet": {3, 15},
	"claude-3-7-sonnet": {3, 15},
	"claude-3-haiku":    {0.25, 1.25},
	"claude-haiku-4-5":  {1, 5},
	"claude-opus-4":     {15, 75},
	"claude-opus-4-1":   {15, 75},
	"claude-opus-4-5":   {5, 25},
	"claude-sonnet-4":   {3, 15},
	"claude-sonnet-4-5": {3, 15},

	// OpenAI
	"gpt-3.5-turbo": {0.5, 1.5},
	"gpt-4":         {30, 60},
	"gpt-4-turbo":   {10, 30},
	"gpt-4.1":       {2, 8},
	"gpt-4.1-mini":  {0.4, 1.6},
	"gpt-4.1-nano":  {0.1, 0.4},
	"gpt-4o":        {2.5, 10},
	"gpt-4o-mini":   {0.15, 0.6},
	"gpt-5":         {1.25, 10},
	"gpt-5-mini":    {0.25, 2},
	"gpt-5-nano":    {0.05, 0.4},
	"gpt-5.1":       {1.25, 10},
	"gpt-5.2":       {1.75, 14},
	"o3":            {2, 8},
	"o3-mini":       {1.1, 4.4},
	"o4-mini":       {1.1, 4.4},

	// Google (Gemini)
	"gemini-1.5-flash":       {0.075, 0.3},
	"gemini-1.5-pro":         {1.25, 5},
	"gemini-2.0-flash":       {0.1, 0.4},
	"gemini-2.0-flash-lite":  {0.075, 0.3},
	"gemini-2.5-flash":       {0.3, 2.5},
	"gemini-2.5-flash-lite":  {0.1, 0.4},
	"gemini-2.5-pro":         {1.25, 10},
	"gemini-3-flash-preview": {0.5, 3},
	"gemini-3-pro-preview":   {2, 12},
}
