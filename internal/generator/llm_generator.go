package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/abhisek/worksheetgen/internal/llm"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// ModelID returns the model of the underlying provider.
func (g *LLMGenerator) ModelID() string {
	return g.provider.ModelID()
}

// setOutput is the raw LLM response before validation.
type setOutput struct {
	Worksheets map[string]string `json:"worksheets"`
}

// Generate produces one worksheet per requested tier in a single request.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*Result, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeWorksheetGen)

	res, err := g.generate(ctx, input, WorksheetSetSchema(input.Tiers))
	if err != nil {
		return nil, err
	}

	slog.Info("generated worksheet set",
		"type", input.Type,
		"tiers", len(res.Tiers),
		"model", res.Model,
	)
	return res, nil
}

// Regenerate asks for a fresh worksheet for one tier only.
func (g *LLMGenerator) Regenerate(ctx context.Context, input GenerateInput, tier string) (string, error) {
	input.Tiers = []string{tier}
	if err := input.Validate(); err != nil {
		return "", err
	}
	tier = input.Tiers[0]
	ctx = llm.WithPurpose(ctx, llm.PurposeWorksheetRegen)

	res, err := g.generate(ctx, input, tierSchema(tier))
	if err != nil {
		return "", err
	}
	return res.Tiers[tier], nil
}

// generate requests and validates a set, asking again while the
// validators report a retryable failure and retries remain.
func (g *LLMGenerator) generate(ctx context.Context, input GenerateInput, schema *llm.Schema) (*Result, error) {
	for attempt := 0; ; attempt++ {
		res, err := g.request(ctx, input, schema)
		if err != nil {
			return nil, err
		}
		verr := g.validate(res, input)
		if verr == nil {
			return res, nil
		}
		if !verr.Retryable || attempt >= g.config.ValidationRetries {
			return nil, verr
		}
		slog.Warn("worksheet set rejected, retrying",
			"validator", verr.Validator,
			"tier", verr.Tier,
			"reason", verr.Message,
			"attempt", attempt+1,
		)
	}
}

func (g *LLMGenerator) request(ctx context.Context, input GenerateInput, schema *llm.Schema) (*Result, error) {
	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      schema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw setOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	res := &Result{
		Tiers: make(map[string]string, len(input.Tiers)),
		Order: input.Tiers,
		Model: resp.Model,
	}
	for _, t := range input.Tiers {
		if text, ok := raw.Worksheets[t]; ok {
			res.Tiers[t] = text
		}
	}
	return res, nil
}

// validate runs validators in order.
func (g *LLMGenerator) validate(res *Result, input GenerateInput) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(res, input); verr != nil {
			return verr
		}
	}
	return nil
}
