package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model     string
		wantInput float64
		wantFound bool
	}{
		{"gpt-4o-mini", 0.15, true},
		{"GPT-4o-mini", 0.15, true},
		{"claude-sonnet-4-20250514", 3, true},
		{"claude-haiku-4-5-20251001", 1, true},
		{"gpt-4o-2024-08-06", 2.5, true},
		{"google/gemini-2.0-flash-exp", 0.1, true},
		{"gemini-2.0-flash", 0.1, true},
		{"mock", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			c := LookupCost(tt.model)
			if (c != nil) != tt.wantFound {
				t.Fatalf("LookupCost(%q) found = %v, want %v", tt.model, c != nil, tt.wantFound)
			}
			if c != nil && c.InputPerMTok != tt.wantInput {
				t.Errorf("input price = %v, want %v", c.InputPerMTok, tt.wantInput)
			}
		})
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 3, OutputPerMTok: 15}
	got := c.Cost(1_000_000, 200_000)
	if math.Abs(got-6) > 1e-9 {
		t.Errorf("cost = %v, want 6", got)
	}
}
