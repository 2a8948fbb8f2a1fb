package generator

import (
	"fmt"
	"strings"

	"github.com/abhisek/worksheetgen/internal/store"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// Total marks bounds accepted for a worksheet set.
const (
	MinTotalMarks = 5
	MaxTotalMarks = 100
)

// Languages lists the worksheet languages the generator accepts.
var Languages = []string{"english", "tamil", "gujarati", "hindi", "marathi"}

// GenerateInput holds all context needed to generate a worksheet set.
type GenerateInput struct {
	// Source is the study material the worksheets are based on. May be
	// empty when Topic is set.
	Source string

	// Topic is a short subject line, e.g. "Photosynthesis". Used on its
	// own when there is no Source.
	Topic string

	// Type selects the question grammar for every tier.
	Type worksheet.QuestionType

	// TotalMarks is the mark budget of each worksheet (5-100).
	TotalMarks int

	// Language is the language the worksheets are written in.
	Language string

	// Tiers are the difficulty levels to generate, in order.
	Tiers []string
}

// Validate checks the input and normalizes language and tier names.
func (in *GenerateInput) Validate() error {
	if strings.TrimSpace(in.Source) == "" && strings.TrimSpace(in.Topic) == "" {
		return fmt.Errorf("source material or topic is required")
	}
	if in.TotalMarks < MinTotalMarks || in.TotalMarks > MaxTotalMarks {
		return fmt.Errorf("total marks must be between %d and %d, got %d", MinTotalMarks, MaxTotalMarks, in.TotalMarks)
	}
	if in.Type == "" {
		in.Type = worksheet.General
	}
	in.Language = strings.ToLower(strings.TrimSpace(in.Language))
	if !supportedLanguage(in.Language) {
		return fmt.Errorf("unsupported language %q (want one of %s)", in.Language, strings.Join(Languages, ", "))
	}
	if len(in.Tiers) == 0 {
		return fmt.Errorf("at least one tier is required")
	}
	seen := make(map[string]bool, len(in.Tiers))
	tiers := make([]string, 0, len(in.Tiers))
	for _, t := range in.Tiers {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tiers = append(tiers, t)
	}
	if len(tiers) == 0 {
		return fmt.Errorf("at least one tier is required")
	}
	in.Tiers = tiers
	return nil
}

func supportedLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Result is one generated worksheet set.
type Result struct {
	// Tiers maps tier name to the raw worksheet text the model wrote.
	Tiers map[string]string

	// Order is the tier order of the request.
	Order []string

	// Model is the model that served the request.
	Model string
}

// Generation returns the unsaved store record of the set generated for in.
func (r *Result) Generation(in GenerateInput) *store.Generation {
	g := &store.Generation{
		Type:       string(in.Type),
		Language:   in.Language,
		TotalMarks: in.TotalMarks,
		Topic:      in.Topic,
		Model:      r.Model,
	}
	for _, tier := range r.Order {
		g.Tiers = append(g.Tiers, store.TierText{Tier: tier, Raw: r.Tiers[tier]})
	}
	return g
}
