package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheetgen/internal/generator"
	"github.com/abhisek/worksheetgen/internal/store"
	"github.com/abhisek/worksheetgen/internal/workbook"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <tier> [source-file]",
	Short: "Replace one tier of a generation with a fresh worksheet",
	Long: "Regenerate asks the LLM for a new worksheet for a single tier and stores " +
		"the result as a new generation; the other tiers are copied unchanged.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		id, _ := cmd.Flags().GetString("id")
		prev, err := findGeneration(cmd.Context(), st.GenerationRepo(), id)
		if err != nil {
			return err
		}
		qt, err := worksheet.ParseQuestionType(prev.Type)
		if err != nil {
			return err
		}

		in := generator.GenerateInput{
			Topic:      prev.Topic,
			Type:       qt,
			TotalMarks: prev.TotalMarks,
			Language:   prev.Language,
		}
		if t, _ := cmd.Flags().GetString("topic"); t != "" {
			in.Topic = t
		}
		if len(args) == 2 {
			if in.Source, err = readSource(args[1]); err != nil {
				return err
			}
		}

		gen, err := newGenerator(cmd.Context(), cfg, st.EventRepo())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Regenerating %s tier of %s...\n", args[0], prev.ID)
		raw, err := gen.Regenerate(cmd.Context(), in, args[0])
		if err != nil {
			return err
		}

		next := replaceTier(prev, args[0], raw, gen.ModelID())
		if err := st.GenerationRepo().Save(cmd.Context(), next); err != nil {
			return fmt.Errorf("save generation: %w", err)
		}
		wb, err := next.Workbook()
		if err != nil {
			return err
		}
		printSummary(os.Stdout, next, wb)
		return nil
	},
}

// replaceTier copies g as a new unsaved generation with tier set to raw.
// An unknown tier is appended.
func replaceTier(g *store.Generation, tier, raw, model string) *store.Generation {
	next := &store.Generation{
		Type:       g.Type,
		Language:   g.Language,
		TotalMarks: g.TotalMarks,
		Topic:      g.Topic,
		Model:      model,
	}
	tier = workbook.NormalizeTier(tier)
	found := false
	for _, t := range g.Tiers {
		if t.Tier == tier {
			t.Raw = raw
			found = true
		}
		next.Tiers = append(next.Tiers, t)
	}
	if !found {
		next.Tiers = append(next.Tiers, store.TierText{Tier: tier, Raw: raw})
	}
	return next
}

func init() {
	regenerateCmd.Flags().String("id", "", "Generation ID (default: latest)")
	regenerateCmd.Flags().String("topic", "", "Override the stored topic")
}
