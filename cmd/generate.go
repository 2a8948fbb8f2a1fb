package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheetgen/internal/config"
	"github.com/abhisek/worksheetgen/internal/generator"
	"github.com/abhisek/worksheetgen/internal/store"
	"github.com/abhisek/worksheetgen/internal/workbook"
)

var generateCmd = &cobra.Command{
	Use:   "generate [source-file]",
	Short: "Generate a tiered worksheet set from study material",
	Long: "Generate sends the study material (a file, stdin when the file is \"-\", " +
		"or just --topic) to the configured LLM and stores one worksheet per tier.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		in, err := generateInput(cmd, cfg, args)
		if err != nil {
			return err
		}
		if err := in.Validate(); err != nil {
			return err
		}

		st, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		gen, err := newGenerator(cmd.Context(), cfg, st.EventRepo())
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Generating %d %s worksheet(s) in %s...\n", len(in.Tiers), in.Type.Label(), in.Language)
		res, err := gen.Generate(cmd.Context(), in)
		if err != nil {
			return err
		}

		g := res.Generation(in)
		if err := st.GenerationRepo().Save(cmd.Context(), g); err != nil {
			return fmt.Errorf("save generation: %w", err)
		}
		slog.Info("saved generation", "id", g.ID, "tiers", len(g.Tiers))

		wb, err := g.Workbook()
		if err != nil {
			return err
		}
		printSummary(os.Stdout, g, wb)
		return nil
	},
}

// generateInput merges config defaults, flags and the source material.
func generateInput(cmd *cobra.Command, cfg *config.Config, args []string) (generator.GenerateInput, error) {
	in := generator.GenerateInput{
		Language:   cfg.Worksheet.Language,
		TotalMarks: cfg.Worksheet.TotalMarks,
		Tiers:      cfg.Worksheet.Tiers,
	}

	qt, err := questionTypeFlag(cmd, cfg)
	if err != nil {
		return in, err
	}
	in.Type = qt
	in.Topic, _ = cmd.Flags().GetString("topic")

	if cmd.Flags().Changed("lang") {
		in.Language, _ = cmd.Flags().GetString("lang")
	}
	if cmd.Flags().Changed("marks") {
		in.TotalMarks, _ = cmd.Flags().GetInt("marks")
	}
	if cmd.Flags().Changed("tiers") {
		s, _ := cmd.Flags().GetString("tiers")
		in.Tiers = config.SplitList(s)
	}

	if len(args) == 1 {
		src, err := readSource(args[0])
		if err != nil {
			return in, err
		}
		in.Source = src
	}
	return in, nil
}

func readSource(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read source material: %w", err)
	}
	return string(data), nil
}

// printSummary lists each stored tier with its question and answer counts.
func printSummary(w io.Writer, g *store.Generation, wb *workbook.Workbook) {
	fmt.Fprintf(w, "Generation %s (%s, %s, %d marks, model %s)\n",
		g.ID, wb.Type().Label(), g.Language, g.TotalMarks, g.Model)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "%-12s  %9s  %10s  %10s\n", "Tier", "Questions", "Unresolved", "Mismatched")
	for _, tier := range wb.Tiers() {
		ws, _ := wb.Worksheet(tier)
		fmt.Fprintf(w, "%-12s  %9d  %10d  %10d\n",
			tier, len(ws.Questions), len(ws.Unresolved()), len(ws.Mismatched()))
	}
}

func init() {
	generateCmd.Flags().StringP("type", "t", "", "Question type (mcq, true_false, fill_in_blank, general)")
	generateCmd.Flags().String("topic", "", "Topic of the worksheets; enough on its own without a source file")
	generateCmd.Flags().StringP("lang", "l", "", "Worksheet language (english, tamil, gujarati, hindi, marathi)")
	generateCmd.Flags().IntP("marks", "m", 0, fmt.Sprintf("Total marks per worksheet (%d-%d)", generator.MinTotalMarks, generator.MaxTotalMarks))
	generateCmd.Flags().String("tiers", "", "Comma separated difficulty tiers (default easy,medium,hard)")
}
