package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheetgen/internal/config"
	"github.com/abhisek/worksheetgen/internal/generator"
	"github.com/abhisek/worksheetgen/internal/llm"
	"github.com/abhisek/worksheetgen/internal/render"
	"github.com/abhisek/worksheetgen/internal/store"
	"github.com/abhisek/worksheetgen/internal/workbook"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// newGenerator builds the LLM generator from the configured provider.
// Requests are recorded in eventRepo when it is not nil.
func newGenerator(ctx context.Context, cfg *config.Config, eventRepo store.EventRepo) (*generator.LLMGenerator, error) {
	llmCfg, err := llm.Resolve(cfg.LLM, cfg.ProviderSet)
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	provider, err := llm.NewProvider(ctx, llmCfg, eventRepo)
	if err != nil {
		return nil, err
	}
	slog.Debug("LLM provider ready", "provider", llmCfg.Provider, "model", provider.ModelID())
	return generator.New(provider, generator.DefaultConfig()), nil
}

// addSourceFlags registers the flags that select a worksheet set.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "Generation ID (default: latest)")
	cmd.Flags().StringP("file", "f", "", "Read a raw worksheet text file instead of the database")
	cmd.Flags().StringP("type", "t", "", "Question type of --file (mcq, true_false, fill_in_blank, general)")
	cmd.Flags().String("tier", "", "Tier to use (default: first tier, or \"easy\" for --file)")
}

// loadWorkbook returns the workbook selected by the source flags. Files
// are parsed offline; everything else comes from the database.
func loadWorkbook(cmd *cobra.Command, cfg *config.Config) (*workbook.Workbook, error) {
	file, _ := cmd.Flags().GetString("file")
	tier, _ := cmd.Flags().GetString("tier")

	if file != "" {
		return workbookFromFile(cmd, cfg, file, tier)
	}

	st, err := openStore(cmd, cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	id, _ := cmd.Flags().GetString("id")
	g, err := findGeneration(cmd.Context(), st.GenerationRepo(), id)
	if err != nil {
		return nil, err
	}
	wb, err := g.Workbook()
	if err != nil {
		return nil, err
	}
	if tier != "" {
		if err := wb.SetActiveTier(tier); err != nil {
			return nil, fmt.Errorf("generation %s: %w: %s (have %s)", g.ID, err, tier, strings.Join(wb.Tiers(), ", "))
		}
	}
	return wb, nil
}

func workbookFromFile(cmd *cobra.Command, cfg *config.Config, path, tier string) (*workbook.Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read worksheet: %w", err)
	}
	qt, err := questionTypeFlag(cmd, cfg)
	if err != nil {
		return nil, err
	}
	if tier == "" {
		tier = "easy"
	}
	wb := workbook.New(qt)
	wb.SetRaw(tier, string(data))
	return wb, nil
}

// questionTypeFlag returns --type, or the configured default.
func questionTypeFlag(cmd *cobra.Command, cfg *config.Config) (worksheet.QuestionType, error) {
	s, _ := cmd.Flags().GetString("type")
	if s == "" {
		return cfg.QuestionType(), nil
	}
	return worksheet.ParseQuestionType(s)
}

// findGeneration returns the generation with id, or the latest one.
func findGeneration(ctx context.Context, repo store.GenerationRepo, id string) (*store.Generation, error) {
	var (
		g   *store.Generation
		err error
	)
	if id == "" {
		g, err = repo.Latest(ctx)
	} else {
		g, err = repo.Get(ctx, id)
	}
	if errors.Is(err, store.ErrNotFound) {
		if id == "" {
			return nil, fmt.Errorf("no worksheets generated yet; run `worksheetgen generate` first")
		}
		return nil, fmt.Errorf("generation %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load generation: %w", err)
	}
	return g, nil
}

// selectedWorksheets returns the active tier, or every tier when all is set.
func selectedWorksheets(wb *workbook.Workbook, all bool) []*worksheet.Worksheet {
	if !all {
		ws, ok := wb.ActiveWorksheet()
		if !ok {
			return nil
		}
		return []*worksheet.Worksheet{ws}
	}
	out := make([]*worksheet.Worksheet, 0, wb.Len())
	for _, tier := range wb.Tiers() {
		if ws, ok := wb.Worksheet(tier); ok {
			out = append(out, ws)
		}
	}
	return out
}

// pdfExporter writes worksheets as PDF files into dir.
type pdfExporter struct {
	renderer *render.PDFRenderer
	dir      string
}

func newPDFExporter(cfg *config.Config, dir string) *pdfExporter {
	if dir == "" {
		dir = cfg.OutputDir
	}
	return &pdfExporter{renderer: render.NewPDFRenderer(cfg.PDFOptions()), dir: dir}
}

// Export writes ws and returns the file path.
func (e *pdfExporter) Export(ws *worksheet.Worksheet, includeAnswers bool) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(e.dir, render.FileName(ws.Type, ws.Tier, includeAnswers))
	if err := e.renderer.RenderFile(path, ws, includeAnswers); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	slog.Debug("exported worksheet", "path", path, "answers", includeAnswers)
	return path, nil
}
