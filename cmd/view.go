package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheetgen/internal/app"
	"github.com/abhisek/worksheetgen/internal/config"
	"github.com/abhisek/worksheetgen/internal/screen"
	"github.com/abhisek/worksheetgen/internal/screens/compose"
	"github.com/abhisek/worksheetgen/internal/screens/history"
	"github.com/abhisek/worksheetgen/internal/screens/home"
	"github.com/abhisek/worksheetgen/internal/screens/viewer"
	"github.com/abhisek/worksheetgen/internal/store"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse worksheets in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		list, _ := cmd.Flags().GetBool("list")
		return runView(cmd, id, list)
	},
}

// runView opens the store and launches the TUI on the chosen generation,
// or on the history list when asked to or when nothing is stored yet.
func runView(cmd *cobra.Command, id string, list bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	repo := st.GenerationRepo()
	open := viewerOpener(cfg)

	var initial screen.Screen
	if list {
		initial = history.New(repo, open, 0)
	} else {
		var g *store.Generation
		if id == "" {
			g, err = repo.Latest(cmd.Context())
		} else {
			g, err = repo.Get(cmd.Context(), id)
		}
		switch {
		case errors.Is(err, store.ErrNotFound) && id == "":
			initial = history.New(repo, open, 0)
		case errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("generation %q not found", id)
		case err != nil:
			return fmt.Errorf("load generation: %w", err)
		default:
			if initial, err = open(g); err != nil {
				return err
			}
		}
	}

	tuiLogging(cmd)
	return app.Run(initial)
}

// runHome launches the TUI on the home menu.
func runHome(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := home.Options{
		Generations: st.GenerationRepo(),
		Open:        viewerOpener(cfg),
		Defaults: compose.Defaults{
			Type:       cfg.QuestionType(),
			Language:   cfg.Worksheet.Language,
			TotalMarks: cfg.Worksheet.TotalMarks,
			Tiers:      cfg.Worksheet.Tiers,
			Wait:       cfg.LLM.Timeout,
		},
	}
	if gen, err := newGenerator(cmd.Context(), cfg, st.EventRepo()); err != nil {
		opts.ProviderError = err.Error()
	} else {
		opts.Generator = gen
	}

	tuiLogging(cmd)
	return app.Run(home.New(opts))
}

// tuiLogging silences the stderr logger while the TUI owns the terminal,
// unless --verbose asked for it.
func tuiLogging(cmd *cobra.Command) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
		setupLogging(io.Discard, false, false)
	}
}

// viewerOpener returns a history.OpenFunc that shows a generation in the
// viewer, exporting PDFs into the configured output directory.
func viewerOpener(cfg *config.Config) history.OpenFunc {
	exp := newPDFExporter(cfg, "")
	return func(g *store.Generation) (screen.Screen, error) {
		wb, err := g.Workbook()
		if err != nil {
			return nil, err
		}
		return viewer.New(wb, exp.Export), nil
	}
}

func init() {
	viewCmd.Flags().String("id", "", "Generation ID (default: latest)")
	viewCmd.Flags().Bool("list", false, "Start from the list of stored generations")
}
