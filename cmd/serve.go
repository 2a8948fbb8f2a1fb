package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheetgen/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the worksheet HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogging(os.Stderr, verbose, true)

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		st, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := server.Options{
			PDF:               cfg.PDFOptions(),
			Generations:       st.GenerationRepo(),
			MaxBodyBytes:      cfg.Server.MaxBodyBytes,
			DefaultLanguage:   cfg.Worksheet.Language,
			DefaultTotalMarks: cfg.Worksheet.TotalMarks,
			DefaultTiers:      cfg.Worksheet.Tiers,
		}
		if noLLM, _ := cmd.Flags().GetBool("no-llm"); !noLLM {
			gen, err := newGenerator(context.WithoutCancel(ctx), cfg, st.EventRepo())
			if err != nil {
				slog.Warn("generation endpoint disabled", "error", err)
			} else {
				opts.Generator = gen
			}
		}

		return server.New(opts).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().Bool("no-llm", false, "Serve only the offline worksheet endpoints")
}
