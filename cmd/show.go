package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheetgen/internal/render"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a worksheet as paginated plain text",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		wb, err := loadWorkbook(cmd, cfg)
		if err != nil {
			return err
		}

		answers, _ := cmd.Flags().GetBool("answers")
		all, _ := cmd.Flags().GetBool("all")
		width, rows := cfg.Text.Width, cfg.Text.Rows
		if cmd.Flags().Changed("width") {
			width, _ = cmd.Flags().GetInt("width")
		}
		if cmd.Flags().Changed("rows") {
			rows, _ = cmd.Flags().GetInt("rows")
		}

		r := render.NewTextRenderer(width, rows)
		for i, ws := range selectedWorksheets(wb, all) {
			if i > 0 {
				fmt.Println()
			}
			if err := r.Render(os.Stdout, ws, answers); err != nil {
				return fmt.Errorf("render %s: %w", ws.Tier, err)
			}
			reportUnresolved(ws)
		}
		return nil
	},
}

func init() {
	addSourceFlags(showCmd)
	showCmd.Flags().BoolP("answers", "a", false, "Include answers")
	showCmd.Flags().Bool("all", false, "Print every tier")
	showCmd.Flags().Int("width", 0, "Page width in columns (default from config)")
	showCmd.Flags().Int("rows", 0, "Page height in lines (default from config)")
}
