package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheetgen/internal/worksheet"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a raw worksheet text file and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		tier, _ := cmd.Flags().GetString("tier")
		wb, err := workbookFromFile(cmd, cfg, args[0], tier)
		if err != nil {
			return err
		}
		ws, _ := wb.ActiveWorksheet()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ws); err != nil {
			return fmt.Errorf("encode worksheet: %w", err)
		}
		reportUnresolved(ws)
		return nil
	},
}

// reportUnresolved warns on stderr about questions whose answers could
// not be matched.
func reportUnresolved(ws *worksheet.Worksheet) {
	if ids := ws.Unresolved(); len(ids) > 0 {
		fmt.Fprintf(os.Stderr, "%s: %d question(s) without an answer: %v\n", ws.Tier, len(ids), ids)
	}
	if ids := ws.Mismatched(); len(ids) > 0 {
		fmt.Fprintf(os.Stderr, "%s: %d answer(s) match no option: %v\n", ws.Tier, len(ids), ids)
	}
}

func init() {
	parseCmd.Flags().StringP("type", "t", "", "Question type (mcq, true_false, fill_in_blank, general)")
	parseCmd.Flags().String("tier", "easy", "Tier name recorded on the worksheet")
}
