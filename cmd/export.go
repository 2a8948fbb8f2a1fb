package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheetgen/internal/render"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write worksheets as PDF and the answer key as XLSX",
	Long: "Export writes <type>_<tier>_worksheet.pdf and <type>_<tier>_answers.pdf " +
		"for the selected tiers, and optionally <type>_answer_key.xlsx.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		wb, err := loadWorkbook(cmd, cfg)
		if err != nil {
			return err
		}

		variant, _ := cmd.Flags().GetString("variant")
		var versions []bool
		switch variant {
		case "worksheet":
			versions = []bool{false}
		case "answers":
			versions = []bool{true}
		case "both":
			versions = []bool{false, true}
		default:
			return fmt.Errorf("invalid --variant %q (want worksheet, answers or both)", variant)
		}

		// --tier narrows the export to one tier.
		all := !cmd.Flags().Changed("tier")
		sheets := selectedWorksheets(wb, all)
		if len(sheets) == 0 {
			return fmt.Errorf("nothing to export")
		}

		out, _ := cmd.Flags().GetString("out")
		exp := newPDFExporter(cfg, out)
		for _, ws := range sheets {
			for _, withAnswers := range versions {
				path, err := exp.Export(ws, withAnswers)
				if err != nil {
					return err
				}
				fmt.Println(path)
			}
			reportUnresolved(ws)
		}

		if xlsx, _ := cmd.Flags().GetBool("xlsx"); xlsx {
			path := filepath.Join(exp.dir, render.AnswerKeyFileName(wb.Type()))
			if err := writeAnswerKey(path, sheets); err != nil {
				return err
			}
			fmt.Println(path)
		}
		return nil
	},
}

func writeAnswerKey(path string, sheets []*worksheet.Worksheet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create answer key: %w", err)
	}
	if err := render.AnswerKeyXLSX(f, sheets); err != nil {
		f.Close()
		return fmt.Errorf("write answer key: %w", err)
	}
	return f.Close()
}

func init() {
	addSourceFlags(exportCmd)
	exportCmd.Flags().String("variant", "both", "Which PDFs to write: worksheet, answers or both")
	exportCmd.Flags().Bool("xlsx", false, "Also write the XLSX answer key")
	exportCmd.Flags().StringP("out", "o", "", "Output directory (default from config)")
}
