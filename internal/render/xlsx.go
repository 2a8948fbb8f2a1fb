package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// Answer statuses written to the answer key.
const (
	StatusResolved   = "resolved"
	StatusUnresolved = "unresolved"
	StatusMismatch   = "mismatch"
)

var answerKeyHeader = []string{"ID", "Question", "Options", "Answer", "Status"}

// AnswerStatus classifies a question's answer for review.
func AnswerStatus(q worksheet.Question) string {
	if !q.Resolved() {
		return StatusUnresolved
	}
	if q.Type == worksheet.MCQ && len(q.Options) > 0 {
		if _, ok := q.MatchedOption(); !ok {
			return StatusMismatch
		}
	}
	return StatusResolved
}

// AnswerKeyXLSX writes one sheet per worksheet with every question, its
// answer and the answer's status.
func AnswerKeyXLSX(w io.Writer, sheets []*worksheet.Worksheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	flagged, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "B41E1E"},
	})
	if err != nil {
		return fmt.Errorf("create status style: %w", err)
	}

	first := f.GetSheetName(0)
	used := map[string]bool{}
	for i, ws := range sheets {
		name := sheetName(ws, i, used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}

		for col, h := range answerKeyHeader {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			_ = f.SetCellValue(name, cell, h)
		}
		_ = f.SetCellStyle(name, "A1", "E1", bold)

		for r, q := range ws.Questions {
			row := r + 2
			status := AnswerStatus(q)
			values := []any{q.ID, q.Text, strings.Join(q.Options, "\n"), q.Answer, status}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(name, cell, v)
			}
			if status != StatusResolved {
				cell, _ := excelize.CoordinatesToCellName(5, row)
				_ = f.SetCellStyle(name, cell, cell, flagged)
			}
		}

		_ = f.SetColWidth(name, "A", "A", 6)
		_ = f.SetColWidth(name, "B", "B", 60)
		_ = f.SetColWidth(name, "C", "D", 30)
		_ = f.SetColWidth(name, "E", "E", 12)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// sheetName derives a unique, valid sheet name from the worksheet tier.
func sheetName(ws *worksheet.Worksheet, i int, used map[string]bool) string {
	name := strings.TrimSpace(ws.Tier)
	name = strings.NewReplacer(":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "").Replace(name)
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if r := []rune(name); len(r) > 28 {
		name = string(r[:28])
	}
	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s %d", base, n)
	}
	used[strings.ToLower(name)] = true
	return name
}
