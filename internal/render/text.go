package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/worksheetgen/internal/paginate"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// TextRenderer lays worksheets out as plain text pages of fixed rows.
type TextRenderer struct {
	Width    int
	Geometry paginate.Geometry
	Wrapper  paginate.ColumnWrapper
}

// NewTextRenderer returns a renderer for pages width columns wide and
// rows lines tall.
func NewTextRenderer(width, rows int) *TextRenderer {
	return &TextRenderer{
		Width:    width,
		Geometry: paginate.Lines(rows),
		Wrapper:  paginate.NewColumnWrapper(width),
	}
}

// Paginate lays ws out in text lines.
func (r *TextRenderer) Paginate(ws *worksheet.Worksheet, includeAnswers bool) []paginate.Page {
	return paginate.Paginate(ws, r.Geometry, includeAnswers, r.Wrapper)
}

// Pages returns every page of ws as text.
func (r *TextRenderer) Pages(ws *worksheet.Worksheet, includeAnswers bool) []string {
	pages := r.Paginate(ws, includeAnswers)
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = r.FormatPage(p)
	}
	return out
}

// Render writes all pages to w, separated by a page footer rule.
func (r *TextRenderer) Render(w io.Writer, ws *worksheet.Worksheet, includeAnswers bool) error {
	pages := r.Pages(ws, includeAnswers)
	for i, p := range pages {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
		footer := fmt.Sprintf("Page %d of %d", i+1, len(pages))
		if _, err := fmt.Fprintf(w, "\n%s\n\n", center("-- "+footer+" --", r.Width)); err != nil {
			return err
		}
	}
	return nil
}

// FormatPage draws one page. Each block starts on the row its Top gives.
func (r *TextRenderer) FormatPage(p paginate.Page) string {
	var rows []string
	put := func(row int, s string) {
		for len(rows) < row {
			rows = append(rows, "")
		}
		rows = append(rows, s)
	}

	indent := strings.Repeat(" ", r.Wrapper.OptionIndent)
	for _, b := range p.Blocks {
		row := int(b.Top)
		next := func(s string) {
			put(row, s)
			row++
		}
		switch b.Kind {
		case paginate.HeadingBlock:
			next(center(b.Title, r.Width))
			next(center(b.Subtitle, r.Width))
		case paginate.InstructionsBlock:
			for _, l := range b.Lines {
				next(l)
			}
		case paginate.QuestionBlock:
			for _, l := range b.Lines {
				next(l)
			}
			for _, opt := range b.OptionLines {
				for _, l := range opt {
					next(indent + l)
				}
			}
			for _, l := range b.AnswerLines {
				next(l)
			}
		}
	}
	return strings.Join(rows, "\n")
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", (width-n)/2) + s
}
