// Package render turns paginated worksheets into printable output.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/abhisek/worksheetgen/internal/paginate"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// Font sizes in points.
const (
	titleSize    = 20
	subtitleSize = 12
	bodySize     = 12
	answerSize   = 10
	footerSize   = 9
)

// PDFOptions configures the PDF layout. Lengths are in millimetres.
type PDFOptions struct {
	PageSize   string
	Margin     float64
	FontFamily string

	// UTF8FontFile is a TrueType font used instead of the core font.
	// Needed for scripts outside cp1252, e.g. Tamil or Devanagari.
	UTF8FontFile string

	Geometry paginate.Geometry

	// OptionIndent shifts option lines right of the question text.
	OptionIndent float64

	Compress bool
}

// DefaultPDFOptions returns A4 portrait options with Helvetica.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:     "A4",
		Margin:       15,
		FontFamily:   "Helvetica",
		Geometry:     paginate.A4(),
		OptionIndent: 8,
		Compress:     true,
	}
}

// PDFRenderer draws worksheets with fpdf.
type PDFRenderer struct {
	opts PDFOptions
}

// NewPDFRenderer creates a renderer. Zero-valued options fall back to
// DefaultPDFOptions.
func NewPDFRenderer(opts PDFOptions) *PDFRenderer {
	def := DefaultPDFOptions()
	if opts.PageSize == "" {
		opts.PageSize = def.PageSize
	}
	if opts.Margin <= 0 {
		opts.Margin = def.Margin
	}
	if opts.FontFamily == "" && opts.UTF8FontFile == "" {
		opts.FontFamily = def.FontFamily
	}
	if !opts.Geometry.Valid() {
		opts.Geometry = def.Geometry
	}
	return &PDFRenderer{opts: opts}
}

// Options returns the effective options.
func (r *PDFRenderer) Options() PDFOptions { return r.opts }

// document is one PDF being built.
type document struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
	wrap   *PDFWrapper
	width  float64
}

func (r *PDFRenderer) newDocument(title string) (*document, error) {
	pdf := fpdf.New("P", "mm", r.opts.PageSize, "")
	pdf.SetMargins(r.opts.Margin, r.opts.Geometry.MarginTop, r.opts.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(r.opts.Compress)
	pdf.AliasNbPages("")

	d := &document{pdf: pdf, family: r.opts.FontFamily}
	if r.opts.UTF8FontFile != "" {
		d.family = "worksheet"
		pdf.AddUTF8Font(d.family, "", r.opts.UTF8FontFile)
		pdf.AddUTF8Font(d.family, "B", r.opts.UTF8FontFile)
		pdf.AddUTF8Font(d.family, "I", r.opts.UTF8FontFile)
		d.tr = func(s string) string { return s }
	} else {
		d.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("worksheetgen", false)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	pageW, _ := pdf.GetPageSize()
	d.width = pageW - 2*r.opts.Margin
	d.wrap = &PDFWrapper{
		pdf:          pdf,
		family:       d.family,
		width:        d.width,
		optionIndent: r.opts.OptionIndent,
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(d.family, "I", footerSize)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	return d, nil
}

// Render paginates ws with the PDF font metrics and writes the document
// to w. Answers are drawn when includeAnswers is set.
func (r *PDFRenderer) Render(w io.Writer, ws *worksheet.Worksheet, includeAnswers bool) error {
	if ws == nil {
		ws = &worksheet.Worksheet{}
	}
	d, err := r.newDocument(ws.Title)
	if err != nil {
		return err
	}

	pages := paginate.Paginate(ws, r.opts.Geometry, includeAnswers, d.wrap)
	for _, p := range pages {
		d.pdf.AddPage()
		for _, b := range p.Blocks {
			r.drawBlock(d, b)
		}
	}

	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Paginate lays ws out with the PDF font metrics without drawing it.
func (r *PDFRenderer) Paginate(ws *worksheet.Worksheet, includeAnswers bool) ([]paginate.Page, error) {
	d, err := r.newDocument("")
	if err != nil {
		return nil, err
	}
	return paginate.Paginate(ws, r.opts.Geometry, includeAnswers, d.wrap), nil
}

// RenderFile writes the PDF to path.
func (r *PDFRenderer) RenderFile(path string, ws *worksheet.Worksheet, includeAnswers bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.Render(f, ws, includeAnswers); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (r *PDFRenderer) drawBlock(d *document, b paginate.Block) {
	pdf := d.pdf
	lh := r.opts.Geometry.LineHeight
	left := r.opts.Margin

	switch b.Kind {
	case paginate.HeadingBlock:
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(left, b.Top)
		pdf.SetFont(d.family, "B", titleSize)
		pdf.CellFormat(0, 10, d.tr(b.Title), "", 1, "C", false, 0, "")
		pdf.SetFont(d.family, "", subtitleSize)
		pdf.SetTextColor(70, 70, 70)
		pdf.CellFormat(0, 7, d.tr(b.Subtitle), "", 1, "C", false, 0, "")

	case paginate.InstructionsBlock:
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(d.family, "I", bodySize)
		y := b.Top
		for _, line := range b.Lines {
			drawLine(d, left, y, lh, line)
			y += lh
		}

	case paginate.QuestionBlock:
		y := b.Top
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(d.family, "", bodySize)
		for _, line := range b.Lines {
			drawLine(d, left, y, lh, line)
			y += lh
		}
		for _, opt := range b.OptionLines {
			for _, line := range opt {
				drawLine(d, left+r.opts.OptionIndent, y, lh, line)
				y += lh
			}
		}
		if len(b.AnswerLines) > 0 {
			pdf.SetFont(d.family, "", answerSize)
			if b.Question != nil && !b.Question.Resolved() {
				pdf.SetTextColor(180, 30, 30)
			} else {
				pdf.SetTextColor(0, 128, 0)
			}
			for _, line := range b.AnswerLines {
				drawLine(d, left, y, lh, line)
				y += lh
			}
			pdf.SetTextColor(0, 0, 0)
		}
	}
}

func drawLine(d *document, x, y, h float64, line string) {
	d.pdf.SetXY(x, y)
	d.pdf.CellFormat(0, h, d.tr(line), "", 0, "L", false, 0, "")
}

// PDFWrapper wraps text with fpdf font metrics. Lines stay UTF-8; the
// renderer converts them to the font encoding when drawing.
type PDFWrapper struct {
	pdf          *fpdf.Fpdf
	family       string
	width        float64
	optionIndent float64
}

// Wrap implements paginate.Wrapper.
func (w *PDFWrapper) Wrap(text string, style paginate.Style) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	width := w.width
	switch style {
	case paginate.StyleOption:
		w.pdf.SetFont(w.family, "", bodySize)
		width -= w.optionIndent
	case paginate.StyleAnswer:
		w.pdf.SetFont(w.family, "", answerSize)
	case paginate.StyleInstructions:
		w.pdf.SetFont(w.family, "I", bodySize)
	default:
		w.pdf.SetFont(w.family, "", bodySize)
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines = append(lines, w.pdf.SplitText(para, width)...)
	}
	return lines
}
