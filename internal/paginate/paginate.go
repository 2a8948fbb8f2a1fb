// Package paginate lays a worksheet out onto fixed-height pages.
//
// Pagination is a pure function of the worksheet, the geometry and the
// wrapper. Blocks carry the exact lines the wrapper produced, so a
// renderer draws what was measured and page breaks always match.
package paginate

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// BlockKind identifies what a block renders.
type BlockKind int

const (
	HeadingBlock BlockKind = iota
	InstructionsBlock
	QuestionBlock
)

func (k BlockKind) String() string {
	switch k {
	case HeadingBlock:
		return "heading"
	case InstructionsBlock:
		return "instructions"
	case QuestionBlock:
		return "question"
	}
	return "unknown"
}

// Block is one unit of a page. A block is never split across pages.
type Block struct {
	Kind BlockKind `json:"kind"`

	// Heading
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`

	// Question
	Question       *worksheet.Question `json:"question,omitempty"`
	IncludeOptions bool                `json:"include_options,omitempty"`
	IncludeAnswer  bool                `json:"include_answer,omitempty"`

	// Lines holds the wrapped instructions or question text. For
	// questions the first line starts with the question label.
	Lines       []string   `json:"lines,omitempty"`
	OptionLines [][]string `json:"option_lines,omitempty"`
	AnswerLines []string   `json:"answer_lines,omitempty"`

	// Top is the position the block starts at; Height includes the gap
	// that follows it.
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// LineCount returns the number of wrapped lines in the block.
func (b Block) LineCount() int {
	n := len(b.Lines) + len(b.AnswerLines)
	for _, opt := range b.OptionLines {
		n += len(opt)
	}
	return n
}

// Page is one output page. Numbers start at 1.
type Page struct {
	Number int     `json:"number"`
	Blocks []Block `json:"blocks"`
}

// ContentHeight sums the heights of the page's blocks.
func (p Page) ContentHeight() float64 {
	var h float64
	for _, b := range p.Blocks {
		h += b.Height
	}
	return h
}

// Subtitle formats the line under a worksheet title.
func Subtitle(w *worksheet.Worksheet) string {
	tier := cases.Title(language.English).String(strings.TrimSpace(w.Tier))
	return fmt.Sprintf("Type: %s | Level: %s", w.Type.Label(), tier)
}

// Paginate lays w out onto pages of geometry g. Options are laid out for
// MCQ questions; answers when includeAnswers is set. The heading opens
// the first page, so a worksheet without questions yields one page
// unless its instructions do not fit under the heading. Any block
// taller than a page is placed alone at the top of a fresh page.
func Paginate(w *worksheet.Worksheet, g Geometry, includeAnswers bool, wr Wrapper) []Page {
	if w == nil {
		w = &worksheet.Worksheet{}
	}

	var pages []Page
	cur := Page{Number: 1}
	cursor := g.MarginTop

	place := func(b Block) {
		if len(cur.Blocks) > 0 && cursor+b.Height > g.MaxContentHeight {
			pages = append(pages, cur)
			cur = Page{Number: cur.Number + 1}
			cursor = g.MarginTop
		}
		b.Top = cursor
		cur.Blocks = append(cur.Blocks, b)
		cursor += b.Height
	}

	place(Block{
		Kind:     HeadingBlock,
		Title:    w.Title,
		Subtitle: Subtitle(w),
		Height:   g.HeadingHeight,
	})
	if strings.TrimSpace(w.Instructions) != "" {
		place(instructionsBlock(w.Instructions, g, wr))
	}
	for i := range w.Questions {
		place(questionBlock(w.Questions[i], g, includeAnswers, wr))
	}

	return append(pages, cur)
}

func instructionsBlock(text string, g Geometry, wr Wrapper) Block {
	lines := wr.Wrap("Instructions: "+text, StyleInstructions)
	return Block{
		Kind:   InstructionsBlock,
		Lines:  lines,
		Height: float64(len(lines))*g.LineHeight + g.QuestionGap,
	}
}

// questionBlock measures a question with the same wrapper that will
// draw it.
func questionBlock(q worksheet.Question, g Geometry, includeAnswers bool, wr Wrapper) Block {
	q.Options = append([]string(nil), q.Options...)
	b := Block{
		Kind:           QuestionBlock,
		Question:       &q,
		IncludeOptions: q.Type == worksheet.MCQ,
		IncludeAnswer:  includeAnswers,
		Lines:          wr.Wrap(q.Label()+" "+q.Text, StyleBody),
	}
	if b.IncludeOptions {
		for _, opt := range q.Options {
			b.OptionLines = append(b.OptionLines, wr.Wrap(opt, StyleOption))
		}
	}
	if b.IncludeAnswer {
		b.AnswerLines = wr.Wrap("Answer: "+q.Answer, StyleAnswer)
	}
	b.Height = float64(b.LineCount())*g.LineHeight + g.QuestionGap
	return b
}
