package paginate

import (
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/go-wordwrap"
)

// Style identifies which part of a block a piece of text belongs to.
// Renderers may use different fonts or indents per style, so wrapping
// is style-aware.
type Style int

const (
	StyleBody Style = iota
	StyleOption
	StyleAnswer
	StyleInstructions
)

// Wrapper breaks text into the lines a renderer will draw. The same
// Wrapper must be used for pagination and for drawing.
type Wrapper interface {
	Wrap(text string, style Style) []string
}

// ColumnWrapper wraps on character columns, for terminals and plain text.
type ColumnWrapper struct {
	Width int

	// OptionIndent is subtracted from Width for option lines.
	OptionIndent int
}

// NewColumnWrapper returns a ColumnWrapper with a four column option indent.
func NewColumnWrapper(width int) ColumnWrapper {
	return ColumnWrapper{Width: width, OptionIndent: 4}
}

// Wrap implements Wrapper.
func (c ColumnWrapper) Wrap(text string, style Style) []string {
	width := c.Width
	if style == StyleOption {
		width -= c.OptionIndent
	}
	if width < 1 {
		width = 1
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(wordwrap.WrapString(text, uint(width)), "\n") {
		lines = append(lines, hardBreak(line, width)...)
	}
	return lines
}

// hardBreak splits a line wordwrap left longer than width, which happens
// when a single word does not fit.
func hardBreak(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}
	var out []string
	runes := []rune(line)
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
