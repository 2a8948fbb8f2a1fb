// Package worksheet turns the free-form text an LLM returns for one
// difficulty tier into a structured Worksheet.
//
// The upstream format is not contractually fixed, so parsing is a
// best-effort reconstruction: every stage falls back to a weaker
// heuristic instead of failing, and problems surface as data (an empty
// question list, sentinel answers) rather than errors.
package worksheet

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleLabel   = regexp.MustCompile(`(?im)^[ \t#*_]*(?:worksheet[ \t]+)?title[ \t]*[:\-][ \t]*(.+)$`)
	boldSpan     = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	markdownHead = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]+(.+?)[ \t]*#*[ \t]*$`)

	instructionsLabel = regexp.MustCompile(`(?im)^[ \t#*_]*instructions?\b[ \t*_]*:?[ \t*_]*`)
	questionsLabel    = regexp.MustCompile(`(?im)^[ \t#*_]*questions[ \t*_]*:?[ \t*_]*$`)

	// answerKeyLabel matches a line holding only an answer key label,
	// such as "ANSWER KEY:", "## Answers" or "**Answer**". After the
	// colon of "Answer key:" or "Answers:" the answers may continue on
	// the same line.
	answerKeyLabel = regexp.MustCompile(`(?im)^[ \t#*_]*(?:(?:answer[ \t]*key|answers)[ \t*_]*(?::[ \t*_]*|[ \t*_#]*$)|answer[ \t*_]*:?[ \t*_#]*$)`)

	// sectionWords are labels that must never be taken as a title.
	sectionWords = regexp.MustCompile(`(?i)^(?:instructions?|questions?|answer[ \t]*key|answers?|section\b.*|part\b.*)[ \t]*:?$`)
)

// Parse reads one tier's raw text using the grammar of t. It never fails:
// the worst case is a Worksheet with no questions and a synthesized title.
func Parse(raw, tier string, t QuestionType) *Worksheet {
	g := GrammarFor(t)
	text := normalizeNewlines(raw)
	sec := locateSections(text)

	ws := &Worksheet{
		Title:        extractTitle(sec.preamble(text), tier, g),
		Instructions: extractInstructions(text, sec),
		Tier:         tier,
		Type:         g.Type,
	}

	ws.Questions = extractQuestions(sec.questions(text), g)
	reconcileAnswers(ws.Questions, text, sec)

	if ws.Questions == nil {
		ws.Questions = []Question{}
	}
	return ws
}

// DefaultTitle synthesizes "<Tier> <TYPE> Worksheet".
func DefaultTitle(tier string, t QuestionType) string {
	label := GrammarFor(t).Label
	tier = strings.TrimSpace(tier)
	if tier == "" {
		return label + " Worksheet"
	}
	return cases.Title(language.English).String(tier) + " " + label + " Worksheet"
}

// sections holds byte offsets into the normalized text. A negative
// offset means the section was not found.
type sections struct {
	questionStart int // first byte of the question list
	answerHeader  int // start of the answer key header line
	answerBody    int // first byte after the answer key label
}

func locateSections(text string) sections {
	sec := sections{questionStart: -1, answerHeader: -1, answerBody: -1}

	if loc := answerKeyLabel.FindStringIndex(text); loc != nil {
		sec.answerHeader = loc[0]
		sec.answerBody = loc[1]
	}

	limit := len(text)
	if sec.answerHeader >= 0 {
		limit = sec.answerHeader
	}
	head := text[:limit]

	if loc := questionsLabel.FindStringIndex(head); loc != nil {
		sec.questionStart = loc[1]
	} else if loc := questionBoundary.FindStringIndex(head); loc != nil {
		sec.questionStart = loc[0]
	}
	return sec
}

// questions returns the text strictly between the question list start
// and the answer key header.
func (s sections) questions(text string) string {
	if s.questionStart < 0 {
		return ""
	}
	end := len(text)
	if s.answerHeader >= 0 {
		end = s.answerHeader
	}
	if s.questionStart >= end {
		return ""
	}
	return text[s.questionStart:end]
}

// preamble returns the text before the question list, where titles live.
func (s sections) preamble(text string) string {
	end := len(text)
	if s.answerHeader >= 0 {
		end = s.answerHeader
	}
	if s.questionStart >= 0 && s.questionStart < end {
		end = s.questionStart
	}
	return text[:end]
}

// answerKey returns the text after the answer key label, or "".
func (s sections) answerKey(text string) string {
	if s.answerBody < 0 {
		return ""
	}
	return text[s.answerBody:]
}

func extractTitle(text, tier string, g *Grammar) string {
	if m := titleLabel.FindStringSubmatch(text); m != nil {
		if t := cleanTitle(m[1]); t != "" {
			return t
		}
	}
	for _, re := range []*regexp.Regexp{boldSpan, markdownHead} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if t := cleanTitle(m[1]); t != "" && !sectionWords.MatchString(t) && !startsNumbered(t) {
				return t
			}
		}
	}
	return DefaultTitle(tier, g.Type)
}

func cleanTitle(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "*_#")
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, ":"))
}

func startsNumbered(s string) bool {
	return questionBoundary.MatchString(s)
}

func extractInstructions(text string, sec sections) string {
	loc := instructionsLabel.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	start := loc[1]

	end := len(text)
	for _, boundary := range []int{sec.questionStart, sec.answerHeader} {
		if boundary > start && boundary < end {
			end = boundary
		}
	}
	// A questions label sits between the instructions and the list.
	if m := questionsLabel.FindStringIndex(text[start:end]); m != nil {
		end = start + m[0]
	}

	body := strings.Trim(strings.TrimSpace(text[start:end]), "*_")
	return collapseSpace(body)
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// collapseSpace joins lines with single spaces and drops blank lines.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
