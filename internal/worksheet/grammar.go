package worksheet

import (
	"fmt"
	"regexp"
	"strings"
)

// QuestionType selects the grammar used to read a tier's text.
type QuestionType string

const (
	MCQ         QuestionType = "mcq"
	TrueFalse   QuestionType = "true_false"
	FillInBlank QuestionType = "fill_in_blank"

	// General covers quiz, short-answer and descriptive worksheets. They
	// share one multi-line grammar.
	General QuestionType = "general"
)

// QuestionTypes lists every supported type in display order.
var QuestionTypes = []QuestionType{MCQ, TrueFalse, FillInBlank, General}

// ParseQuestionType maps a user-facing selector to a QuestionType. Both
// the web form selectors (mcq, quiz, descriptive, short, FillInBlanks,
// TrueFalse) and the canonical names are accepted, case-insensitively.
func ParseQuestionType(s string) (QuestionType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "", "/", "").Replace(key)

	switch key {
	case "mcq", "multiplechoice":
		return MCQ, nil
	case "truefalse", "tf":
		return TrueFalse, nil
	case "fillinblanks", "fillintheblanks", "fillinblank", "fib":
		return FillInBlank, nil
	case "general", "quiz", "short", "shortanswer", "shortanswers", "descriptive":
		return General, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// SplitMode controls how a question's text is delimited.
type SplitMode int

const (
	// SplitBlock reads a numbered line as the question and the following
	// lines as its body (options for MCQ).
	SplitBlock SplitMode = iota

	// SplitLine reads one question per numbered line.
	SplitLine

	// SplitMultiLine reads everything up to the next numbered line as the
	// question text.
	SplitMultiLine
)

// Grammar describes the textual shape of one question type.
type Grammar struct {
	Type  QuestionType
	Label string
	Split SplitMode

	// CaptureOptions enables option capture; OptionMarker must then
	// match an option line with the letter in group 1 and the text in
	// group 2.
	CaptureOptions bool
	OptionMarker   *regexp.Regexp
	MaxOptions     int

	// StopMarker ends a question block early, e.g. a "(2 marks)" line.
	StopMarker *regexp.Regexp
}

var (
	// questionBoundary matches "<int>." at a line start, tolerating
	// markdown emphasis and heading markers around the ordinal.
	questionBoundary = regexp.MustCompile(`(?m)^[ \t]*(?:#{1,6}[ \t]*)?(?:\*\*|__)?(?:Q(?:uestion)?[ \t]*)?(\d+)\.(?:\*\*|__)?(?:[ \t]+(.*?))?[ \t]*$`)

	// optionMarker matches "a) text", "(a) text" and "a. text".
	optionMarker = regexp.MustCompile(`(?i)^[ \t]*(?:[-*][ \t]+)?\(?([a-h])(?:\)|\.[ \t]|\.$)[ \t]*(.*)$`)

	marksMarker = regexp.MustCompile(`(?i)^[ \t]*[\[(]?[ \t]*(?:\d+(?:\.\d+)?[ \t]*marks?\b|marks?[ \t]*[:=-])`)
)

var grammars = map[QuestionType]*Grammar{
	MCQ: {
		Type:           MCQ,
		Label:          "MCQ",
		Split:          SplitBlock,
		CaptureOptions: true,
		OptionMarker:   optionMarker,
		MaxOptions:     8,
		StopMarker:     marksMarker,
	},
	TrueFalse: {
		Type:  TrueFalse,
		Label: "TRUE/FALSE",
		Split: SplitLine,
	},
	FillInBlank: {
		Type:  FillInBlank,
		Label: "FILL IN THE BLANKS",
		Split: SplitLine,
	},
	General: {
		Type:       General,
		Label:      "GENERAL",
		Split:      SplitMultiLine,
		StopMarker: marksMarker,
	},
}

// GrammarFor returns the grammar of t. Unknown types read as General.
func GrammarFor(t QuestionType) *Grammar {
	if g, ok := grammars[t]; ok {
		return g
	}
	return grammars[General]
}

// Label returns the display label of t, e.g. "MCQ".
func (t QuestionType) Label() string {
	return GrammarFor(t).Label
}
