package worksheet

import (
	"strconv"
	"strings"
)

// SentinelAnswer is the answer held by a question whose answer key entry
// could not be reconciled.
const SentinelAnswer = "Answer not found"

// Worksheet is the parsed form of one difficulty tier.
//
// A Worksheet is created once per Parse call and is never mutated
// afterwards. Regenerating a tier replaces the whole value.
type Worksheet struct {
	Title        string       `json:"title"`
	Instructions string       `json:"instructions,omitempty"`
	Tier         string       `json:"tier"`
	Type         QuestionType `json:"question_type"`

	// Questions are ordered by strictly ascending ID. IDs follow the
	// ordinals found in the source text, so gaps are possible.
	Questions []Question `json:"questions"`
}

// Question is a single numbered item of a worksheet.
type Question struct {
	ID   int          `json:"id"`
	Text string       `json:"text"`
	Type QuestionType `json:"type"`

	// Options is only populated for MCQ questions. Each entry carries its
	// uppercase letter label, e.g. "B) 4".
	Options []string `json:"options,omitempty"`

	// Answer is the reconciled answer key entry, verbatim, or SentinelAnswer.
	Answer string `json:"answer"`
}

// Resolved reports whether an answer key entry was reconciled.
func (q Question) Resolved() bool {
	return q.Answer != SentinelAnswer
}

// MatchedOption maps the answer of an MCQ question onto one of its
// options. Accepted forms are a bare letter ("b"), a labelled letter
// ("B)", "(b)"), the full labelled option ("B) 4") or the option text
// ("4"). The returned index is 0-based; ok is false when the answer is
// unresolved or does not correspond to any option. A false result is a
// mismatch to surface, not an error.
func (q Question) MatchedOption() (int, bool) {
	if !q.Resolved() || len(q.Options) == 0 {
		return 0, false
	}

	answer := strings.TrimSpace(q.Answer)
	answer = strings.TrimPrefix(answer, "(")
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0, false
	}

	for i, opt := range q.Options {
		label, text := splitOptionLabel(opt)
		switch {
		case strings.EqualFold(answer, opt):
			return i, true
		case strings.EqualFold(answer, label), strings.EqualFold(answer, label+")"), strings.EqualFold(answer, label+"."):
			return i, true
		case text != "" && strings.EqualFold(answer, text):
			return i, true
		}
	}

	// Answers like "b) 4 because ..." or "B. four".
	if len(answer) >= 2 && (answer[1] == ')' || answer[1] == '.' || answer[1] == ' ') {
		letter := strings.ToUpper(answer[:1])
		for i, opt := range q.Options {
			if label, _ := splitOptionLabel(opt); label == letter {
				return i, true
			}
		}
	}
	return 0, false
}

// splitOptionLabel splits "B) 4" into "B" and "4".
func splitOptionLabel(opt string) (string, string) {
	label, text, ok := strings.Cut(opt, ")")
	if !ok || len(label) != 1 {
		return "", strings.TrimSpace(opt)
	}
	return strings.ToUpper(label), strings.TrimSpace(text)
}

// Question returns the question with the given ID.
func (w *Worksheet) Question(id int) (Question, bool) {
	for _, q := range w.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Unresolved returns the IDs of questions still holding the sentinel answer.
func (w *Worksheet) Unresolved() []int {
	var ids []int
	for _, q := range w.Questions {
		if !q.Resolved() {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// Mismatched returns the IDs of MCQ questions whose resolved answer does
// not correspond to any of their options.
func (w *Worksheet) Mismatched() []int {
	var ids []int
	for _, q := range w.Questions {
		if q.Type != MCQ || !q.Resolved() || len(q.Options) == 0 {
			continue
		}
		if _, ok := q.MatchedOption(); !ok {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// Clone returns a deep copy so callers can hand out worksheets without
// sharing option slices.
func (w *Worksheet) Clone() *Worksheet {
	if w == nil {
		return nil
	}
	out := *w
	out.Questions = make([]Question, len(w.Questions))
	for i, q := range w.Questions {
		if q.Options != nil {
			q.Options = append([]string(nil), q.Options...)
		}
		out.Questions[i] = q
	}
	return &out
}

// Label returns the display prefix of a question, e.g. "3.".
func (q Question) Label() string {
	return strconv.Itoa(q.ID) + "."
}
