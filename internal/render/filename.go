package render

import (
	"fmt"
	"strings"

	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// FileName returns the PDF name for a tier, e.g. "mcq_easy_worksheet.pdf"
// or "mcq_easy_answers.pdf".
func FileName(t worksheet.QuestionType, tier string, withAnswers bool) string {
	kind := "worksheet"
	if withAnswers {
		kind = "answers"
	}
	return fmt.Sprintf("%s_%s_%s.pdf", slug(string(t)), slug(tier), kind)
}

// AnswerKeyFileName returns the XLSX answer key name for a question type.
func AnswerKeyFileName(t worksheet.QuestionType) string {
	return slug(string(t)) + "_answer_key.xlsx"
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	underscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			underscore = false
		case !underscore && b.Len() > 0:
			b.WriteByte('_')
			underscore = true
		}
	}
	out := strings.TrimSuffix(b.String(), "_")
	if out == "" {
		return "worksheet"
	}
	return out
}
