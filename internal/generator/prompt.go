package generator

import (
	"fmt"
	"strings"

	"github.com/abhisek/worksheetgen/internal/worksheet"
)

const systemPrompt = `You are a teacher preparing printable school worksheets from study material.

Rules:
- Write one complete worksheet per requested difficulty tier. Tiers differ in depth and reasoning, not in topic.
- Start each worksheet with a title line and a single line beginning with "Instructions:".
- Number questions "1.", "2.", "3." at the start of a line. Never number anything else that way.
- Follow the question format given below exactly.
- The marks of all questions in a worksheet must add up to the total marks.
- End each worksheet with a line "Answer Key:" followed by one line per question: "<number>. <answer>".
- For multiple choice answers, give the option letter and text, e.g. "2. b) Oxygen".
- Use plain text. No markdown tables, no LaTeX.
- Write the whole worksheet, including the answer key, in the requested language. Keep the "Instructions:" and "Answer Key:" markers in English.`

// formatGuide describes the layout the parser expects for each type.
var formatGuide = map[worksheet.QuestionType]string{
	worksheet.MCQ: `Multiple choice. Each question is a numbered line followed by four option lines "a) ...", "b) ...", "c) ...", "d) ...". Exactly one option is correct.`,

	worksheet.TrueFalse: `True or false. Each question is a single numbered statement on one line. Answers are "True" or "False".`,

	worksheet.FillInBlank: `Fill in the blanks. Each question is a single numbered sentence on one line with the missing word shown as "______". Answers are the missing word or phrase.`,

	worksheet.General: `Short answer and descriptive questions. Each question starts on a numbered line and may continue on following lines. Put the marks on their own line, e.g. "(2 marks)". Answers are a short model answer on one line.`,
}

// buildUserMessage constructs the user message from GenerateInput and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question type: %s\n", input.Type.Label())
	fmt.Fprintf(&b, "Format: %s\n", formatGuide[worksheet.GrammarFor(input.Type).Type])
	fmt.Fprintf(&b, "Total marks per worksheet: %d\n", input.TotalMarks)
	fmt.Fprintf(&b, "Language: %s\n", input.Language)
	fmt.Fprintf(&b, "Tiers: %s\n", strings.Join(input.Tiers, ", "))

	if input.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", input.Topic)
	}

	b.WriteString("\nStudy material:\n")
	b.WriteString(truncateSource(input.Source, cfg.MaxSourceChars))

	return b.String()
}

// truncateSource keeps at most max runes of the source material.
func truncateSource(src string, max int) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return "None. Use the topic."
	}
	runes := []rune(src)
	if max <= 0 || len(runes) <= max {
		return src
	}
	return string(runes[:max]) + "\n[truncated]"
}
