package worksheet

import (
	"regexp"
	"strconv"
	"strings"
)

// Answer key line shapes for the primary pass, tried in order.
var primaryShapes = []*regexp.Regexp{
	regexp.MustCompile(`^(\d+)\.[:\-\s]?\s*(.+)$`),                       // 1. b   1.- b   1.: b
	regexp.MustCompile(`^(\d+)\s*[-–—]\s*(.+)$`),                         // 1 - True
	regexp.MustCompile(`(?i)^(?:q(?:uestion)?\s*)?(\d+)[:.)]?\s+(.+)$`), // Q1 b   Q1: b   1 b
}

// fallbackShape is the looser pattern used once an answer key marker
// has been seen anywhere in the text.
var fallbackShape = regexp.MustCompile(`^(\d+)\.?[:\-\s]?\s*(.+)$`)

var bulletPrefix = regexp.MustCompile(`^[-*•][ \t]+`)

// reconcileAnswers fills in answers from the answer key. The primary pass
// reads the labelled answer key span; the fallback pass runs only when a
// question still holds the sentinel, and never overwrites an answer
// that is already resolved.
func reconcileAnswers(qs []Question, text string, sec sections) {
	if len(qs) == 0 {
		return
	}
	index := make(map[int]int, len(qs))
	for i, q := range qs {
		index[q.ID] = i
	}

	for _, line := range strings.Split(sec.answerKey(text), "\n") {
		id, answer, ok := matchAnswer(line, primaryShapes)
		if !ok {
			continue
		}
		if i, found := index[id]; found {
			qs[i].Answer = answer
		}
	}

	if !anyUnresolved(qs) {
		return
	}

	seenMarker := false
	for _, line := range strings.Split(text, "\n") {
		if !seenMarker {
			lower := strings.ToLower(line)
			seenMarker = strings.Contains(lower, "answer key") || strings.Contains(lower, "answers:") ||
				answerKeyLabel.MatchString(line)
			continue
		}
		id, answer, ok := matchAnswer(line, []*regexp.Regexp{fallbackShape})
		if !ok {
			continue
		}
		if i, found := index[id]; found && !qs[i].Resolved() {
			qs[i].Answer = answer
		}
	}
}

// matchAnswer applies shapes in order to a cleaned line and returns the
// first match.
func matchAnswer(line string, shapes []*regexp.Regexp) (int, string, bool) {
	line = cleanAnswerLine(line)
	if line == "" {
		return 0, "", false
	}
	for _, re := range shapes {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, "", false
		}
		answer := cleanText(m[2])
		if answer == "" {
			return 0, "", false
		}
		return id, answer, true
	}
	return 0, "", false
}

func cleanAnswerLine(line string) string {
	line = strings.TrimSpace(line)
	line = bulletPrefix.ReplaceAllString(line, "")
	line = strings.ReplaceAll(line, "**", "")
	line = strings.ReplaceAll(line, "__", "")
	return strings.TrimSpace(line)
}

func anyUnresolved(qs []Question) bool {
	for _, q := range qs {
		if !q.Resolved() {
			return true
		}
	}
	return false
}
