package worksheet

import (
	"slices"
	"strconv"
	"strings"
)

// rawBlock is one numbered item as found in the question section.
type rawBlock struct {
	ordinal int      // parsed ordinal, 0 when unusable
	head    string   // text on the numbered line
	body    []string // following lines up to the next numbered line
}

// splitBlocks cuts the question section at every numbered line.
// Text before the first numbered line is discarded.
func splitBlocks(section string) []rawBlock {
	locs := questionBoundary.FindAllStringSubmatchIndex(section, -1)
	blocks := make([]rawBlock, 0, len(locs))

	for i, loc := range locs {
		b := rawBlock{}
		if n, err := strconv.Atoi(section[loc[2]:loc[3]]); err == nil && n >= 1 {
			b.ordinal = n
		}
		if loc[4] >= 0 {
			b.head = section[loc[4]:loc[5]]
		}

		bodyEnd := len(section)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		if loc[1] < bodyEnd {
			b.body = strings.Split(section[loc[1]:bodyEnd], "\n")
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// extractQuestions dispatches on the grammar's split mode, then assigns
// IDs and enforces ordering. A later question with the same ID replaces
// an earlier one.
func extractQuestions(section string, g *Grammar) []Question {
	if strings.TrimSpace(section) == "" {
		return nil
	}

	var found []Question
	for i, b := range splitBlocks(section) {
		var q Question
		switch g.Split {
		case SplitBlock:
			q = readOptionBlock(b, g)
		case SplitLine:
			q = Question{Text: cleanText(b.head)}
		default:
			q = readMultiLine(b, g)
		}
		if q.Text == "" {
			continue
		}

		q.ID = b.ordinal
		if q.ID == 0 {
			q.ID = i + 1
		}
		q.Type = g.Type
		q.Answer = SentinelAnswer
		found = append(found, q)
	}

	return dedupe(found)
}

// readOptionBlock reads an MCQ block: the numbered line (plus any
// continuation before the first option) is the question, option lines
// become labelled options, and a marks annotation ends the block.
func readOptionBlock(b rawBlock, g *Grammar) Question {
	text := []string{b.head}
	var options []string

	for _, line := range b.body {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if g.StopMarker != nil && g.StopMarker.MatchString(trimmed) {
			break
		}
		if m := g.OptionMarker.FindStringSubmatch(trimmed); m != nil {
			if len(options) < g.MaxOptions {
				options = append(options, strings.ToUpper(m[1])+") "+cleanText(m[2]))
			}
			continue
		}
		// Stray prose after the options (explanations, hints) is dropped.
		if len(options) == 0 {
			text = append(text, trimmed)
		}
	}

	return Question{
		Text:    cleanText(strings.Join(text, " ")),
		Options: options,
	}
}

// readMultiLine joins every line of the block into one prompt. Marks
// annotations on their own line are dropped.
func readMultiLine(b rawBlock, g *Grammar) Question {
	parts := []string{b.head}
	for _, line := range b.body {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if g.StopMarker != nil && g.StopMarker.MatchString(trimmed) {
			continue
		}
		parts = append(parts, trimmed)
	}
	return Question{Text: cleanText(strings.Join(parts, " "))}
}

func dedupe(found []Question) []Question {
	if len(found) == 0 {
		return nil
	}
	byID := make(map[int]Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out
}

// cleanText trims whitespace and stray markdown emphasis markers.
// Underscores are only stripped as a matched pair so that a trailing
// blank ("____") survives.
func cleanText(s string) string {
	s = strings.Trim(collapseSpace(s), "*")
	if len(s) > 4 && strings.HasPrefix(s, "__") && strings.HasSuffix(s, "__") {
		s = s[2 : len(s)-2]
	}
	return strings.TrimSpace(s)
}
