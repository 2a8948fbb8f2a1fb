package paginate

import (
	"reflect"
	"testing"
	"unicode/utf8"
)

func TestColumnWrapper(t *testing.T) {
	wr := NewColumnWrapper(12)

	tests := []struct {
		name  string
		text  string
		style Style
		want  []string
	}{
		{"fits", "short line", StyleBody, []string{"short line"}},
		{"wraps on words", "the quick brown fox jumps", StyleBody, []string{"the quick", "brown fox", "jumps"}},
		{"option indent", "A) alpha beta gamma", StyleOption, []string{"A) alpha", "beta", "gamma"}},
		{"hard break", "supercalifragilistic", StyleBody, []string{"supercalifra", "gilistic"}},
		{"empty", "   ", StyleBody, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wr.Wrap(tt.text, tt.style); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Wrap(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestColumnWrapper_NeverExceedsWidth(t *testing.T) {
	wr := NewColumnWrapper(7)
	text := "Mitochondria are the powerhouse of the cell, producing adenosine triphosphate."
	for _, style := range []Style{StyleBody, StyleOption, StyleAnswer, StyleInstructions} {
		limit := wr.Width
		if style == StyleOption {
			limit -= wr.OptionIndent
		}
		for _, line := range wr.Wrap(text, style) {
			if n := utf8.RuneCountInString(line); n > limit {
				t.Errorf("style %d: line %q is %d wide, limit %d", style, line, n, limit)
			}
		}
	}
}

func TestColumnWrapper_TinyWidth(t *testing.T) {
	wr := ColumnWrapper{Width: 2, OptionIndent: 4}
	if got := wr.Wrap("ab", StyleOption); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Wrap() = %q", got)
	}
}

func TestGeometryValid(t *testing.T) {
	if !A4().Valid() || !Lines(20).Valid() {
		t.Error("default geometries should be valid")
	}
	if (Geometry{MaxContentHeight: 10}).Valid() {
		t.Error("zero line height should be invalid")
	}
	if (Geometry{MaxContentHeight: 5, MarginTop: 10, LineHeight: 1}).Valid() {
		t.Error("margin past content height should be invalid")
	}
}
