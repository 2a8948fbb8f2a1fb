package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestIsTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{MinWidth, MinHeight, false},
		{MinWidth - 1, MinHeight, true},
		{MinWidth, MinHeight - 1, true},
		{200, 60, false},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.w, tt.h); got != tt.want {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Viewer", "Page 2/5", 80)
	for _, want := range []string{AppName, "Viewer", "Page 2/5"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q:\n%s", want, h)
		}
	}
	if got := lipgloss.Height(h); got != 3 {
		t.Errorf("header height = %d, want 3", got)
	}
}

func TestRenderFooter(t *testing.T) {
	f := RenderFooter([]KeyHint{{Key: "a", Description: "Answers"}, {Key: "q", Description: "Quit"}}, 80)
	if !strings.Contains(f, "Answers") || !strings.Contains(f, "Quit") {
		t.Errorf("footer missing hints:\n%s", f)
	}
}

func TestRenderFrameHeight(t *testing.T) {
	header := RenderHeader("T", "", 80)
	footer := RenderFooter(nil, 80)
	frame := RenderFrame(header, "body", footer, 80, 30)
	if got := lipgloss.Height(frame); got != 30 {
		t.Errorf("frame height = %d, want 30", got)
	}
}
