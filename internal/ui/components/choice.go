package components

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/worksheetgen/internal/ui/theme"
)

// Choice is a single-line selector cycled with left and right.
type Choice struct {
	Label    string
	Options  []string
	Selected int
	focused  bool
}

// NewChoice creates a selector with value preselected when present.
func NewChoice(label string, options []string, value string) Choice {
	c := Choice{Label: label, Options: options}
	for i, opt := range options {
		if strings.EqualFold(opt, value) {
			c.Selected = i
		}
	}
	return c
}

// Focus focuses the selector.
func (c *Choice) Focus() { c.focused = true }

// Blur removes focus from the selector.
func (c *Choice) Blur() { c.focused = false }

// Focused reports whether the selector has focus.
func (c Choice) Focused() bool { return c.focused }

// Update cycles through the options while focused.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !c.focused || len(c.Options) == 0 {
		return c, nil
	}

	switch {
	case key.Matches(kmsg, leftKey):
		c.Selected = (c.Selected - 1 + len(c.Options)) % len(c.Options)
	case key.Matches(kmsg, rightKey):
		c.Selected = (c.Selected + 1) % len(c.Options)
	}
	return c, nil
}

// Value returns the selected option.
func (c Choice) Value() string {
	if c.Selected < 0 || c.Selected >= len(c.Options) {
		return ""
	}
	return c.Options[c.Selected]
}

// View renders the label and the selected option between arrows.
func (c Choice) View() string {
	label := theme.Unselected.Render(c.Label + ": ")
	value := theme.Body.Render(c.Value())
	if c.focused {
		label = theme.Selected.Render(c.Label + ": ")
		value = theme.Selected.Render("‹ " + c.Value() + " ›")
	}
	return label + value
}
