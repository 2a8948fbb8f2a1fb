package components

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/worksheetgen/internal/ui/theme"
)

// Button is a form button pressed with enter while focused.
type Button struct {
	Label   string
	OnPress func() tea.Cmd
	focused bool
}

// NewButton creates a new button.
func NewButton(label string, onPress func() tea.Cmd) Button {
	return Button{
		Label:   label,
		OnPress: onPress,
	}
}

// Focus focuses the button.
func (b *Button) Focus() { b.focused = true }

// Blur removes focus from the button.
func (b *Button) Blur() { b.focused = false }

// Focused reports whether the button has focus.
func (b Button) Focused() bool { return b.focused }

// Update handles key events.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if !b.focused {
		return b, nil
	}
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && key.Matches(kmsg, selectKey) && b.OnPress != nil {
		return b, b.OnPress()
	}
	return b, nil
}

// View renders the button.
func (b Button) View() string {
	if b.focused {
		return theme.TabActive.Render("▸ " + b.Label)
	}
	return theme.TabInactive.Render("  " + b.Label)
}
