package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/worksheetgen/internal/ui/theme"
)

// TextInput is a labelled form field over bubbles/textinput.
type TextInput struct {
	Label       string
	Model       textinput.Model
	NumericOnly bool
	err         string
}

// NewTextInput creates an unfocused text field. charLimit 0 means no limit.
func NewTextInput(label, placeholder string, numericOnly bool, charLimit int) TextInput {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}

	return TextInput{
		Label:       label,
		Model:       ti,
		NumericOnly: numericOnly,
	}
}

// Focus focuses the field.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus from the field.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the field has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update handles messages. Numeric fields drop non-digit characters.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && t.NumericOnly && kmsg.Text != "" {
		if strings.Trim(kmsg.Text, "0123456789") != "" {
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	if _, ok := msg.(tea.KeyPressMsg); ok {
		t.err = ""
	}
	return t, cmd
}

// View renders the label, the field and any error.
func (t TextInput) View() string {
	label := theme.Unselected.Render(t.Label + ": ")
	if t.Focused() {
		label = theme.Selected.Render(t.Label + ": ")
	}
	view := label + t.Model.View()
	if t.err != "" {
		view += "  " + theme.Unresolved.Render(t.err)
	}
	return view
}

// Value returns the trimmed input value.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// NumericValue returns the input value as an integer.
func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Value())
}

// SetError shows msg next to the field until the next key press.
func (t *TextInput) SetError(msg string) {
	t.err = msg
}

// Err returns the error shown next to the field.
func (t TextInput) Err() string {
	return t.err
}
