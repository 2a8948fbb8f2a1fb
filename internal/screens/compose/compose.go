// Package compose is the form that requests a new worksheet set.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/worksheetgen/internal/generator"
	"github.com/abhisek/worksheetgen/internal/router"
	"github.com/abhisek/worksheetgen/internal/screen"
	"github.com/abhisek/worksheetgen/internal/store"
	"github.com/abhisek/worksheetgen/internal/ui/components"
	"github.com/abhisek/worksheetgen/internal/ui/layout"
	"github.com/abhisek/worksheetgen/internal/ui/theme"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// Defaults prefill the form.
type Defaults struct {
	Type       worksheet.QuestionType
	Language   string
	TotalMarks int
	Tiers      []string

	// Wait is the expected upper bound of one generation, used to scale
	// the wait indicator.
	Wait time.Duration
}

// Form fields in focus order.
const (
	fieldTopic = iota
	fieldSource
	fieldType
	fieldLanguage
	fieldMarks
	fieldTiers
	fieldSubmit
	fieldCount
)

var (
	nextField = key.NewBinding(key.WithKeys("tab", "down"))
	prevField = key.NewBinding(key.WithKeys("shift+tab", "up"))
	submitKey = key.NewBinding(key.WithKeys("enter"))
)

const tickInterval = 250 * time.Millisecond

// ComposeScreen collects generation settings, runs the generator and
// replaces itself with the opened result.
type ComposeScreen struct {
	gen      generator.Generator
	repo     store.GenerationRepo
	open     func(*store.Generation) (screen.Screen, error)
	defaults Defaults

	topic    components.TextInput
	source   components.TextInput
	qtype    components.Choice
	language components.Choice
	marks    components.TextInput
	tiers    components.TextInput
	submit   components.Button
	focus    int

	generating bool
	started    time.Time
	elapsed    time.Duration
	errMsg     string
}

var _ screen.Screen = (*ComposeScreen)(nil)
var _ screen.KeyHintProvider = (*ComposeScreen)(nil)

// New creates the form. open turns a saved generation into the screen
// that shows it.
func New(gen generator.Generator, repo store.GenerationRepo, open func(*store.Generation) (screen.Screen, error), d Defaults) *ComposeScreen {
	if d.Type == "" {
		d.Type = worksheet.MCQ
	}
	if d.Wait <= 0 {
		d.Wait = 2 * time.Minute
	}

	types := make([]string, len(worksheet.QuestionTypes))
	for i, t := range worksheet.QuestionTypes {
		types[i] = string(t)
	}

	s := &ComposeScreen{
		gen:      gen,
		repo:     repo,
		open:     open,
		defaults: d,
		topic:    components.NewTextInput("Topic", "e.g. Photosynthesis", false, 120),
		source:   components.NewTextInput("Source file", "optional path to study material", false, 0),
		qtype:    components.NewChoice("Question type", types, string(d.Type)),
		language: components.NewChoice("Language", generator.Languages, d.Language),
		marks:    components.NewTextInput("Total marks", strconv.Itoa(generator.MinTotalMarks), true, 3),
		tiers:    components.NewTextInput("Tiers", "easy, medium, hard", false, 80),
	}
	s.submit = components.NewButton("Generate", s.start)
	if d.TotalMarks > 0 {
		s.marks.SetValue(strconv.Itoa(d.TotalMarks))
	}
	if len(d.Tiers) > 0 {
		s.tiers.SetValue(strings.Join(d.Tiers, ", "))
	}
	return s
}

func (s *ComposeScreen) Init() tea.Cmd {
	return s.setFocus(fieldTopic)
}

func (s *ComposeScreen) Title() string {
	return "New Worksheets"
}

func (s *ComposeScreen) KeyHints() []layout.KeyHint {
	if s.generating {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "←→", Description: "Change option"},
		{Key: "Enter", Description: "Generate"},
		{Key: "Esc", Description: "Back"},
	}
}

// Generating reports whether a request is in flight.
func (s *ComposeScreen) Generating() bool { return s.generating }

func (s *ComposeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case waitTickMsg:
		if !s.generating {
			return s, nil
		}
		s.elapsed = time.Time(msg).Sub(s.started)
		return s, tickCmd()

	case generationDoneMsg:
		return s.handleDone(msg)

	case tea.KeyPressMsg:
		if s.generating {
			return s, nil
		}
		switch {
		case key.Matches(msg, nextField):
			return s, s.setFocus((s.focus + 1) % fieldCount)
		case key.Matches(msg, prevField):
			return s, s.setFocus((s.focus - 1 + fieldCount) % fieldCount)
		case key.Matches(msg, submitKey) && s.focus != fieldSubmit:
			return s, s.start()
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case fieldTopic:
		s.topic, cmd = s.topic.Update(msg)
	case fieldSource:
		s.source, cmd = s.source.Update(msg)
	case fieldType:
		s.qtype, cmd = s.qtype.Update(msg)
	case fieldLanguage:
		s.language, cmd = s.language.Update(msg)
	case fieldMarks:
		s.marks, cmd = s.marks.Update(msg)
	case fieldTiers:
		s.tiers, cmd = s.tiers.Update(msg)
	case fieldSubmit:
		s.submit, cmd = s.submit.Update(msg)
	}
	return s, cmd
}

func (s *ComposeScreen) setFocus(field int) tea.Cmd {
	s.topic.Blur()
	s.source.Blur()
	s.qtype.Blur()
	s.language.Blur()
	s.marks.Blur()
	s.tiers.Blur()
	s.submit.Blur()
	s.focus = field

	switch field {
	case fieldTopic:
		return s.topic.Focus()
	case fieldSource:
		return s.source.Focus()
	case fieldType:
		s.qtype.Focus()
	case fieldLanguage:
		s.language.Focus()
	case fieldMarks:
		return s.marks.Focus()
	case fieldTiers:
		return s.tiers.Focus()
	case fieldSubmit:
		s.submit.Focus()
	}
	return nil
}

// input builds the request from the form. Field errors are shown inline.
func (s *ComposeScreen) input() (generator.GenerateInput, bool) {
	qt, _ := worksheet.ParseQuestionType(s.qtype.Value())
	in := generator.GenerateInput{
		Topic:    s.topic.Value(),
		Type:     qt,
		Language: s.language.Value(),
		Tiers:    splitTiers(s.tiers.Value()),
	}
	if len(in.Tiers) == 0 {
		in.Tiers = s.defaults.Tiers
	}

	marks, err := s.marks.NumericValue()
	if err != nil || marks < generator.MinTotalMarks || marks > generator.MaxTotalMarks {
		s.marks.SetError(fmt.Sprintf("%d-%d", generator.MinTotalMarks, generator.MaxTotalMarks))
		return in, false
	}
	in.TotalMarks = marks

	if path := s.source.Value(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			s.source.SetError("cannot read file")
			return in, false
		}
		in.Source = string(data)
	}
	return in, true
}

// start validates the form and launches the request.
func (s *ComposeScreen) start() tea.Cmd {
	if s.generating {
		return nil
	}
	s.errMsg = ""
	in, ok := s.input()
	if !ok {
		return nil
	}
	if err := in.Validate(); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	if s.gen == nil {
		s.errMsg = "no LLM provider configured"
		return nil
	}

	s.generating = true
	s.started = time.Now()
	s.elapsed = 0

	gen, repo := s.gen, s.repo
	generate := func() tea.Msg {
		ctx := context.Background()
		res, err := gen.Generate(ctx, in)
		if err != nil {
			return generationDoneMsg{Err: err}
		}
		g := res.Generation(in)
		if repo != nil {
			if err := repo.Save(ctx, g); err != nil {
				slog.Warn("save generation", "error", err)
			}
		}
		return generationDoneMsg{Generation: g}
	}
	return tea.Batch(generate, tickCmd())
}

func (s *ComposeScreen) handleDone(msg generationDoneMsg) (screen.Screen, tea.Cmd) {
	s.generating = false
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	if s.open == nil {
		return s, nil
	}
	next, err := s.open(msg.Generation)
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *ComposeScreen) View(width, height int) string {
	cw := min(width-4, 72)

	var b strings.Builder
	b.WriteString("\n")
	for _, line := range []string{
		s.topic.View(),
		s.source.View(),
		"",
		s.qtype.View(),
		s.language.View(),
		s.marks.View(),
		s.tiers.View(),
		"",
		s.submit.View(),
	} {
		b.WriteString("  " + line + "\n")
	}

	b.WriteString("\n")
	switch {
	case s.generating:
		pct := float64(s.elapsed) / float64(s.defaults.Wait)
		bar := components.NewProgressBar("Generating", pct, false, cw)
		b.WriteString("  " + bar.View() + "\n")
		b.WriteString("  " + theme.Hint.Render(fmt.Sprintf("Waiting for the model, %ds", int(s.elapsed.Seconds()))) + "\n")
	case s.errMsg != "":
		b.WriteString("  " + theme.Unresolved.Render("Error: "+s.errMsg) + "\n")
	default:
		b.WriteString("  " + theme.Hint.Render("A topic, a source file or both. Every tier is generated in one request.") + "\n")
	}

	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func splitTiers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// tickCmd returns a wait indicator tick.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return waitTickMsg(t)
	})
}
