// Package history lists stored generations and opens one in the viewer.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/worksheetgen/internal/router"
	"github.com/abhisek/worksheetgen/internal/screen"
	"github.com/abhisek/worksheetgen/internal/store"
	"github.com/abhisek/worksheetgen/internal/ui/layout"
	"github.com/abhisek/worksheetgen/internal/ui/theme"
)

// OpenFunc builds the screen that shows a generation.
type OpenFunc func(g *store.Generation) (screen.Screen, error)

type historyLoadedMsg struct {
	Generations []store.Generation
	Err         error
}

// HistoryScreen displays past generations.
type HistoryScreen struct {
	repo     store.GenerationRepo
	open     OpenFunc
	limit    int
	gens     []store.Generation
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen showing up to limit generations.
func New(repo store.GenerationRepo, open OpenFunc, limit int) *HistoryScreen {
	if limit <= 0 {
		limit = 50
	}
	return &HistoryScreen{
		repo:     repo,
		open:     open,
		limit:    limit,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		gens, err := s.repo.List(context.Background(), s.limit)
		return historyLoadedMsg{Generations: gens, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "Space", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.gens = msg.Generations
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, tea.Quit
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.gens)-1 {
				s.selected++
			}
		case "space":
			s.expanded[s.selected] = !s.expanded[s.selected]
		case "enter":
			return s, s.openSelected()
		}
	}
	return s, nil
}

func (s *HistoryScreen) openSelected() tea.Cmd {
	if s.open == nil || s.selected >= len(s.gens) {
		return nil
	}
	next, err := s.open(&s.gens[s.selected])
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.gens) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No worksheets generated yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, g := range s.gens {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		topic := g.Topic
		if topic == "" {
			topic = "(from source)"
		}
		line := fmt.Sprintf("%s%s  %-14s %-8s %3d marks  %s",
			prefix, g.CreatedAt.Local().Format("Jan 02 15:04"), g.Type, g.Language, g.TotalMarks, topic)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			tiers := make([]string, 0, len(g.Tiers))
			for _, t := range g.Tiers {
				tiers = append(tiers, t.Tier)
			}
			detail := fmt.Sprintf("    %s  model %s  tiers %s", g.ID, g.Model, strings.Join(tiers, ", "))
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}
