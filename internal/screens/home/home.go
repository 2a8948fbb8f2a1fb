// Package home is the start screen: a menu over the other screens.
package home

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/worksheetgen/internal/generator"
	"github.com/abhisek/worksheetgen/internal/router"
	"github.com/abhisek/worksheetgen/internal/screen"
	"github.com/abhisek/worksheetgen/internal/screens/compose"
	"github.com/abhisek/worksheetgen/internal/screens/history"
	"github.com/abhisek/worksheetgen/internal/screens/notice"
	"github.com/abhisek/worksheetgen/internal/store"
	"github.com/abhisek/worksheetgen/internal/ui/components"
	"github.com/abhisek/worksheetgen/internal/ui/layout"
	"github.com/abhisek/worksheetgen/internal/ui/theme"
)

// Options are the dependencies of the home screen. Generator may be nil,
// in which case ProviderError explains why.
type Options struct {
	Generator     generator.Generator
	ProviderError string
	Generations   store.GenerationRepo
	Open          history.OpenFunc
	Defaults      compose.Defaults
}

// HomeScreen is the main menu.
type HomeScreen struct {
	menu components.Menu
	opts Options
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	h := &HomeScreen{opts: opts}

	items := []components.MenuItem{
		{Label: "NEW WORKSHEETS", Hint: "Generate a tiered set from a topic or study material", Action: h.compose},
		{Label: "LATEST", Hint: "Open the most recent worksheet set", Action: h.latest},
		{Label: "HISTORY", Hint: "Browse every stored worksheet set", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(opts.Generations, opts.Open, 0)}
			}
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) compose() tea.Cmd {
	if h.opts.Generator == nil {
		msg := "No LLM provider is configured.\n\n" +
			"Set ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY or OPENROUTER_API_KEY,\n" +
			"or choose one with WORKSHEETGEN_LLM_PROVIDER."
		if h.opts.ProviderError != "" {
			msg += "\n\n" + h.opts.ProviderError
		}
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: notice.New("New Worksheets", msg)}
		}
	}
	scr := compose.New(h.opts.Generator, h.opts.Generations, h.opts.Open, h.opts.Defaults)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: scr}
	}
}

func (h *HomeScreen) latest() tea.Cmd {
	repo, open := h.opts.Generations, h.opts.Open
	return func() tea.Msg {
		g, err := repo.Latest(context.Background())
		if errors.Is(err, store.ErrNotFound) {
			return router.PushScreenMsg{Screen: notice.New("Latest", "No worksheets generated yet.")}
		}
		if err == nil {
			var next screen.Screen
			if next, err = open(g); err == nil {
				return router.PushScreenMsg{Screen: next}
			}
		}
		return router.PushScreenMsg{Screen: notice.New("Latest", "Error: "+err.Error())}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && kmsg.String() == "q" {
		return h, tea.Quit
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "q", Description: "Quit"},
	}
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections,
		theme.Title.Width(width).Render(strings.ToUpper(layout.AppName)),
		theme.Subtitle.Width(width).Render("Printable tiered worksheets from your study material"),
	)
	sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))

	if h.opts.Generator == nil {
		sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Notice.Render("LLM provider not configured: generation is unavailable")))
	}

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
