// Package viewer shows the tiers of a workbook page by page.
package viewer

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/abhisek/worksheetgen/internal/paginate"
	"github.com/abhisek/worksheetgen/internal/screen"
	"github.com/abhisek/worksheetgen/internal/ui/layout"
	"github.com/abhisek/worksheetgen/internal/ui/theme"
	"github.com/abhisek/worksheetgen/internal/workbook"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// Exporter writes a worksheet as PDF and returns the path it wrote.
type Exporter func(ws *worksheet.Worksheet, includeAnswers bool) (string, error)

type exportDoneMsg struct {
	path string
	err  error
}

type keyMap struct {
	NextTier key.Binding
	PrevTier key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	First    key.Binding
	Last     key.Binding
	Answers  key.Binding
	Export   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	NextTier: key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("←→", "Tier")),
	PrevTier: key.NewBinding(key.WithKeys("left", "h", "shift+tab")),
	NextPage: key.NewBinding(key.WithKeys("down", "j", "pgdown", "space"), key.WithHelp("↑↓", "Page")),
	PrevPage: key.NewBinding(key.WithKeys("up", "k", "pgup")),
	First:    key.NewBinding(key.WithKeys("home", "g")),
	Last:     key.NewBinding(key.WithKeys("end", "G")),
	Answers:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "Answers")),
	Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "Export PDF")),
	Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "Quit")),
}

// Rows used around the page: tabs, a gap, a gap and the status line.
const chromeRows = 4

// layoutKey identifies a cached pagination.
type layoutKey struct {
	tier    string
	answers bool
	width   int
	rows    int
}

// Viewer is the worksheet viewer screen.
type Viewer struct {
	wb      *workbook.Workbook
	export  Exporter
	answers bool
	page    int

	status    string
	statusErr bool

	cached layoutKey
	pages  []paginate.Page
}

var _ screen.Screen = (*Viewer)(nil)
var _ screen.KeyHintProvider = (*Viewer)(nil)
var _ screen.StatusProvider = (*Viewer)(nil)

// New creates a viewer over wb. export may be nil, which disables
// exporting.
func New(wb *workbook.Workbook, export Exporter) *Viewer {
	return &Viewer{wb: wb, export: export}
}

func (v *Viewer) Init() tea.Cmd { return nil }

func (v *Viewer) Title() string {
	return v.wb.Type().Label() + " Worksheets"
}

func (v *Viewer) KeyHints() []layout.KeyHint {
	bindings := []key.Binding{keys.NextTier, keys.NextPage, keys.Answers}
	if v.export != nil {
		bindings = append(bindings, keys.Export)
	}
	bindings = append(bindings, keys.Quit)

	hints := make([]layout.KeyHint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, layout.KeyHint{Key: h.Key, Description: h.Desc})
	}
	return hints
}

// Status reports the current page.
func (v *Viewer) Status() string {
	if len(v.pages) == 0 {
		return ""
	}
	return fmt.Sprintf("Page %d/%d  ", v.page+1, len(v.pages))
}

// IncludeAnswers reports whether answers are shown.
func (v *Viewer) IncludeAnswers() bool { return v.answers }

// Page returns the zero-based page index.
func (v *Viewer) Page() int { return v.page }

func (v *Viewer) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exportDoneMsg:
		if msg.err != nil {
			v.setStatus("Export failed: "+msg.err.Error(), true)
		} else {
			v.setStatus("Saved "+msg.path, false)
		}
		return v, nil

	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, keys.NextTier):
			v.switchTier(1)
		case key.Matches(msg, keys.PrevTier):
			v.switchTier(-1)
		case key.Matches(msg, keys.NextPage):
			if v.page < len(v.pages)-1 {
				v.page++
			}
		case key.Matches(msg, keys.PrevPage):
			if v.page > 0 {
				v.page--
			}
		case key.Matches(msg, keys.First):
			v.page = 0
		case key.Matches(msg, keys.Last):
			if len(v.pages) > 0 {
				v.page = len(v.pages) - 1
			}
		case key.Matches(msg, keys.Answers):
			v.answers = !v.answers
			v.page = 0
			v.status = ""
		case key.Matches(msg, keys.Export):
			return v, v.exportCmd()
		}
	}
	return v, nil
}

func (v *Viewer) setStatus(s string, isErr bool) {
	v.status = s
	v.statusErr = isErr
}

func (v *Viewer) switchTier(step int) {
	tiers := v.wb.Tiers()
	if len(tiers) < 2 {
		return
	}
	i := 0
	for j, t := range tiers {
		if t == v.wb.ActiveTier() {
			i = j
		}
	}
	i = (i + step + len(tiers)) % len(tiers)
	_ = v.wb.SetActiveTier(tiers[i])
	v.page = 0
	v.status = ""
}

func (v *Viewer) exportCmd() tea.Cmd {
	if v.export == nil {
		v.setStatus("Export is not available", true)
		return nil
	}
	ws, ok := v.wb.ActiveWorksheet()
	if !ok {
		return nil
	}
	answers := v.answers
	v.setStatus("Exporting...", false)
	export := v.export
	return func() tea.Msg {
		path, err := export(ws, answers)
		return exportDoneMsg{path: path, err: err}
	}
}

// layout paginates the active tier for a content area, reusing the last
// result when nothing changed.
func (v *Viewer) layout(width, rows int) []paginate.Page {
	k := layoutKey{tier: v.wb.ActiveTier(), answers: v.answers, width: width, rows: rows}
	if k == v.cached && v.pages != nil {
		return v.pages
	}
	pages, err := v.wb.Render(k.tier, k.answers, paginate.Lines(rows), paginate.NewColumnWrapper(width))
	if err != nil {
		pages = nil
	}
	v.cached = k
	v.pages = pages
	if v.page >= len(pages) {
		v.page = max(len(pages)-1, 0)
	}
	return pages
}

func (v *Viewer) View(width, height int) string {
	if v.wb.Len() == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No worksheets to show.")
	}

	textWidth := width - 4
	rows := height - chromeRows
	if textWidth < 20 || rows < 5 {
		return ""
	}

	pages := v.layout(textWidth, rows)
	var body string
	if len(pages) > 0 {
		body = v.drawPage(pages[v.page], textWidth)
	}
	body = lipgloss.NewStyle().Height(rows).MaxHeight(rows).Render(body)

	var b strings.Builder
	b.WriteString(v.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(v.renderStatus(len(pages)))
	return b.String()
}

func (v *Viewer) renderTabs() string {
	title := cases.Title(language.English)
	tabs := make([]string, 0, v.wb.Len())
	for _, t := range v.wb.Tiers() {
		if t == v.wb.ActiveTier() {
			tabs = append(tabs, theme.TabActive.Render(title.String(t)))
		} else {
			tabs = append(tabs, theme.TabInactive.Render(title.String(t)))
		}
	}
	return "  " + strings.Join(tabs, " ")
}

func (v *Viewer) renderStatus(total int) string {
	mode := "answers hidden"
	if v.answers {
		mode = "answers shown"
	}
	line := theme.Hint.Render(fmt.Sprintf("  Page %d of %d, %s", v.page+1, max(total, 1), mode))
	if v.status != "" {
		style := theme.Notice
		if v.statusErr {
			style = theme.Unresolved
		}
		line += "   " + style.Render(v.status)
	}
	return line
}

// drawPage places every block on the row its Top gives.
func (v *Viewer) drawPage(p paginate.Page, width int) string {
	var rows []string
	put := func(row int, s string) {
		for len(rows) < row {
			rows = append(rows, "")
		}
		rows = append(rows, "  "+s)
	}

	for _, b := range p.Blocks {
		row := int(b.Top)
		next := func(s string) {
			put(row, s)
			row++
		}
		switch b.Kind {
		case paginate.HeadingBlock:
			next(theme.Title.Width(width).Render(b.Title))
			next(theme.Subtitle.Width(width).Render(b.Subtitle))
		case paginate.InstructionsBlock:
			for _, l := range b.Lines {
				next(theme.Instructions.Render(l))
			}
		case paginate.QuestionBlock:
			for _, l := range b.Lines {
				next(theme.Body.Render(l))
			}
			for _, opt := range b.OptionLines {
				for _, l := range opt {
					next("    " + theme.Option.Render(l))
				}
			}
			style := theme.Answer
			if b.Question != nil && !b.Question.Resolved() {
				style = theme.Unresolved
			}
			for _, l := range b.AnswerLines {
				next(style.Render(l))
			}
		}
	}
	return strings.Join(rows, "\n")
}
