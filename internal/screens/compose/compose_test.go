package compose

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/worksheetgen/internal/generator"
	"github.com/abhisek/worksheetgen/internal/router"
	"github.com/abhisek/worksheetgen/internal/screen"
	"github.com/abhisek/worksheetgen/internal/store"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

type fakeGenerator struct {
	got generator.GenerateInput
	err error
}

func (f *fakeGenerator) Generate(_ context.Context, in generator.GenerateInput) (*generator.Result, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	res := &generator.Result{Tiers: map[string]string{}, Model: "mock"}
	for _, t := range in.Tiers {
		res.Tiers[t] = "1. Question?\nAnswer Key:\n1. Yes"
		res.Order = append(res.Order, t)
	}
	return res, nil
}

func (f *fakeGenerator) Regenerate(context.Context, generator.GenerateInput, string) (string, error) {
	return "", errors.New("not used")
}

type fakeRepo struct {
	store.GenerationRepo
	saved []*store.Generation
}

func (r *fakeRepo) Save(_ context.Context, g *store.Generation) error {
	g.ID = "gen-1"
	r.saved = append(r.saved, g)
	return nil
}

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return s.title }
func (s *stubScreen) Title() string                          { return s.title }

func openStub(g *store.Generation) (screen.Screen, error) {
	return &stubScreen{title: g.ID}, nil
}

func testDefaults() Defaults {
	return Defaults{
		Type:       worksheet.TrueFalse,
		Language:   "english",
		TotalMarks: 20,
		Tiers:      []string{"easy", "hard"},
	}
}

func typeText(s *ComposeScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

// runBatch executes the generation command of a start batch, skipping
// the wait ticker.
func runBatch(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) != 2 {
		t.Fatalf("expected a batch of generate and tick, got %T", cmd())
	}
	return batch[0]()
}

func TestComposeGeneratesAndOpens(t *testing.T) {
	gen := &fakeGenerator{}
	repo := &fakeRepo{}
	s := New(gen, repo, openStub, testDefaults())
	s.Init()

	typeText(s, "Plants")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !s.Generating() {
		t.Fatal("expected a request in flight")
	}
	if !strings.Contains(s.View(80, 30), "Generating") {
		t.Error("view should show the wait indicator")
	}

	_, cmd = s.Update(runBatch(t, cmd))
	if s.Generating() {
		t.Error("request should be finished")
	}

	if gen.got.Topic != "Plants" || gen.got.Type != worksheet.TrueFalse || gen.got.TotalMarks != 20 {
		t.Errorf("unexpected input: %+v", gen.got)
	}
	if strings.Join(gen.got.Tiers, ",") != "easy,hard" {
		t.Errorf("tiers = %v", gen.got.Tiers)
	}
	if len(repo.saved) != 1 || repo.saved[0].Type != "true_false" {
		t.Fatalf("saved = %+v", repo.saved)
	}

	if cmd == nil {
		t.Fatal("expected replace command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if msg.Screen.Title() != "gen-1" {
		t.Errorf("opened %q", msg.Screen.Title())
	}
}

func TestComposeFieldNavigation(t *testing.T) {
	s := New(&fakeGenerator{}, &fakeRepo{}, openStub, testDefaults())
	s.Init()

	// Topic, source, then the type selector.
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	if got := s.qtype.Value(); got != string(worksheet.FillInBlank) {
		t.Errorf("type after right = %q", got)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if s.focus != fieldSource {
		t.Errorf("focus after shift+tab = %d, want %d", s.focus, fieldSource)
	}

	for range fieldCount {
		s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	}
	if s.focus != fieldSource {
		t.Errorf("focus should wrap around, got %d", s.focus)
	}
}

func TestComposeValidation(t *testing.T) {
	gen := &fakeGenerator{}
	s := New(gen, &fakeRepo{}, openStub, testDefaults())
	s.Init()

	// Nothing to generate from.
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command without topic or source")
	}
	if !strings.Contains(s.View(80, 30), "source material or topic is required") {
		t.Error("expected validation error in view")
	}

	typeText(s, "Plants")
	s.marks.SetValue("500")
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command with out of range marks")
	}
	if s.marks.Err() == "" {
		t.Error("marks field should show an error")
	}
	if s.Generating() {
		t.Error("nothing should be in flight")
	}
}

func TestComposeReadsSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("Plants make food from sunlight."), 0o644); err != nil {
		t.Fatal(err)
	}
	gen := &fakeGenerator{}
	s := New(gen, &fakeRepo{}, openStub, testDefaults())
	s.Init()

	s.source.SetValue(path)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(runBatch(t, cmd))
	if gen.got.Source != "Plants make food from sunlight." {
		t.Errorf("source = %q", gen.got.Source)
	}

	s.source.SetValue(filepath.Join(t.TempDir(), "missing.txt"))
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command for a missing file")
	}
	if s.source.Err() == "" {
		t.Error("source field should show an error")
	}
}

func TestComposeGenerationError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("LLM generation failed: rate limited")}
	repo := &fakeRepo{}
	s := New(gen, repo, openStub, testDefaults())
	s.Init()

	typeText(s, "Plants")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, cmd = s.Update(runBatch(t, cmd)); cmd != nil {
		t.Error("expected no command after a failure")
	}
	if len(repo.saved) != 0 {
		t.Error("nothing should be saved")
	}
	if !strings.Contains(s.View(80, 30), "rate limited") {
		t.Error("expected the error in view")
	}
}

func TestComposeWithoutGenerator(t *testing.T) {
	s := New(nil, &fakeRepo{}, openStub, testDefaults())
	s.Init()
	typeText(s, "Plants")
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command without a generator")
	}
	if !strings.Contains(s.View(80, 30), "no LLM provider configured") {
		t.Error("expected provider error in view")
	}
}
