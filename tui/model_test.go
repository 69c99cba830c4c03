// ABOUTME: Unit tests for TUI model behavior
// ABOUTME: Tests model initialization and key handling

package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"touch-composer/config"
	"touch-composer/library"
	"touch-composer/topk"
)

type fakeLibraryLoader struct{ entries []library.Entry }

func (f fakeLibraryLoader) Load(string) ([]library.Entry, error) { return f.entries, nil }

type fakeSearchRunner struct{}

func (fakeSearchRunner) Run(context.Context, ConfigProvider, chan<- Update, int) error { return nil }

type fakeLogger struct{}

func (fakeLogger) Debugf(string, ...interface{}) {}

func testDeps() Dependencies {
	return Dependencies{
		ConfigProvider: config.NewSharedConfig(config.DefaultConfig()),
		SearchRunner:   fakeSearchRunner{},
		LibraryLoader:  fakeLibraryLoader{entries: []library.Entry{{Name: "Bristol", Code: "B"}}},
		Logger:         fakeLogger{},
		ConfigPath:     "test.toml",
	}
}

func TestInitModelBuildsParamsFromConfig(t *testing.T) {
	deps := testDeps()
	entries, _ := deps.LibraryLoader.Load("")
	m := initModel(entries, Options{OutputPath: "out.txt"}, deps)

	if m.paramMgr.Len() == 0 {
		t.Fatal("expected parameters to be built")
	}

	if *m.paramMgr.Get(0).IntValue != m.localConfig.LeadsPerPart {
		t.Error("first parameter should alias LeadsPerPart")
	}

	if m.focusedPanel != panelParams {
		t.Errorf("expected initial focus on params panel, got %q", m.focusedPanel)
	}
}

func TestHandleKeyTabSwitchesFocus(t *testing.T) {
	deps := testDeps()
	entries, _ := deps.LibraryLoader.Load("")
	m := initModel(entries, Options{}, deps)

	updated, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	mm, ok := updated.(model)
	if !ok {
		t.Fatal("expected model type")
	}

	if mm.focusedPanel != panelResults {
		t.Errorf("expected focus to switch to results, got %q", mm.focusedPanel)
	}
}

func TestUpdateMessageIgnoresStaleEpoch(t *testing.T) {
	deps := testDeps()
	entries, _ := deps.LibraryLoader.Load("")
	m := initModel(entries, Options{}, deps)
	m.searchEpoch = 2

	next, _ := m.Update(Update{Epoch: 1, Candidates: 5})
	mm, ok := next.(model)
	if !ok {
		t.Fatal("expected model type")
	}

	if mm.candidates != 0 {
		t.Errorf("stale update should be ignored, got candidates=%d", mm.candidates)
	}
}

func TestUpdateMessageAppliesCurrentEpoch(t *testing.T) {
	deps := testDeps()
	entries, _ := deps.LibraryLoader.Load("")
	m := initModel(entries, Options{}, deps)
	m.searchEpoch = 1

	next, _ := m.Update(Update{Epoch: 1, Candidates: 3, Top: []topk.Candidate{{Score: 10}}})
	mm, ok := next.(model)
	if !ok {
		t.Fatal("expected model type")
	}

	if mm.candidates != 3 || len(mm.top) != 1 {
		t.Errorf("update not applied: candidates=%d top=%d", mm.candidates, len(mm.top))
	}
}
