// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model implementation with search integration

// Package tui provides an interactive terminal UI for tuning and watching a
// touch composition search in real time.
package tui

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"touch-composer/config"
	"touch-composer/library"
	"touch-composer/topk"
)

// Panel identifiers
const (
	panelParams  = "params"
	panelResults = "results"
)

const (
	paramPanelWidth = 42
	panelPadding    = 2

	titleHeight     = 2
	headerHeight    = 1
	statusBarHeight = 1
	summaryHeight   = 1
	helpHeight      = 1
	spacingHeight   = 2
	totalUIChrome   = titleHeight + headerHeight + statusBarHeight + summaryHeight + helpHeight + spacingHeight

	minViewportWidth  = 20
	minViewportHeight = 5
)

const (
	statusMessageDuration = 5 * time.Second
	maxUndoStackSize      = 50
)

// Parameter represents a tunable search parameter with constraints.
type Parameter struct {
	Name     string
	Value    *float64
	IntValue *int
	Min      float64
	Max      float64
	Step     float64
	IsInt    bool
}

// searchRestartMsg signals that the search should restart with the current config.
type searchRestartMsg struct{}

// model holds the TUI state.
type model struct {
	configProvider ConfigProvider
	searchRunner   SearchRunner
	libraryLoader  LibraryLoader
	debugf         func(string, ...interface{})

	localConfig *config.SearchConfig
	paramMgr    *ParamManager
	configPath  string

	entries []library.Entry

	candidates int
	accepted   int
	iterations int
	genPerSec  float64
	progress   float64
	top        []topk.Candidate

	ctx         context.Context //nolint:containedctx // Bubble Tea owns the model lifecycle
	cancel      context.CancelFunc
	updateChan  chan Update
	searchEpoch int
	running     bool

	libraryPath string
	outputPath  string
	dryRun      bool

	width        int
	height       int
	quitting     bool
	statusMsg    string
	statusMsgAge time.Time
	focusedPanel string

	cursorPos int
	viewport  viewport.Model
	undoMgr   *UndoManager
}

type keyMap struct {
	Up, Down, Left, Right key.Binding
	Reset, Quit           key.Binding
	Start                 key.Binding
	Undo, Redo            key.Binding
	Tab                   key.Binding
}

var keys = keyMap{
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "navigate")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "navigate")),
	Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "decrease")),
	Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "increase")),
	Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset params")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Start: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start/restart search")),
	Undo:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
	Redo:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "redo")),
	Tab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	paramStyle = lipgloss.NewStyle().Padding(0, 1)

	selectedParamStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("240")).
				Foreground(lipgloss.Color("15")).
				Bold(true).
				Padding(0, 1)

	resultsHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("10"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15"))
)

// Run starts the TUI with injected dependencies.
func Run(opts Options, deps Dependencies) error {
	entries, err := deps.LibraryLoader.Load(opts.LibraryPath)
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}

	m := initModel(entries, opts, deps)

	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	fm, ok := finalModel.(model)
	if !ok || len(fm.top) == 0 {
		return nil
	}

	if fm.dryRun {
		fmt.Println("\n--dry-run mode: composition not written")
		return nil
	}

	if err := writeBest(fm.outputPath, fm.top[0]); err != nil {
		return fmt.Errorf("failed to save composition: %w", err)
	}

	fmt.Printf("\nSaved best composition to: %s\n", fm.outputPath)

	return nil
}

func initModel(entries []library.Entry, opts Options, deps Dependencies) model {
	cfg := deps.ConfigProvider.Get()
	local := cfg

	ctx, cancel := context.WithCancel(context.Background())

	params := buildParams(&local)

	m := model{
		configProvider: deps.ConfigProvider,
		searchRunner:   deps.SearchRunner,
		libraryLoader:  deps.LibraryLoader,
		debugf:         deps.Logger.Debugf,
		localConfig:    &local,
		paramMgr:       NewParamManager(params),
		configPath:     deps.ConfigPath,
		entries:        entries,
		ctx:            ctx,
		cancel:         cancel,
		updateChan:     make(chan Update, 8),
		libraryPath:    opts.LibraryPath,
		outputPath:     opts.OutputPath,
		dryRun:         opts.DryRun,
		focusedPanel:   panelParams,
		undoMgr:        NewUndoManager(maxUndoStackSize),
		viewport:       viewport.New(0, 0),
	}

	if m.outputPath == "" {
		m.outputPath = "composition.txt"
	}

	return m
}

// buildParams wires Parameter entries to local's integer fields, in the same
// order ParamManager.ResetToDefaults expects.
func buildParams(local *config.SearchConfig) []Parameter {
	return []Parameter{
		{Name: "Leads per part", IntValue: &local.LeadsPerPart, Min: 1, Max: 64, Step: 1, IsInt: true},
		{Name: "Parts", IntValue: &local.Parts, Min: 1, Max: 12, Step: 1, IsInt: true},
		{Name: "Min score", IntValue: &local.MinScore, Min: 0, Max: 10000, Step: 1, IsInt: true},
		{Name: "Min COM", IntValue: &local.MinCOM, Min: 0, Max: 10000, Step: 1, IsInt: true},
		{Name: "Min balance", IntValue: &local.MinBalance, Min: 0, Max: 100, Step: 5, IsInt: true},
		{Name: "COM weight", IntValue: &local.COMScoreWeight, Min: 0, Max: 100, Step: 1, IsInt: true},
		{Name: "Balance weight", IntValue: &local.BalanceScoreWeight, Min: 0, Max: 100, Step: 1, IsInt: true},
		{Name: "Min part length", IntValue: &local.MinPartLength, Min: 0, Max: 10000, Step: 1, IsInt: true},
		{Name: "Max part length", IntValue: &local.MaxPartLength, Min: 0, Max: 10000, Step: 1, IsInt: true},
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m *model) setStatusMsg(msg string) {
	m.statusMsg = msg
	m.statusMsgAge = time.Now()
}

func (m *model) pushUndo() {
	m.undoMgr.Push(ConfigState{Config: *m.localConfig, CursorPos: m.paramMgr.Selected()})
}

func (m *model) startSearch() tea.Cmd {
	m.searchEpoch++
	m.running = true
	m.candidates, m.accepted, m.iterations = 0, 0, 0
	m.progress = 0
	m.configProvider.Update(*m.localConfig)

	epoch := m.searchEpoch
	ctx := m.ctx
	runner := m.searchRunner
	provider := m.configProvider
	updates := m.updateChan
	debugf := m.debugf

	return tea.Batch(
		func() tea.Msg {
			if err := runner.Run(ctx, provider, updates, epoch); err != nil {
				debugf("[search] run ended: %v", err)
			}

			return nil
		},
		waitForUpdate(m.updateChan),
	)
}

func waitForUpdate(updateChan <-chan Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updateChan
		if !ok {
			return nil
		}

		return u
	}
}

func recoverPanic(debugf func(string, ...interface{})) {
	if r := recover(); r != nil {
		debugf("[PANIC] %v", r)
		debugf("[PANIC] %s", string(debug.Stack()))

		panic(r)
	}
}
