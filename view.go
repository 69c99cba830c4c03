// ABOUTME: Read-only method library viewer with live file watching and scrolling
// ABOUTME: Monitors the library file for changes and lets the user mark methods to compose with

package main

import (
	"fmt"
	"time"

	"touch-composer/library"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
)

// libraryViewModel holds the state for the read-only library viewer.
type libraryViewModel struct {
	libraryPath string
	entries     []library.Entry
	viewport    viewport.Model
	width       int
	height      int
	fileWatcher *fsnotify.Watcher
	lastReload  time.Time
	errorMsg    string
	ready       bool
	cursorPos   int
	selected    map[int]bool // entry index -> marked for composing
}

type libraryViewKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Reload   key.Binding
	Toggle   key.Binding
	Quit     key.Binding
}

var libraryViewKeys = libraryViewKeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "go to top")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "go to bottom")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark for composing")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	libraryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("12"))

	libraryHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("10"))

	libraryStatusStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("236")).
				Foreground(lipgloss.Color("15")).
				Padding(0, 1)

	libraryHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	libraryErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	libraryCursorStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("240")).
				Foreground(lipgloss.Color("15")).
				Bold(true)

	libraryMarkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// libraryFileChangeMsg is sent when the library file changes on disk.
type libraryFileChangeMsg struct{}

// libraryReloadCompleteMsg is sent after a library reload completes.
type libraryReloadCompleteMsg struct {
	entries []library.Entry
	err     error
}

// RunLibraryWatchMode starts a read-only browser over a method library,
// reloading automatically whenever the underlying file changes.
func RunLibraryWatchMode(libraryPath string) error {
	entries, err := library.Load(libraryPath)
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(libraryPath); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch library file: %w", err)
	}

	m := libraryViewModel{
		libraryPath: libraryPath,
		entries:     entries,
		fileWatcher: watcher,
		lastReload:  time.Now(),
		selected:    make(map[int]bool),
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		watcher.Close()
		return fmt.Errorf("library view error: %w", err)
	}

	watcher.Close()
	return nil
}

func (m libraryViewModel) Init() tea.Cmd {
	return tea.Batch(waitForLibraryChange(m.fileWatcher), tea.EnterAltScreen)
}

func waitForLibraryChange(watcher *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}

				if event.Op&fsnotify.Write == fsnotify.Write {
					time.Sleep(100 * time.Millisecond)
					return libraryFileChangeMsg{}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}

				debugf("[WATCHER] Error: %v", err)
			}
		}
	}
}

func reloadLibrary(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := library.Load(path)
		if err != nil {
			return libraryReloadCompleteMsg{err: err}
		}

		return libraryReloadCompleteMsg{entries: entries}
	}
}

func (m *libraryViewModel) ensureCursorVisible() {
	top := m.viewport.YOffset
	bottom := m.viewport.YOffset + m.viewport.Height - 1

	if m.cursorPos < top {
		m.viewport.SetYOffset(m.cursorPos)
	} else if m.cursorPos > bottom {
		m.viewport.SetYOffset(m.cursorPos - m.viewport.Height + 1)
	}
}

//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m libraryViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		const headerHeight, footerHeight = 3, 2

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.SetContent(m.renderEntries())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}

		return m, nil

	case libraryFileChangeMsg:
		return m, tea.Batch(reloadLibrary(m.libraryPath), waitForLibraryChange(m.fileWatcher))

	case libraryReloadCompleteMsg:
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Error reloading: %v", msg.err)
		} else {
			m.entries = msg.entries
			m.lastReload = time.Now()
			m.errorMsg = ""
			m.viewport.SetContent(m.renderEntries())
		}

		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, libraryViewKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, libraryViewKeys.Up):
			if m.cursorPos > 0 {
				m.cursorPos--
				m.ensureCursorVisible()
				m.viewport.SetContent(m.renderEntries())
			}

		case key.Matches(msg, libraryViewKeys.Down):
			if m.cursorPos < len(m.entries)-1 {
				m.cursorPos++
				m.ensureCursorVisible()
				m.viewport.SetContent(m.renderEntries())
			}

		case key.Matches(msg, libraryViewKeys.PageUp):
			m.cursorPos = max(0, m.cursorPos-m.viewport.Height)
			m.ensureCursorVisible()
			m.viewport.SetContent(m.renderEntries())

		case key.Matches(msg, libraryViewKeys.PageDown):
			m.cursorPos = min(len(m.entries)-1, m.cursorPos+m.viewport.Height)
			if m.cursorPos < 0 {
				m.cursorPos = 0
			}

			m.ensureCursorVisible()
			m.viewport.SetContent(m.renderEntries())

		case key.Matches(msg, libraryViewKeys.Top):
			m.cursorPos = 0
			m.viewport.GotoTop()
			m.viewport.SetContent(m.renderEntries())

		case key.Matches(msg, libraryViewKeys.Bottom):
			if len(m.entries) > 0 {
				m.cursorPos = len(m.entries) - 1
			}

			m.viewport.GotoBottom()
			m.viewport.SetContent(m.renderEntries())

		case key.Matches(msg, libraryViewKeys.Reload):
			return m, reloadLibrary(m.libraryPath)

		case key.Matches(msg, libraryViewKeys.Toggle):
			if len(m.entries) > 0 {
				m.selected[m.cursorPos] = !m.selected[m.cursorPos]
				m.viewport.SetContent(m.renderEntries())
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

//nolint:ireturn // Bubble Tea framework requires returning a plain string from View
func (m libraryViewModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := libraryTitleStyle.Render(fmt.Sprintf("Method Library: %s", m.libraryPath))
	header := libraryHeaderStyle.Render(fmt.Sprintf("%-3s %-6s %-24s", " ", "Code", "Name"))

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", title, header, m.viewport.View(), m.renderStatus(), m.renderHelp())
}

func (m libraryViewModel) renderEntries() string {
	var content string

	for i, e := range m.entries {
		mark := " "
		if m.selected[i] {
			mark = "*"
		}

		line := fmt.Sprintf("%-3s %-6s %-24s", mark, e.Code, e.DisplayName)
		if m.selected[i] {
			line = libraryMarkedStyle.Render(line)
		}

		if i == m.cursorPos {
			line = libraryCursorStyle.Render(fmt.Sprintf("%-3s %-6s %-24s", mark, e.Code, e.DisplayName))
		}

		if i < len(m.entries)-1 {
			content += line + "\n"
		} else {
			content += line
		}
	}

	return content
}

func (m libraryViewModel) renderStatus() string {
	reloadTime := m.lastReload.Format("15:04:05")

	marked := 0
	for _, v := range m.selected {
		if v {
			marked++
		}
	}

	if m.errorMsg != "" {
		return libraryStatusStyle.Width(m.width).Render(
			fmt.Sprintf("%d methods | marked: %d | %s", len(m.entries), marked, libraryErrorStyle.Render(m.errorMsg)))
	}

	return libraryStatusStyle.Width(m.width).Render(
		fmt.Sprintf("%d methods | marked: %d | last reload: %s", len(m.entries), marked, reloadTime))
}

func (m libraryViewModel) renderHelp() string {
	return libraryHelpStyle.Render("↑/↓: move | space: mark | r: reload | q: quit")
}
