// ABOUTME: Event handling and state updates for the TUI
// ABOUTME: Implements the Bubble Tea Update() function and message handlers

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"touch-composer/config"
)

// Update handles messages and updates the model.
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer recoverPanic(m.debugf)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vw := msg.Width - paramPanelWidth - panelPadding
		if vw < minViewportWidth {
			vw = minViewportWidth
		}

		vh := msg.Height - totalUIChrome
		if vh < minViewportHeight {
			vh = minViewportHeight
		}

		m.viewport.Width = vw
		m.viewport.Height = vh
		m.viewport.YOffset = 0
		m.updateViewportContent()

		return m, nil

	case Update:
		if msg.Epoch != m.searchEpoch {
			m.debugf("[TUI] ignoring stale update: epoch %d != %d", msg.Epoch, m.searchEpoch)
			return m, waitForUpdate(m.updateChan)
		}

		m.candidates = msg.Candidates
		m.accepted = msg.Accepted
		m.iterations = msg.Iterations
		m.genPerSec = msg.GenPerSec
		m.progress = msg.Progress
		m.top = msg.Top
		m.updateViewportContent()

		return m, waitForUpdate(m.updateChan)

	case searchRestartMsg:
		return m, m.startSearch()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.cancel()

		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.focusedPanel == panelParams {
			m.focusedPanel = panelResults
		} else {
			m.focusedPanel = panelParams
		}

		return m, nil

	case key.Matches(msg, keys.Start):
		return m, func() tea.Msg { return searchRestartMsg{} }

	case key.Matches(msg, keys.Reset):
		m.pushUndo()
		m.paramMgr.ResetToDefaults(config.DefaultConfig())
		m.setStatusMsg("parameters reset to defaults")

		return m, nil

	case key.Matches(msg, keys.Undo):
		if state, ok := m.undoMgr.Undo(ConfigState{Config: *m.localConfig, CursorPos: m.paramMgr.Selected()}); ok {
			*m.localConfig = state.Config
			m.paramMgr.SetSelected(state.CursorPos)
			m.setStatusMsg("undo")
		}

		return m, nil

	case key.Matches(msg, keys.Redo):
		if state, ok := m.undoMgr.Redo(ConfigState{Config: *m.localConfig, CursorPos: m.paramMgr.Selected()}); ok {
			*m.localConfig = state.Config
			m.paramMgr.SetSelected(state.CursorPos)
			m.setStatusMsg("redo")
		}

		return m, nil
	}

	if m.focusedPanel == panelParams {
		return m.handleParamKey(msg)
	}

	return m.handleResultsKey(msg)
}

func (m model) handleParamKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		m.paramMgr.SelectPrevious()
	case key.Matches(msg, keys.Down):
		m.paramMgr.SelectNext()
	case key.Matches(msg, keys.Left):
		m.pushUndo()
		m.paramMgr.Decrease()
	case key.Matches(msg, keys.Right):
		m.pushUndo()
		m.paramMgr.Increase()
	}

	return m, nil
}

func (m model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursorPos > 0 {
			m.cursorPos--
		}
	case key.Matches(msg, keys.Down):
		if m.cursorPos < len(m.top)-1 {
			m.cursorPos++
		}
	}

	m.updateViewportContent()

	return m, nil
}
