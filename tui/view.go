// ABOUTME: Rendering and display functions for the TUI
// ABOUTME: Implements the Bubble Tea View() function and all render helpers

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

//nolint:ireturn // Bubble Tea framework requires returning a plain string from View
func (m model) View() string {
	if m.quitting {
		return "Search stopped.\n"
	}

	title := titleStyle.Render("touch-composer")
	params := m.renderParams()
	results := m.renderResults()
	summary := m.renderSummary()
	status := m.renderStatus()
	help := helpStyle.Render("↑/↓ navigate · ←/→ adjust · tab switch panel · s start · u/ctrl+r undo/redo · r reset · q quit")

	body := lipgloss.JoinHorizontal(lipgloss.Top, params, strings.Repeat(" ", panelPadding), results)

	return lipgloss.JoinVertical(lipgloss.Left, title, body, summary, status, help)
}

func (m model) renderParams() string {
	var b strings.Builder

	fmt.Fprintln(&b, resultsHeaderStyle.Render("Parameters"))

	for i, p := range m.paramMgr.All() {
		line := fmt.Sprintf("%-18s %v", p.Name, paramValue(p))
		if i == m.paramMgr.Selected() {
			b.WriteString(selectedParamStyle.Render(line))
		} else {
			b.WriteString(paramStyle.Render(line))
		}

		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(paramPanelWidth).Render(b.String())
}

func paramValue(p Parameter) interface{} {
	if p.IsInt {
		return *p.IntValue
	}

	return *p.Value
}

func (m model) renderResults() string {
	return m.viewport.View()
}

func (m *model) updateViewportContent() {
	var b strings.Builder

	fmt.Fprintln(&b, resultsHeaderStyle.Render(fmt.Sprintf("Top %d", len(m.top))))

	for i, c := range m.top {
		line := fmt.Sprintf("%2d. score=%-6d com=%-4d balance=%-4d leads=%d", i+1, c.Score, c.COM, c.Balance, len(c.Leads))
		if i == m.cursorPos {
			b.WriteString(cursorStyle.Render(line))
		} else {
			b.WriteString(line)
		}

		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
}

func (m model) renderSummary() string {
	return fmt.Sprintf("candidates=%d accepted=%d iterations=%d rate=%.0f/s progress=%.1f%%",
		m.candidates, m.accepted, m.iterations, m.genPerSec, m.progress*100)
}

func (m model) renderStatus() string {
	if m.statusMsg == "" {
		return ""
	}

	return statusStyle.Render(m.statusMsg)
}
