package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hygieia-reporter/src/report"
)

// listRenderingOverhead is the padding bubbles/list and the panel border add
// around each row.
const listRenderingOverhead = 4

// Delegate renders build events as table rows.
type Delegate struct {
	styles *report.StyleConfig
}

// NewDelegate creates a delegate with the given styles.
func NewDelegate(styles *report.StyleConfig) Delegate {
	return Delegate{styles: styles}
}

// Height returns the height of a list item
func (d Delegate) Height() int {
	return 1
}

// Spacing returns spacing between items
func (d Delegate) Spacing() int {
	return 0
}

// Update handles item updates
func (d Delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a list item
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(Item)
	if !ok {
		return
	}

	timeCol := entry.Received.Format("15:04:05")
	statusCol := report.TruncateAndPad(entry.Event.BuildStatus, 10, false)

	// time (8) + status (10) + separators (6)
	available := m.Width() - 24 - listRenderingOverhead
	var title string
	if available > 0 {
		title = report.TruncateAndPad(entry.Title(), available, true)
	}

	style := lipgloss.NewStyle().Foreground(d.styles.TextSecondary)
	if index == m.Index() {
		style = style.Bold(true).Foreground(d.styles.TextPrimary).Background(d.styles.BorderColor)
	}

	fmt.Fprintf(w, "%s │ %s │ %s",
		style.Render(timeCol),
		d.styles.LabelStyle(entry.Label()).Render(statusCol),
		style.Render(title))
}
