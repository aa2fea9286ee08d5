package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"hygieia-reporter/src/report"
	"hygieia-reporter/src/status"
)

// panelDimensions holds calculated layout dimensions
type panelDimensions struct {
	availableHeight int
	leftPanelWidth  int
	rightPanelWidth int
}

// calculateDimensions splits the screen 45/55 below a one-line header and
// above a one-line help bar.
func (m Model) calculateDimensions() panelDimensions {
	// header (1) + help (1) + panel borders (2) + detail title row (1)
	availableHeight := m.height - 5
	if availableHeight < 1 {
		availableHeight = 1
	}
	left := m.width * 45 / 100
	return panelDimensions{
		availableHeight: availableHeight,
		leftPanelWidth:  left,
		rightPanelWidth: m.width - left,
	}
}

func (m *Model) resizeComponents() {
	dims := m.calculateDimensions()
	m.list.SetSize(dims.leftPanelWidth-2, dims.availableHeight+1)
	m.detailViewport.Width = dims.rightPanelWidth - 2
	m.detailViewport.Height = dims.availableHeight
	m.updateDetailContent()
}

// View renders the complete TUI layout
func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	dims := m.calculateDimensions()

	left := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.BorderColor).
		Width(dims.leftPanelWidth - 2).
		Height(dims.availableHeight + 1).
		Render(m.list.View())

	right := m.renderDetailPanel(dims.rightPanelWidth, dims.availableHeight)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		m.renderHelpText())
}

func (m Model) renderHeader() string {
	parts := []string{
		m.styles.TitleStyle().Render("Hygieia watch"),
		m.styles.MutedStyle().Render(m.topic),
		fmt.Sprintf("%d events", len(m.items)),
	}
	if m.searchQuery != "" || m.searchMode {
		parts = append(parts, fmt.Sprintf("filter: %s (%d)", m.searchQuery, m.VisibleCount()))
	}
	if m.decodeErrors > 0 {
		parts = append(parts, m.styles.LabelStyle(status.Failure).Render(fmt.Sprintf("%d undecodable", m.decodeErrors)))
	}
	if m.closed {
		parts = append(parts, m.styles.MutedStyle().Render("stream closed"))
	}
	return report.Truncate(strings.Join(parts, "  "), m.width, true)
}

func (m Model) renderHelpText() string {
	keyStyle := lipgloss.NewStyle().Foreground(m.styles.Title).Bold(true)
	sep := m.styles.MutedStyle().Render(" • ")

	var help string
	switch {
	case m.searchMode:
		help = keyStyle.Render("Enter/Esc") + ": Done"
	case m.detailFocused:
		help = keyStyle.Render("j/k") + ": Scroll" + sep + keyStyle.Render("Esc") + ": Back" + sep + keyStyle.Render("q") + ": Quit"
	default:
		help = keyStyle.Render("j/k") + ": Nav" + sep + keyStyle.Render("Enter") + ": Details" + sep +
			keyStyle.Render("/") + ": Filter" + sep + keyStyle.Render("q") + ": Quit"
	}
	return m.styles.MutedStyle().Render(help)
}

// renderDetail renders the fields and commits of one event.
func (m Model) renderDetail(item Item, maxWidth int) string {
	var b strings.Builder
	e := item.Event
	label := m.styles.MutedStyle()

	field := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", label.Render(report.TruncateAndPad(name, 10, false)), report.Truncate(value, maxWidth-11, true))
	}

	fmt.Fprintf(&b, "%s\n\n", m.styles.LabelStyle(item.Label()).Render(item.Label().Display()))
	field("Build", e.BuildURL)
	field("Instance", firstNonEmpty(e.NiceName, e.InstanceURL))
	field("Started by", e.StartedBy)
	if e.StartTime > 0 {
		field("Started", time.UnixMilli(e.StartTime).Format(time.RFC3339))
	}
	if e.Duration > 0 {
		field("Duration", (time.Duration(e.Duration) * time.Millisecond).String())
	}

	fmt.Fprintf(&b, "\n%s\n", m.styles.TitleStyle().Render(fmt.Sprintf("Commits (%d)", len(e.SourceChangeSet))))
	wrap := lipgloss.NewStyle().Width(maxWidth)
	for _, c := range e.SourceChangeSet {
		head := report.Truncate(c.RevisionID, 8, false)
		fmt.Fprintf(&b, "%s %s\n", m.styles.CodeStyle(true).Render(head), label.Render(c.Author))
		if msg := strings.TrimSpace(c.Message); msg != "" {
			b.WriteString(wrap.Render(msg))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) updateDetailContent() {
	item, ok := m.SelectedItem()
	if !ok {
		m.detailViewport.SetContent("")
		return
	}
	m.detailViewport.SetContent(m.renderDetail(item, m.detailViewport.Width-2))
	m.detailViewport.GotoTop()
}

func (m Model) renderDetailPanel(width, height int) string {
	border := m.styles.BorderColor
	if m.detailFocused {
		border = m.styles.Title
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width - 2).
		Height(height)

	item, ok := m.SelectedItem()
	if !ok {
		return lipgloss.JoinVertical(lipgloss.Left, " ",
			box.Align(lipgloss.Center, lipgloss.Center).Foreground(m.styles.TextSecondary).
				Render("Waiting for build events..."))
	}

	title := lipgloss.NewStyle().Foreground(m.styles.Title).Bold(true).Padding(0, 1).
		Render(report.Truncate(item.Title(), width-2, true))
	return lipgloss.JoinVertical(lipgloss.Left, title, box.Render(m.detailViewport.View()))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
