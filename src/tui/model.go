package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"hygieia-reporter/src/broker"
	"hygieia-reporter/src/report"
)

// MaxItems bounds how many events the view keeps; older ones are dropped.
const MaxItems = 500

type (
	eventMsg        struct{ item Item }
	decodeErrMsg    struct{ err error }
	streamClosedMsg struct{}
)

// Model is the Bubble Tea model of the watch view.
type Model struct {
	topic    string
	messages <-chan broker.Message

	items          []Item
	list           list.Model
	detailViewport viewport.Model
	styles         *report.StyleConfig

	width, height int
	ready         bool
	detailFocused bool
	searchMode    bool
	searchQuery   string
	decodeErrors  int
	closed        bool
}

// NewModel creates a view fed by messages consumed from topic.
func NewModel(topic string, messages <-chan broker.Message) Model {
	styles := report.DefaultStyles()
	delegate := NewDelegate(styles)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return Model{
		topic:          topic,
		messages:       messages,
		list:           l,
		detailViewport: viewport.New(0, 0),
		styles:         styles,
	}
}

// Init starts reading from the broker.
func (m Model) Init() tea.Cmd {
	return waitForMessage(m.messages)
}

func waitForMessage(ch <-chan broker.Message) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		item, err := DecodeItem(msg)
		if err != nil {
			return decodeErrMsg{err: err}
		}
		return eventMsg{item: item}
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeComponents()
		return m, nil

	case eventMsg:
		m.items = append([]Item{msg.item}, m.items...)
		if len(m.items) > MaxItems {
			m.items = m.items[:MaxItems]
		}
		m.applyFilter()
		return m, waitForMessage(m.messages)

	case decodeErrMsg:
		m.decodeErrors++
		return m, waitForMessage(m.messages)

	case streamClosedMsg:
		m.closed = true
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.updateSearch(msg), nil
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searchMode = true
		return m, nil
	case "enter", "tab":
		m.detailFocused = !m.detailFocused
		return m, nil
	case "esc":
		if m.detailFocused {
			m.detailFocused = false
		} else if m.searchQuery != "" {
			m.searchQuery = ""
			m.applyFilter()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.detailFocused {
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}

	before := m.list.Index()
	m.list, cmd = m.list.Update(msg)
	if m.list.Index() != before {
		m.updateDetailContent()
	}
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) Model {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searchMode = false
	case tea.KeyBackspace:
		if r := []rune(m.searchQuery); len(r) > 0 {
			m.searchQuery = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.searchQuery += string(msg.Runes)
	}
	m.applyFilter()
	return m
}

// applyFilter shows the items matching the search query, newest first.
func (m *Model) applyFilter() {
	var filtered []list.Item
	for _, item := range m.items {
		if m.searchQuery == "" || item.matches(m.searchQuery) {
			filtered = append(filtered, item)
		}
	}
	m.list.SetItems(filtered)
	m.updateDetailContent()
}

// SelectedItem returns the currently selected event.
func (m Model) SelectedItem() (Item, bool) {
	if len(m.list.Items()) == 0 {
		return Item{}, false
	}
	item, ok := m.list.SelectedItem().(Item)
	return item, ok
}

// VisibleCount returns the number of events passing the filter.
func (m Model) VisibleCount() int {
	return len(m.list.Items())
}
