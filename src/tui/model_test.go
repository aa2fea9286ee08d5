package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"hygieia-reporter/src/broker"
	"hygieia-reporter/src/status"
)

func message(job, number, result string) broker.Message {
	return broker.Message{
		Topic:     "hygieia.builds",
		Timestamp: 1700000000000,
		Value: []byte(`{"jobName":"` + job + `","number":"` + number + `","buildStatus":"` + result +
			`","buildUrl":"http://ci/job/` + job + `/` + number + `/","sourceChangeSet":[{"scmRevisionNumber":"abc123","scmAuthor":"Ada","scmCommitLog":"fix the flaky test"}]}`),
	}
}

func feed(t *testing.T, m Model, msgs ...broker.Message) Model {
	t.Helper()
	for _, raw := range msgs {
		item, err := DecodeItem(raw)
		if err != nil {
			t.Fatalf("DecodeItem() error = %v", err)
		}
		next, _ := m.Update(eventMsg{item: item})
		m = next.(Model)
	}
	return m
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(Model)
}

func TestModel_NewestFirst(t *testing.T) {
	m := sized(NewModel("hygieia.builds", nil))
	m = feed(t, m, message("app", "1", "FAILURE"), message("app", "2", "SUCCESS"))

	if m.VisibleCount() != 2 {
		t.Fatalf("VisibleCount() = %d, want 2", m.VisibleCount())
	}
	item, ok := m.SelectedItem()
	if !ok {
		t.Fatal("expected a selected item")
	}
	if item.Event.Number != "2" {
		t.Errorf("selected #%s, want the newest event #2", item.Event.Number)
	}

	view := m.View()
	for _, want := range []string{"Hygieia watch", "2 events", "app #2", "abc123"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_Search(t *testing.T) {
	m := sized(NewModel("hygieia.builds", nil))
	m = feed(t, m, message("app", "1", "SUCCESS"), message("lib", "4", "SUCCESS"))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = next.(Model)
	if !m.searchMode {
		t.Fatal("/ should enter search mode")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("lib")})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if m.searchMode {
		t.Error("enter should leave search mode")
	}
	if m.VisibleCount() != 1 {
		t.Fatalf("VisibleCount() = %d, want 1", m.VisibleCount())
	}
	if item, _ := m.SelectedItem(); item.Event.JobName != "lib" {
		t.Errorf("selected %s, want lib", item.Event.JobName)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.VisibleCount() != 2 {
		t.Errorf("esc should clear the filter, VisibleCount() = %d", m.VisibleCount())
	}
}

func TestModel_DecodeErrorsAndClose(t *testing.T) {
	ch := make(chan broker.Message, 1)
	ch <- broker.Message{Topic: "t", Value: []byte("{")}
	close(ch)

	m := sized(NewModel("t", ch))
	cmd := m.Init()
	next, cmd := m.Update(cmd())
	m = next.(Model)
	if m.decodeErrors != 1 {
		t.Errorf("decodeErrors = %d, want 1", m.decodeErrors)
	}
	next, _ = m.Update(cmd())
	m = next.(Model)
	if !m.closed {
		t.Error("expected the stream to be marked closed")
	}
	if !strings.Contains(m.View(), "stream closed") {
		t.Error("View() should say the stream is closed")
	}
}

func TestModel_Quit(t *testing.T) {
	m := sized(NewModel("t", nil))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestItemLabel(t *testing.T) {
	tests := []struct {
		buildStatus string
		want        status.Label
	}{
		{"InProgress", status.Starting},
		{"SUCCESS", status.Success},
		{"UNSTABLE", status.Unstable},
		{"FAILURE", status.Failure},
		{"ABORTED", status.Aborted},
		{"", status.Unknown},
	}
	for _, tt := range tests {
		item, err := DecodeItem(broker.Message{Value: []byte(`{"buildStatus":"` + tt.buildStatus + `"}`)})
		if err != nil {
			t.Fatalf("DecodeItem() error = %v", err)
		}
		if got := item.Label(); got != tt.want {
			t.Errorf("Label(%q) = %s, want %s", tt.buildStatus, got, tt.want)
		}
	}
}
