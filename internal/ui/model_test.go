package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/satriahrh/npctalk/domain/entities"
)

type recordingHandlers struct {
	submitted []string
	starts    int
	stops     int
}

func (r *recordingHandlers) handlers() Handlers {
	return Handlers{
		Submit:       func(text string) { r.submitted = append(r.submitted, text) },
		StartCapture: func() { r.starts++ },
		StopCapture:  func() { r.stops++ },
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Expected ui.Model, got %T", next)
	}
	return model, cmd
}

func sized(t *testing.T, handlers Handlers) Model {
	t.Helper()
	m, _ := update(t, NewModel(handlers, ""), tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestModel_AppendTurn(t *testing.T) {
	m := sized(t, Handlers{})

	m, _ = update(t, m, turnMsg{turn: entities.ConversationTurn{Speaker: entities.SpeakerUser, Text: "hello"}})
	m, _ = update(t, m, turnMsg{turn: entities.ConversationTurn{Speaker: entities.SpeakerNPC, Text: "Well met"}})

	turns := m.Transcript()
	if len(turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(turns))
	}
	if turns[0].Speaker != entities.SpeakerUser || turns[1].Speaker != entities.SpeakerNPC {
		t.Errorf("Expected user then npc, got %s then %s", turns[0].Speaker, turns[1].Speaker)
	}

	view := m.View()
	if !strings.Contains(view, "hello") || !strings.Contains(view, "Well met") {
		t.Errorf("Expected both turns to be rendered, got %q", view)
	}
}

func TestModel_ScrollsToNewestTurn(t *testing.T) {
	m := sized(t, Handlers{})

	for i := 0; i < 50; i++ {
		m, _ = update(t, m, turnMsg{turn: entities.ConversationTurn{Speaker: entities.SpeakerNPC, Text: "line"}})
	}

	if !m.viewport.AtBottom() {
		t.Error("Expected viewport to be scrolled to the newest turn")
	}
}

func TestModel_EnterSubmits(t *testing.T) {
	rec := &recordingHandlers{}
	m := sized(t, rec.handlers())

	m, _ = update(t, m, inputTextMsg{text: "who are you?"})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Expected a submit command")
	}
	cmd()

	if len(rec.submitted) != 1 || rec.submitted[0] != "who are you?" {
		t.Errorf("Expected submitted text 'who are you?', got %v", rec.submitted)
	}
	if m.InputValue() != "who are you?" {
		t.Errorf("Expected input to be kept until the exchange ends, got %q", m.InputValue())
	}
}

func TestModel_EnterIgnored(t *testing.T) {
	t.Run("blank input", func(t *testing.T) {
		rec := &recordingHandlers{}
		m := sized(t, rec.handlers())

		m, _ = update(t, m, inputTextMsg{text: "   "})
		_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if cmd != nil {
			t.Error("Expected no command for blank input")
		}
	})

	t.Run("input disabled", func(t *testing.T) {
		rec := &recordingHandlers{}
		m := sized(t, rec.handlers())

		m, _ = update(t, m, inputTextMsg{text: "hello"})
		m, _ = update(t, m, inputEnabledMsg{enabled: false})
		_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if cmd != nil {
			t.Error("Expected no command while input is disabled")
		}
	})
}

func TestModel_InputEnabled(t *testing.T) {
	m := sized(t, Handlers{})

	m, _ = update(t, m, inputEnabledMsg{enabled: false})
	if m.InputEnabled() {
		t.Error("Expected input to be disabled")
	}
	if m.input.Focused() {
		t.Error("Expected input to lose focus when disabled")
	}
	if !strings.Contains(m.View(), "NPC is answering") {
		t.Error("Expected busy status line while disabled")
	}

	m, _ = update(t, m, inputEnabledMsg{enabled: true})
	if !m.InputEnabled() || !m.input.Focused() {
		t.Error("Expected input to be enabled and focused")
	}
}

func TestModel_TypingIgnoredWhileDisabled(t *testing.T) {
	m := sized(t, Handlers{})
	m, _ = update(t, m, inputEnabledMsg{enabled: false})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.InputValue() != "" {
		t.Errorf("Expected no text while disabled, got %q", m.InputValue())
	}
}

func TestModel_ToggleCapture(t *testing.T) {
	rec := &recordingHandlers{}
	m := sized(t, rec.handlers())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if !m.Recording() || rec.starts != 1 {
		t.Errorf("Expected recording to start, recording=%v starts=%d", m.Recording(), rec.starts)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.Recording() || rec.stops != 1 {
		t.Errorf("Expected recording to stop, recording=%v stops=%d", m.Recording(), rec.stops)
	}
}

func TestModel_ToggleCaptureWhileBusy(t *testing.T) {
	rec := &recordingHandlers{}
	m := sized(t, rec.handlers())
	m, _ = update(t, m, inputEnabledMsg{enabled: false})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if rec.starts != 1 {
		t.Errorf("Expected capture to start while busy, got %d starts", rec.starts)
	}
	if !m.Recording() {
		t.Error("Expected recording indicator while busy")
	}
}

// Capture edges reach the handlers in key order, without going through tea.Cmd goroutines
func TestModel_ToggleCaptureKeepsOrder(t *testing.T) {
	var edges []string
	m := sized(t, Handlers{
		StartCapture: func() { edges = append(edges, "start") },
		StopCapture:  func() { edges = append(edges, "stop") },
	})

	for i := 0; i < 4; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	}

	want := []string{"start", "stop", "start", "stop"}
	if len(edges) != len(want) {
		t.Fatalf("Expected %v, got %v", want, edges)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("Edge %d: expected %s, got %s", i, want[i], edges[i])
		}
	}
}

func TestModel_RecordingMsg(t *testing.T) {
	m := sized(t, Handlers{})

	m, _ = update(t, m, recordingMsg{recording: true})
	if !strings.Contains(m.View(), "Recording") {
		t.Error("Expected recording indicator")
	}
}

func TestModel_Quit(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := update(t, sized(t, Handlers{}), tea.KeyMsg{Type: key})
		if cmd == nil {
			t.Fatalf("Expected quit command for %v", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("Expected tea.QuitMsg for %v", key)
		}
	}
}

func TestModel_HotkeyHint(t *testing.T) {
	m, _ := update(t, NewModel(Handlers{}, "ctrl+shift+space"), tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(m.View(), "ctrl+shift+space") {
		t.Error("Expected hotkey hint in status line")
	}

	m, _ = update(t, m, hotkeyHintMsg{hint: ""})
	if strings.Contains(m.View(), "ctrl+shift+space") {
		t.Error("Expected hotkey hint to be cleared")
	}
}

type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) {
	f.msgs = append(f.msgs, msg)
}

func TestProgramView_FeedsModel(t *testing.T) {
	sender := &fakeSender{}
	view := NewProgramView(sender)

	view.SetInputEnabled(false)
	view.AppendTurn(entities.ConversationTurn{Speaker: entities.SpeakerUser, Text: "hello"})
	view.SetInputText("")
	view.SetRecording(false)
	view.SetInputEnabled(true)

	if len(sender.msgs) != 5 {
		t.Fatalf("Expected 5 messages, got %d", len(sender.msgs))
	}

	m := sized(t, Handlers{})
	m, _ = update(t, m, inputTextMsg{text: "hello"})
	for _, msg := range sender.msgs {
		m, _ = update(t, m, msg)
	}

	if len(m.Transcript()) != 1 {
		t.Errorf("Expected 1 turn, got %d", len(m.Transcript()))
	}
	if m.InputValue() != "" {
		t.Errorf("Expected input to be cleared, got %q", m.InputValue())
	}
	if !m.InputEnabled() {
		t.Error("Expected input to be re-enabled")
	}
}
