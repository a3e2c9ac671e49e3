// Package ui renders the conversation window: a scrolling transcript above a
// single-line input field.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/satriahrh/npctalk/domain/entities"
)

const (
	title       = "npctalk"
	inputHeight = 3
	chromeLines = 2 // title + status
)

// Handlers are the callbacks the model invokes for user actions. Submit runs
// as a tea.Cmd so a slow answer never stalls rendering. StartCapture and
// StopCapture are called inside Update, in key order, and must not block.
type Handlers struct {
	Submit       func(text string)
	StartCapture func()
	StopCapture  func()
}

// Model is the bubbletea model of the conversation window
type Model struct {
	handlers     Handlers
	input        textinput.Model
	viewport     viewport.Model
	turns        []entities.ConversationTurn
	inputEnabled bool
	recording    bool
	hotkeyHint   string
	width        int
	height       int
	ready        bool
}

// NewModel creates the conversation window. hotkeyHint is shown in the status
// line when a global push-to-talk key is active; pass "" otherwise.
func NewModel(handlers Handlers, hotkeyHint string) Model {
	input := textinput.New()
	input.Placeholder = "Say something..."
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	return Model{
		handlers:     handlers,
		input:        input,
		viewport:     viewport.New(80, 20),
		turns:        make([]entities.ConversationTurn, 0),
		inputEnabled: true,
		hotkeyHint:   hotkeyHint,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+r":
			return m.toggleCapture()
		case "enter":
			return m, m.submit()
		}

	case turnMsg:
		m.turns = append(m.turns, msg.turn)
		m.refresh()
		return m, nil

	case inputEnabledMsg:
		m.inputEnabled = msg.enabled
		if msg.enabled {
			cmds = append(cmds, m.input.Focus())
		} else {
			m.input.Blur()
		}
		return m, tea.Batch(cmds...)

	case inputTextMsg:
		m.input.SetValue(msg.text)
		m.input.CursorEnd()
		return m, nil

	case recordingMsg:
		m.recording = msg.recording
		return m, nil

	case hotkeyHintMsg:
		m.hotkeyHint = msg.hint
		return m, nil
	}

	var cmd tea.Cmd
	if m.inputEnabled {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit hands the current input to the Submit handler. The field is left as
// is; the orchestrator clears it once the exchange is over.
func (m Model) submit() tea.Cmd {
	if !m.inputEnabled || m.handlers.Submit == nil {
		return nil
	}
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	submit := m.handlers.Submit
	return func() tea.Msg {
		submit(text)
		return nil
	}
}

// toggleCapture starts or stops recording. Starting does not depend on
// whether a turn is in flight.
func (m Model) toggleCapture() (tea.Model, tea.Cmd) {
	if m.recording {
		m.recording = false
		if m.handlers.StopCapture != nil {
			m.handlers.StopCapture()
		}
		return m, nil
	}

	if m.handlers.StartCapture == nil {
		return m, nil
	}
	m.recording = true
	m.handlers.StartCapture()
	return m, nil
}

func (m *Model) resize() {
	width := m.width - 2
	if width < 10 {
		width = 10
	}
	height := m.height - inputHeight - chromeLines - 2
	if height < 3 {
		height = 3
	}

	m.viewport.Width = width
	m.viewport.Height = height
	m.input.Width = width - 6
}

// refresh re-renders the transcript and scrolls to the newest line
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTurns())
	m.viewport.GotoBottom()
}

func (m Model) renderTurns() string {
	if len(m.turns) == 0 {
		return statusStyle.Render("No conversation yet. Type a message and press Enter.")
	}

	textWidth := m.viewport.Width - 2
	var sb strings.Builder
	for i, turn := range m.turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(renderTurn(turn, textWidth))
	}
	return sb.String()
}

func renderTurn(turn entities.ConversationTurn, width int) string {
	label := userLabelStyle.Render("You:")
	if turn.Speaker == entities.SpeakerNPC {
		label = npcLabelStyle.Render("NPC:")
	}

	textWidth := width - lipgloss.Width(label) - 1
	if textWidth < 10 {
		textWidth = 10
	}
	text := turnTextStyle.Width(textWidth).Render(turn.Text)

	return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", text)
}

// View implements tea.Model
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	box := inputStyle
	if !m.inputEnabled {
		box = disabledInputStyle
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		chatPanelStyle.Render(m.viewport.View()),
		box.Render(m.input.View()),
		m.statusLine(),
	)
}

func (m Model) statusLine() string {
	if m.recording {
		return recordingStyle.Render("● Recording... release or press ctrl+r to send")
	}
	if !m.inputEnabled {
		return statusStyle.Render("NPC is answering...")
	}

	hint := "enter: send • ctrl+r: talk • esc: quit"
	if m.hotkeyHint != "" {
		hint = "enter: send • hold " + m.hotkeyHint + " or ctrl+r: talk • esc: quit"
	}
	return statusStyle.Render(hint)
}

// Transcript returns the turns currently rendered
func (m Model) Transcript() []entities.ConversationTurn {
	return m.turns
}

// InputEnabled reports whether the input field accepts text
func (m Model) InputEnabled() bool {
	return m.inputEnabled
}

// InputValue returns the current content of the input field
func (m Model) InputValue() string {
	return m.input.Value()
}

// Recording reports whether the recording indicator is shown
func (m Model) Recording() bool {
	return m.recording
}
