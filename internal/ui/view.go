package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/satriahrh/npctalk/domain/entities"
	"github.com/satriahrh/npctalk/domain/repositories"
)

// Sender delivers messages to a running bubbletea program
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramView implements ConversationView by forwarding every call to the
// bubbletea loop, so UI state is only ever mutated there
type ProgramView struct {
	sender Sender
}

// Ensure ProgramView implements the ConversationView interface
var _ repositories.ConversationView = (*ProgramView)(nil)

// NewProgramView creates a view backed by a bubbletea program
func NewProgramView(sender Sender) *ProgramView {
	return &ProgramView{sender: sender}
}

// AppendTurn implements repositories.ConversationView
func (v *ProgramView) AppendTurn(turn entities.ConversationTurn) {
	v.sender.Send(turnMsg{turn: turn})
}

// SetInputEnabled implements repositories.ConversationView
func (v *ProgramView) SetInputEnabled(enabled bool) {
	v.sender.Send(inputEnabledMsg{enabled: enabled})
}

// SetInputText implements repositories.ConversationView
func (v *ProgramView) SetInputText(text string) {
	v.sender.Send(inputTextMsg{text: text})
}

// SetRecording shows or hides the recording indicator
func (v *ProgramView) SetRecording(recording bool) {
	v.sender.Send(recordingMsg{recording: recording})
}

// SetHotkeyHint changes the push-to-talk key shown in the status line
func (v *ProgramView) SetHotkeyHint(hint string) {
	v.sender.Send(hotkeyHintMsg{hint: hint})
}
