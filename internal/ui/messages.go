package ui

import "github.com/satriahrh/npctalk/domain/entities"

// turnMsg appends a line to the transcript
type turnMsg struct {
	turn entities.ConversationTurn
}

// inputEnabledMsg enables or disables the input field
type inputEnabledMsg struct {
	enabled bool
}

// inputTextMsg replaces the content of the input field
type inputTextMsg struct {
	text string
}

// recordingMsg reports push-to-talk state changes made outside the TUI
type recordingMsg struct {
	recording bool
}

// hotkeyHintMsg replaces the push-to-talk hint in the status line
type hotkeyHintMsg struct {
	hint string
}
