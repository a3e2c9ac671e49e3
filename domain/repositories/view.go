package repositories

import "github.com/satriahrh/npctalk/domain/entities"

// ConversationView is the UI boundary driven by the conversation orchestrator
type ConversationView interface {
	// AppendTurn adds a line to the transcript view and scrolls to it
	AppendTurn(turn entities.ConversationTurn)
	SetInputEnabled(enabled bool)
	SetInputText(text string)
}
