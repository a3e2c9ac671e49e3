package entities

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who said a line in the conversation
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerNPC  Speaker = "npc"
)

// FallbackReply is shown as the NPC line whenever an answer could not be fetched
const FallbackReply = "Sorry, an error occurred. Please try again."

// ConversationTurn represents a single line in the dialogue view
type ConversationTurn struct {
	ID      string    `json:"id"`
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Transcript is the ordered, append-only list of turns of one conversation.
// Turns are never reordered or removed.
type Transcript struct {
	mu    sync.RWMutex
	turns []ConversationTurn
}

// NewTranscript creates an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{
		turns: make([]ConversationTurn, 0),
	}
}

// Append adds a new turn at the end of the transcript and returns it
func (t *Transcript) Append(speaker Speaker, text string) ConversationTurn {
	turn := ConversationTurn{
		ID:      uuid.NewString(),
		Speaker: speaker,
		Text:    text,
		At:      time.Now(),
	}

	t.mu.Lock()
	t.turns = append(t.turns, turn)
	t.mu.Unlock()

	return turn
}

// Turns returns a copy of the turns in conversation order
func (t *Transcript) Turns() []ConversationTurn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	turns := make([]ConversationTurn, len(t.turns))
	copy(turns, t.turns)
	return turns
}
