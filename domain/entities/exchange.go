package entities

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Exchange represents one question/answer round trip served by the /ask backend
type Exchange struct {
	ID        string    `json:"id" bson:"_id"`
	Question  string    `json:"question" bson:"question"`
	Answer    string    `json:"answer" bson:"answer"`
	Fragments int       `json:"fragments" bson:"fragments"`
	Failed    bool      `json:"failed" bson:"failed"`
	// Sources names the knowledge documents the answer was grounded on
	Sources   []string  `json:"sources,omitempty" bson:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewExchange creates a new exchange for the given question
func NewExchange(question string) *Exchange {
	return &Exchange{
		ID:        uuid.NewString(),
		Question:  question,
		CreatedAt: time.Now(),
	}
}

// AddFragment appends a streamed answer fragment
func (e *Exchange) AddFragment(fragment string) {
	e.Answer += fragment
	e.Fragments++
}

// Validate validates the exchange data
func (e *Exchange) Validate() error {
	if e.ID == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(e.Question) == "" {
		return errors.New("question is required")
	}
	return nil
}
