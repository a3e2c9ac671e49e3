package api

import "time"

// AskRequest represents the request payload for /ask
type AskRequest struct {
	Question string `json:"question"`
}

// AnswerLine is one line of the newline-delimited /ask response
type AnswerLine struct {
	Answer  string `json:"answer"`
	Context string `json:"context"`
}

// ExchangeResponse represents an archived exchange
type ExchangeResponse struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Failed    bool      `json:"failed"`
	Sources   []string  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
