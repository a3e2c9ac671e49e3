package repositories

import (
	"context"
	"iter"
)

// Answerer abstracts the model that answers questions on the /ask backend
type Answerer interface {
	// AnswerStream yields answer fragments in order. A non-nil error ends the
	// stream. knowledge holds retrieved passages the answer may draw on.
	AnswerStream(ctx context.Context, question string, knowledge []string) iter.Seq2[string, error]
}

// AnswerClient abstracts the question-answering endpoint used by the chat client
type AnswerClient interface {
	// Ask posts a question and returns the full concatenated answer
	Ask(ctx context.Context, question string) (string, error)
}
