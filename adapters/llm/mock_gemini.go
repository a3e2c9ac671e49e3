package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/satriahrh/npctalk/domain/repositories"
)

// MockAnswerer is a placeholder implementation used when no Gemini key is configured
type MockAnswerer struct{}

// NewMockAnswerer creates a new mock answerer
func NewMockAnswerer() repositories.Answerer {
	return &MockAnswerer{}
}

// AnswerStream implements repositories.Answerer. It yields a canned reply
// one word at a time to mimic a streaming model. With knowledge, the reply
// quotes the first sentence of the best passage.
func (m *MockAnswerer) AnswerStream(ctx context.Context, question string, knowledge []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, fragment := range fragments(mockReply(question, knowledge)) {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

func mockReply(question string, knowledge []string) string {
	question = strings.TrimSpace(question)
	switch {
	case strings.EqualFold(question, "hello"):
		return "Well met, traveler! What brings you to our village?"
	case len(question) > 0 && len(knowledge) > 0 && firstSentence(knowledge[0]) != "":
		return "They say " + firstSentence(knowledge[0])
	case len(question) > 0:
		return fmt.Sprintf("You ask me %q? I am but a humble villager, I know little of such things.", question)
	default:
		return "Speak up, traveler."
	}
}

func firstSentence(passage string) string {
	passage = strings.Join(strings.Fields(passage), " ")
	if i := strings.IndexAny(passage, ".!?"); i >= 0 {
		return passage[:i+1]
	}
	return passage
}

// fragments splits text into words, keeping the separating space with the following word
func fragments(text string) []string {
	words := strings.Fields(text)
	out := make([]string, len(words))
	for i, word := range words {
		if i > 0 {
			word = " " + word
		}
		out[i] = word
	}
	return out
}
