package llm

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/satriahrh/npctalk/domain/repositories"
)

const mockEmbeddingSize = 256

// MockEmbedder hashes words into a fixed-size bag-of-words vector. It is used
// when no Gemini key is configured: passages sharing words with a question
// still rank first.
type MockEmbedder struct{}

// NewMockEmbedder creates a new mock embedder
func NewMockEmbedder() repositories.Embedder {
	return &MockEmbedder{}
}

// EmbedDocuments implements repositories.Embedder
func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashEmbedding(text)
	}
	return vectors, ctx.Err()
}

// EmbedQuery implements repositories.Embedder
func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return hashEmbedding(text), ctx.Err()
}

func hashEmbedding(text string) []float32 {
	vector := make([]float32, mockEmbeddingSize)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, word := range words {
		h := fnv.New32a()
		h.Write([]byte(word))
		vector[h.Sum32()%mockEmbeddingSize]++
	}
	// keep the vector non-zero so every passage has a defined similarity
	vector[0] += 0.01
	return vector
}
