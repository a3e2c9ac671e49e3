package repositories

import (
	"context"

	"github.com/satriahrh/npctalk/domain/entities"
)

// Embedder turns text into vectors for similarity search
type Embedder interface {
	// EmbedDocuments embeds passages to be stored, one vector per text in order
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a question to search with
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// DocumentReader extracts plain text from a binary document such as a PDF
type DocumentReader interface {
	ExtractText(ctx context.Context, name string, data []byte) (string, error)
}

// ChunkRepository stores embedded passages and finds the nearest ones
type ChunkRepository interface {
	// ReplaceSource drops every chunk of source and stores chunks in its place
	ReplaceSource(ctx context.Context, source string, chunks []*entities.DocumentChunk) error
	// Search returns up to k chunks, most similar to query first
	Search(ctx context.Context, query []float32, k int) ([]entities.ScoredChunk, error)
	Count(ctx context.Context) (int, error)
}
