package entities

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is one embedded passage of an ingested knowledge document
type DocumentChunk struct {
	ID        string    `json:"id" bson:"_id"`
	Source    string    `json:"source" bson:"source"` // file name the passage came from
	Index     int       `json:"index" bson:"index"`   // position within the source
	Text      string    `json:"text" bson:"text"`
	Embedding []float32 `json:"-" bson:"embedding"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewDocumentChunk creates a chunk for the index-th passage of source
func NewDocumentChunk(source string, index int, text string, embedding []float32) *DocumentChunk {
	return &DocumentChunk{
		ID:        uuid.NewString(),
		Source:    source,
		Index:     index,
		Text:      text,
		Embedding: embedding,
		CreatedAt: time.Now(),
	}
}

// Validate validates the chunk data
func (c *DocumentChunk) Validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(c.Source) == "" {
		return errors.New("source is required")
	}
	if strings.TrimSpace(c.Text) == "" {
		return errors.New("text is required")
	}
	if len(c.Embedding) == 0 {
		return errors.New("embedding is required")
	}
	return nil
}

// ScoredChunk is a retrieval hit
type ScoredChunk struct {
	Chunk *DocumentChunk
	Score float64
}

// CosineSimilarity returns the cosine of the angle between a and b. Vectors
// of different length or zero norm score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RankChunks returns the k chunks most similar to query, best first. Ties
// keep source and index order.
func RankChunks(query []float32, chunks []*DocumentChunk, k int) []ScoredChunk {
	if k <= 0 {
		return []ScoredChunk{}
	}

	scored := make([]ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		scored = append(scored, ScoredChunk{Chunk: chunk, Score: CosineSimilarity(query, chunk.Embedding)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Chunk.Source != scored[j].Chunk.Source {
			return scored[i].Chunk.Source < scored[j].Chunk.Source
		}
		return scored[i].Chunk.Index < scored[j].Chunk.Index
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
