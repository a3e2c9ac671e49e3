package adapters

import (
	"context"
	"errors"
	"sync"

	"github.com/satriahrh/npctalk/domain/entities"
	"github.com/satriahrh/npctalk/domain/repositories"
)

// MemoryChunkRepository is an in-memory implementation of ChunkRepository.
// Search is a linear scan, which is fine for a handful of documents.
type MemoryChunkRepository struct {
	mu       sync.RWMutex
	bySource map[string][]*entities.DocumentChunk
}

// Ensure MemoryChunkRepository implements the ChunkRepository interface
var _ repositories.ChunkRepository = (*MemoryChunkRepository)(nil)

// NewMemoryChunkRepository creates a new in-memory chunk repository
func NewMemoryChunkRepository() *MemoryChunkRepository {
	return &MemoryChunkRepository{
		bySource: make(map[string][]*entities.DocumentChunk),
	}
}

// ReplaceSource implements repositories.ChunkRepository
func (m *MemoryChunkRepository) ReplaceSource(ctx context.Context, source string, chunks []*entities.DocumentChunk) error {
	stored := make([]*entities.DocumentChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == nil {
			return errors.New("chunk cannot be nil")
		}
		if chunk.Source != source {
			return errors.New("chunk source does not match")
		}
		if err := chunk.Validate(); err != nil {
			return err
		}
		copied := *chunk
		stored = append(stored, &copied)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(stored) == 0 {
		delete(m.bySource, source)
		return nil
	}
	m.bySource[source] = stored
	return nil
}

// Search implements repositories.ChunkRepository
func (m *MemoryChunkRepository) Search(ctx context.Context, query []float32, k int) ([]entities.ScoredChunk, error) {
	m.mu.RLock()
	all := make([]*entities.DocumentChunk, 0)
	for _, chunks := range m.bySource {
		all = append(all, chunks...)
	}
	m.mu.RUnlock()

	ranked := entities.RankChunks(query, all, k)
	for i := range ranked {
		copied := *ranked[i].Chunk
		ranked[i].Chunk = &copied
	}
	return ranked, nil
}

// Count implements repositories.ChunkRepository
func (m *MemoryChunkRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, chunks := range m.bySource {
		total += len(chunks)
	}
	return total, nil
}
