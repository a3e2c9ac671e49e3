package adapters

import (
	"context"
	"testing"

	"github.com/satriahrh/npctalk/domain/entities"
)

func TestMemoryChunkRepository_ReplaceAndSearch(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChunkRepository()

	err := repo.ReplaceSource(ctx, "lore.txt", []*entities.DocumentChunk{
		entities.NewDocumentChunk("lore.txt", 0, "The mine is haunted.", []float32{1, 0}),
		entities.NewDocumentChunk("lore.txt", 1, "A dragon sleeps in the hills.", []float32{0, 1}),
	})
	if err != nil {
		t.Fatalf("ReplaceSource failed: %v", err)
	}

	hits, err := repo.Search(ctx, []float32{0.9, 0.1}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Chunk.Text != "The mine is haunted." {
		t.Errorf("Expected the mine passage, got %+v", hits)
	}

	// results are copies
	hits[0].Chunk.Text = "changed"
	again, _ := repo.Search(ctx, []float32{1, 0}, 1)
	if again[0].Chunk.Text != "The mine is haunted." {
		t.Error("Expected repository to be isolated from caller mutations")
	}

	// re-ingesting a source replaces its chunks
	err = repo.ReplaceSource(ctx, "lore.txt", []*entities.DocumentChunk{
		entities.NewDocumentChunk("lore.txt", 0, "The mine was cleared.", []float32{1, 0}),
	})
	if err != nil {
		t.Fatalf("ReplaceSource failed: %v", err)
	}
	if count, _ := repo.Count(ctx); count != 1 {
		t.Errorf("Expected 1 chunk after replace, got %d", count)
	}

	if err := repo.ReplaceSource(ctx, "lore.txt", nil); err != nil {
		t.Fatalf("ReplaceSource failed: %v", err)
	}
	if count, _ := repo.Count(ctx); count != 0 {
		t.Errorf("Expected empty store, got %d", count)
	}
}

func TestMemoryChunkRepository_Validation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChunkRepository()

	tests := []struct {
		name   string
		chunks []*entities.DocumentChunk
	}{
		{"nil chunk", []*entities.DocumentChunk{nil}},
		{"source mismatch", []*entities.DocumentChunk{entities.NewDocumentChunk("other.txt", 0, "x", []float32{1})}},
		{"no embedding", []*entities.DocumentChunk{entities.NewDocumentChunk("lore.txt", 0, "x", nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.ReplaceSource(ctx, "lore.txt", tt.chunks); err == nil {
				t.Error("Expected validation error")
			}
		})
	}

	if count, _ := repo.Count(ctx); count != 0 {
		t.Errorf("Expected nothing stored, got %d", count)
	}
}
