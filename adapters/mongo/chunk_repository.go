package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/domain/entities"
	"github.com/satriahrh/npctalk/domain/repositories"
)

const chunksCollection = "knowledge_chunks"

// ChunkRepository implements ChunkRepository using MongoDB. Similarity is
// computed client side so no vector index is required.
type ChunkRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// Ensure ChunkRepository implements the ChunkRepository interface
var _ repositories.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new MongoDB chunk repository
func NewChunkRepository(db *mongo.Database, logger *zap.Logger) *ChunkRepository {
	return &ChunkRepository{
		collection: db.Collection(chunksCollection),
		logger:     logger,
	}
}

// EnsureIndexes creates the index used by ReplaceSource
func (r *ChunkRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "source", Value: 1}, {Key: "index", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create chunk index: %w", err)
	}
	return nil
}

// ReplaceSource implements repositories.ChunkRepository
func (r *ChunkRepository) ReplaceSource(ctx context.Context, source string, chunks []*entities.DocumentChunk) error {
	documents := make([]interface{}, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == nil {
			return errors.New("chunk cannot be nil")
		}
		if chunk.Source != source {
			return fmt.Errorf("chunk source %q does not match %q", chunk.Source, source)
		}
		if err := chunk.Validate(); err != nil {
			return fmt.Errorf("invalid chunk: %w", err)
		}
		documents = append(documents, chunk)
	}

	deleted, err := r.collection.DeleteMany(ctx, bson.M{"source": source})
	if err != nil {
		return fmt.Errorf("failed to delete chunks of %s: %w", source, err)
	}

	if len(documents) > 0 {
		if _, err := r.collection.InsertMany(ctx, documents); err != nil {
			return fmt.Errorf("failed to insert chunks of %s: %w", source, err)
		}
	}

	r.logger.Debug("Knowledge source replaced",
		zap.String("source", source),
		zap.Int64("deleted", deleted.DeletedCount),
		zap.Int("inserted", len(documents)))
	return nil
}

// Search implements repositories.ChunkRepository
func (r *ChunkRepository) Search(ctx context.Context, query []float32, k int) ([]entities.ScoredChunk, error) {
	if k <= 0 {
		return []entities.ScoredChunk{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	defer cursor.Close(ctx)

	chunks := make([]*entities.DocumentChunk, 0)
	if err := cursor.All(ctx, &chunks); err != nil {
		return nil, fmt.Errorf("failed to decode chunks: %w", err)
	}

	return entities.RankChunks(query, chunks, k), nil
}

// Count implements repositories.ChunkRepository
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return int(n), nil
}
