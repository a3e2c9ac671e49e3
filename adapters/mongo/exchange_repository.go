package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/domain/entities"
	"github.com/satriahrh/npctalk/domain/repositories"
)

const exchangesCollection = "exchanges"

// ExchangeRepository implements ExchangeRepository using MongoDB
type ExchangeRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// Ensure ExchangeRepository implements the ExchangeRepository interface
var _ repositories.ExchangeRepository = (*ExchangeRepository)(nil)

// NewExchangeRepository creates a new MongoDB exchange repository
func NewExchangeRepository(db *mongo.Database, logger *zap.Logger) *ExchangeRepository {
	return &ExchangeRepository{
		collection: db.Collection(exchangesCollection),
		logger:     logger,
	}
}

// EnsureIndexes creates the index used by ListRecent
func (r *ExchangeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create exchange index: %w", err)
	}
	return nil
}

// Create implements repositories.ExchangeRepository
func (r *ExchangeRepository) Create(ctx context.Context, exchange *entities.Exchange) error {
	if exchange == nil {
		return errors.New("exchange cannot be nil")
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now()
	}
	if err := exchange.Validate(); err != nil {
		return fmt.Errorf("invalid exchange: %w", err)
	}

	if _, err := r.collection.InsertOne(ctx, exchange); err != nil {
		return fmt.Errorf("failed to create exchange: %w", err)
	}

	r.logger.Debug("Exchange archived",
		zap.String("exchangeID", exchange.ID),
		zap.Int("fragments", exchange.Fragments))
	return nil
}

// GetByID implements repositories.ExchangeRepository
func (r *ExchangeRepository) GetByID(ctx context.Context, id string) (*entities.Exchange, error) {
	if id == "" {
		return nil, errors.New("exchange ID cannot be empty")
	}

	var exchange entities.Exchange
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exchange)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrExchangeNotFound
		}
		return nil, fmt.Errorf("failed to get exchange %s: %w", id, err)
	}

	return &exchange, nil
}

// ListRecent implements repositories.ExchangeRepository
func (r *ExchangeRepository) ListRecent(ctx context.Context, limit int) ([]*entities.Exchange, error) {
	if limit <= 0 {
		return []*entities.Exchange{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer cursor.Close(ctx)

	exchanges := make([]*entities.Exchange, 0, limit)
	if err := cursor.All(ctx, &exchanges); err != nil {
		return nil, fmt.Errorf("failed to decode exchanges: %w", err)
	}

	return exchanges, nil
}
