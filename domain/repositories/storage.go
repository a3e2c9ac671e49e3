package repositories

import (
	"context"
	"errors"

	"github.com/satriahrh/npctalk/domain/entities"
)

// ErrExchangeNotFound is returned when no exchange has the requested ID
var ErrExchangeNotFound = errors.New("exchange not found")

// ExchangeRepository defines data access methods for archived question/answer exchanges
type ExchangeRepository interface {
	Create(ctx context.Context, exchange *entities.Exchange) error
	GetByID(ctx context.Context, id string) (*entities.Exchange, error)
	// ListRecent returns up to limit exchanges, newest first
	ListRecent(ctx context.Context, limit int) ([]*entities.Exchange, error)
}
