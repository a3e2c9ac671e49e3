package adapters

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/satriahrh/npctalk/domain/entities"
	"github.com/satriahrh/npctalk/domain/repositories"
)

// DefaultExchangeCapacity is the number of exchanges kept in memory when no
// capacity is given
const DefaultExchangeCapacity = 100

// MemoryExchangeRepository is an in-memory implementation of ExchangeRepository.
// It is used when no MongoDB URI is configured; exchanges are lost on restart.
// Once full, the oldest stored exchange is dropped for every new one.
type MemoryExchangeRepository struct {
	mu        sync.RWMutex
	exchanges map[string]*entities.Exchange
	order     []string // insertion order, oldest first
	capacity  int
}

// Ensure MemoryExchangeRepository implements the ExchangeRepository interface
var _ repositories.ExchangeRepository = (*MemoryExchangeRepository)(nil)

// NewMemoryExchangeRepository creates a new in-memory exchange repository
// holding at most capacity exchanges. Zero or less means DefaultExchangeCapacity.
func NewMemoryExchangeRepository(capacity int) *MemoryExchangeRepository {
	if capacity <= 0 {
		capacity = DefaultExchangeCapacity
	}
	return &MemoryExchangeRepository{
		exchanges: make(map[string]*entities.Exchange),
		order:     make([]string, 0, capacity),
		capacity:  capacity,
	}
}

// Create stores a copy of the exchange
func (m *MemoryExchangeRepository) Create(ctx context.Context, exchange *entities.Exchange) error {
	if exchange == nil {
		return errors.New("exchange cannot be nil")
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now()
	}
	if err := exchange.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.exchanges[exchange.ID]; exists {
		return errors.New("exchange already exists")
	}

	for len(m.order) >= m.capacity {
		delete(m.exchanges, m.order[0])
		m.order = m.order[1:]
	}

	stored := *exchange
	m.exchanges[exchange.ID] = &stored
	m.order = append(m.order, exchange.ID)
	return nil
}

// GetByID retrieves an exchange by ID
func (m *MemoryExchangeRepository) GetByID(ctx context.Context, id string) (*entities.Exchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exchange, exists := m.exchanges[id]
	if !exists {
		return nil, repositories.ErrExchangeNotFound
	}

	result := *exchange
	return &result, nil
}

// ListRecent returns up to limit exchanges, newest first
func (m *MemoryExchangeRepository) ListRecent(ctx context.Context, limit int) ([]*entities.Exchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exchanges := make([]*entities.Exchange, 0, len(m.exchanges))
	for _, exchange := range m.exchanges {
		copied := *exchange
		exchanges = append(exchanges, &copied)
	}

	sort.Slice(exchanges, func(i, j int) bool {
		return exchanges[i].CreatedAt.After(exchanges[j].CreatedAt)
	})

	if limit < 0 {
		limit = 0
	}
	if len(exchanges) > limit {
		exchanges = exchanges[:limit]
	}
	return exchanges, nil
}

// Count returns the total number of stored exchanges
func (m *MemoryExchangeRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.exchanges)
}
