package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/domain/entities"
	"github.com/satriahrh/npctalk/domain/repositories"
)

// ErrEmptyQuestion is returned when the question is missing or blank
var ErrEmptyQuestion = errors.New("question not provided")

// Retriever finds the knowledge passages relevant to a question
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]entities.ScoredChunk, error)
}

// AnswerService answers player questions for the /ask backend and archives
// every exchange
type AnswerService struct {
	answerer  repositories.Answerer
	retriever Retriever
	exchanges repositories.ExchangeRepository
	logger    *zap.Logger
}

// NewAnswerService creates a new answer service. retriever may be nil to
// answer without background knowledge, exchanges may be nil to disable
// archiving.
func NewAnswerService(answerer repositories.Answerer, retriever Retriever, exchanges repositories.ExchangeRepository, logger *zap.Logger) *AnswerService {
	return &AnswerService{
		answerer:  answerer,
		retriever: retriever,
		exchanges: exchanges,
		logger:    logger,
	}
}

// Answer streams the answer to question, calling emit once per fragment in
// order. Fragments already emitted stay emitted when a later step fails.
func (s *AnswerService) Answer(ctx context.Context, question string, emit func(fragment string) error) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}

	exchange := entities.NewExchange(question)
	defer s.archive(ctx, exchange)

	knowledge := s.retrieve(ctx, exchange)

	for fragment, err := range s.answerer.AnswerStream(ctx, question, knowledge) {
		if err != nil {
			exchange.Failed = true
			return fmt.Errorf("failed to generate answer: %w", err)
		}
		if fragment == "" {
			continue
		}

		exchange.AddFragment(fragment)
		if err := emit(fragment); err != nil {
			exchange.Failed = true
			return fmt.Errorf("failed to write answer fragment: %w", err)
		}
	}

	s.logger.Info("Question answered",
		zap.String("exchangeID", exchange.ID),
		zap.Int("fragments", exchange.Fragments),
		zap.Int("answerLength", len(exchange.Answer)))

	return nil
}

// retrieve looks up background knowledge for the exchange. A failed lookup
// only costs the answer its context.
func (s *AnswerService) retrieve(ctx context.Context, exchange *entities.Exchange) []string {
	if s.retriever == nil {
		return nil
	}

	hits, err := s.retriever.Retrieve(ctx, exchange.Question)
	if err != nil {
		s.logger.Warn("Knowledge retrieval failed, answering without it",
			zap.String("exchangeID", exchange.ID),
			zap.Error(err))
		return nil
	}

	knowledge := make([]string, 0, len(hits))
	for _, hit := range hits {
		knowledge = append(knowledge, hit.Chunk.Text)
		if !slices.Contains(exchange.Sources, hit.Chunk.Source) {
			exchange.Sources = append(exchange.Sources, hit.Chunk.Source)
		}
	}
	return knowledge
}

func (s *AnswerService) archive(ctx context.Context, exchange *entities.Exchange) {
	if s.exchanges == nil {
		return
	}

	// Archived even when the request was cancelled
	if err := s.exchanges.Create(context.WithoutCancel(ctx), exchange); err != nil {
		s.logger.Error("Failed to archive exchange",
			zap.String("exchangeID", exchange.ID),
			zap.Error(err))
	}
}

// Recent returns the latest archived exchanges, newest first
func (s *AnswerService) Recent(ctx context.Context, limit int) ([]*entities.Exchange, error) {
	if s.exchanges == nil {
		return []*entities.Exchange{}, nil
	}
	return s.exchanges.ListRecent(ctx, limit)
}

// Get returns one archived exchange
func (s *AnswerService) Get(ctx context.Context, id string) (*entities.Exchange, error) {
	if s.exchanges == nil {
		return nil, repositories.ErrExchangeNotFound
	}
	return s.exchanges.GetByID(ctx, id)
}
