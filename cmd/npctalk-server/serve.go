package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/adapters"
	"github.com/satriahrh/npctalk/adapters/llm"
	"github.com/satriahrh/npctalk/adapters/mongo"
	"github.com/satriahrh/npctalk/domain/repositories"
	"github.com/satriahrh/npctalk/internal/api"
	"github.com/satriahrh/npctalk/internal/config"
	"github.com/satriahrh/npctalk/internal/logging"
	"github.com/satriahrh/npctalk/internal/telemetry"
	"github.com/satriahrh/npctalk/usecase"
)

const serviceName = "npctalk-server"

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log, "")
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, serviceName, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	// Initialize adapters
	answerer, err := newAnswerer(ctx, cfg.Server, logger)
	if err != nil {
		return err
	}

	stores, err := newStores(ctx, cfg.Server, logger)
	if err != nil {
		return err
	}
	defer stores.close()

	knowledge, err := newKnowledgeService(ctx, cfg, stores.chunks, logger)
	if err != nil {
		return err
	}

	// Initialize usecase services
	answerService := usecase.NewAnswerService(answerer, prepareRetriever(ctx, knowledge, cfg.Knowledge.Dir, logger), stores.exchanges, logger)

	e := newServer(answerService, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", cfg.Server.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited")
	return nil
}

// newServer builds the echo instance with request tracing in front of the routes
func newServer(answers *usecase.AnswerService, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(echo.WrapMiddleware(otelhttp.NewMiddleware(serviceName)))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize API routes
	api.InitRoutes(e, answers, logger)
	return e
}

// newAnswerer picks Gemini when a key is configured and the mock otherwise
func newAnswerer(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger) (repositories.Answerer, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, using mock answerer")
		return llm.NewMockAnswerer(), nil
	}

	gemini, err := llm.NewGeminiAnswerer(ctx, llm.GeminiConfig{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		Persona:         cfg.Persona,
		Temperature:     float32(cfg.GeminiTemperature),
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini answerer: %w", err)
	}
	return gemini, nil
}

// stores holds the repositories the backend persists to
type stores struct {
	exchanges repositories.ExchangeRepository
	chunks    repositories.ChunkRepository
	close     func()
}

// newStores picks MongoDB when a URI is configured and memory otherwise
func newStores(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger) (*stores, error) {
	if cfg.MongoDBURI == "" {
		logger.Info("MONGODB_URI not set, keeping exchanges and knowledge in memory")
		return &stores{
			exchanges: adapters.NewMemoryExchangeRepository(cfg.HistoryCapacity),
			chunks:    adapters.NewMemoryChunkRepository(),
			close:     func() {},
		}, nil
	}

	client, err := mongo.NewClient(ctx, cfg.MongoDBURI, cfg.MongoDBDatabase, logger)
	if err != nil {
		return nil, err
	}
	closeClient := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Close(closeCtx)
	}

	exchanges := mongo.NewExchangeRepository(client.Database, logger)
	if err := exchanges.EnsureIndexes(ctx); err != nil {
		closeClient()
		return nil, err
	}

	chunks := mongo.NewChunkRepository(client.Database, logger)
	if err := chunks.EnsureIndexes(ctx); err != nil {
		closeClient()
		return nil, err
	}

	return &stores{exchanges: exchanges, chunks: chunks, close: closeClient}, nil
}

// newKnowledgeService embeds with Gemini when a key is configured and with
// the hashing mock otherwise. PDFs need the Gemini reader.
func newKnowledgeService(ctx context.Context, cfg config.Config, chunks repositories.ChunkRepository, logger *zap.Logger) (*usecase.KnowledgeService, error) {
	options := usecase.KnowledgeOptions{
		TopK:         cfg.Knowledge.TopK,
		ChunkSize:    cfg.Knowledge.ChunkSize,
		ChunkOverlap: cfg.Knowledge.ChunkOverlap,
	}

	if cfg.Server.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, using mock embeddings and skipping PDFs")
		return usecase.NewKnowledgeService(chunks, llm.NewMockEmbedder(), nil, options, logger), nil
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.Server.GeminiAPIKey, cfg.Knowledge.EmbeddingModel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini embedder: %w", err)
	}
	reader, err := llm.NewGeminiDocumentReader(ctx, cfg.Server.GeminiAPIKey, cfg.Server.GeminiModel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini document reader: %w", err)
	}
	return usecase.NewKnowledgeService(chunks, embedder, reader, options, logger), nil
}

// prepareRetriever ingests dir into an empty store and returns the knowledge
// service as retriever, or nil when there is nothing to retrieve from
func prepareRetriever(ctx context.Context, knowledge *usecase.KnowledgeService, dir string, logger *zap.Logger) usecase.Retriever {
	empty, err := knowledge.Empty(ctx)
	if err != nil {
		logger.Warn("Failed to inspect knowledge store, answering without knowledge", zap.Error(err))
		return nil
	}

	if empty && dir != "" {
		if _, err := knowledge.IngestDir(ctx, dir); err != nil {
			logger.Warn("Knowledge ingest failed", zap.String("dir", dir), zap.Error(err))
		}
		empty, _ = knowledge.Empty(ctx)
	}

	if empty {
		logger.Info("No knowledge ingested, answering without background knowledge")
		return nil
	}
	return knowledge
}
