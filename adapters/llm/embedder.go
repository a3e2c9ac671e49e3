package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/npctalk/domain/repositories"
)

const (
	defaultEmbeddingModel = "text-embedding-004"
	// embedBatchSize is the most texts the API embeds in one call
	embedBatchSize = 100

	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// GeminiEmbedder implements the Embedder interface using Gemini embedding models
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// Ensure GeminiEmbedder implements the Embedder interface
var _ repositories.Embedder = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates a new Gemini embedder
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("Google AI API key is required")
	}

	client, err := newClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = defaultEmbeddingModel
	}

	return &GeminiEmbedder{client: client, model: model, logger: logger}, nil
}

// EmbedDocuments implements repositories.Embedder
func (g *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		batch, err := g.embed(ctx, texts[start:end], taskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	g.logger.Debug("Documents embedded", zap.Int("count", len(vectors)), zap.String("model", g.model))
	return vectors, nil
}

// EmbedQuery implements repositories.Embedder
func (g *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.embed(ctx, []string{text}, taskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (g *GeminiEmbedder) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{TaskType: task})
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}

	return embeddingValues(resp, len(texts))
}

// embeddingValues checks that the response holds one vector per input
func embeddingValues(resp *genai.EmbedContentResponse, want int) ([][]float32, error) {
	if resp == nil || len(resp.Embeddings) != want {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("expected %d embeddings, got %d", want, got)
	}

	vectors := make([][]float32, want)
	for i, embedding := range resp.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", i)
		}
		vectors[i] = embedding.Values
	}
	return vectors, nil
}
