package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/npctalk/domain/repositories"
)

const extractPrompt = "Transcribe all readable text of this document as plain text, " +
	"page by page and in reading order. Do not summarize or add commentary."

// GeminiDocumentReader extracts text from PDFs and images by handing them to
// a Gemini model as inline data
type GeminiDocumentReader struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// Ensure GeminiDocumentReader implements the DocumentReader interface
var _ repositories.DocumentReader = (*GeminiDocumentReader)(nil)

// NewGeminiDocumentReader creates a new document reader
func NewGeminiDocumentReader(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiDocumentReader, error) {
	if apiKey == "" {
		return nil, errors.New("Google AI API key is required")
	}

	client, err := newClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = defaultModel
	}

	return &GeminiDocumentReader{client: client, model: model, logger: logger}, nil
}

// ExtractText implements repositories.DocumentReader
func (g *GeminiDocumentReader) ExtractText(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("document %s is empty", name)
	}

	mimeType := documentMIMEType(name, data)
	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(extractPrompt),
	}, genai.RoleUser)}

	g.logger.Debug("Extracting document text",
		zap.String("name", name),
		zap.String("mimeType", mimeType),
		zap.Int("bytes", len(data)))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", name, err)
	}

	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", fmt.Errorf("no text found in %s", name)
	}
	return text, nil
}

// documentMIMEType trusts the extension for PDFs and sniffs everything else
func documentMIMEType(name string, data []byte) string {
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return "application/pdf"
	}
	mimeType := http.DetectContentType(data)
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return mimeType
}
