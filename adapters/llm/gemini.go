package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/npctalk/domain/repositories"
)

const (
	defaultModel           = "gemini-2.0-flash"
	defaultTemperature     = 0.7
	defaultMaxOutputTokens = 256

	// DefaultPersona is the system instruction used when none is configured
	DefaultPersona = "You are a non-player character in a fantasy role-playing game. " +
		"Stay in character, answer the player's questions in one to three short sentences, " +
		"and never mention that you are an AI. If you don't know the answer, say that you don't know.\n\n" +
		ContextPlaceholder

	// ContextPlaceholder marks where retrieved knowledge goes in the persona
	ContextPlaceholder = "{context}"
)

// GeminiConfig holds configuration for the Gemini answerer
type GeminiConfig struct {
	APIKey          string  // Required: Google AI API key
	Model           string  // Optional: model name
	Persona         string  // Optional: system instruction describing the NPC
	Temperature     float32 // Optional: sampling temperature between 0 and 2
	MaxOutputTokens int     // Optional: upper bound on the reply length
}

// GeminiAnswerer implements the Answerer interface using Google's Gemini API
type GeminiAnswerer struct {
	client          *genai.Client
	model           string
	persona         string
	temperature     float32
	maxOutputTokens int
	logger          *zap.Logger
}

// Ensure GeminiAnswerer implements the Answerer interface
var _ repositories.Answerer = (*GeminiAnswerer)(nil)

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}

	if config.Temperature < 0 || config.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", config.Temperature)
	}

	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("max output tokens must be positive, got %d", config.MaxOutputTokens)
	}

	return nil
}

// NewGeminiAnswerer creates a new Gemini answerer
func NewGeminiAnswerer(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiAnswerer, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	client, err := newClient(ctx, config.APIKey)
	if err != nil {
		return nil, err
	}

	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default model", zap.String("model", model))
	}

	persona := config.Persona
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersona
		logger.Info("Using default persona")
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxOutputTokens
	}

	return &GeminiAnswerer{
		client:          client,
		model:           model,
		persona:         persona,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
		logger:          logger,
	}, nil
}

func newClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// AnswerStream streams the reply to question as text fragments
func (g *GeminiAnswerer) AnswerStream(ctx context.Context, question string, knowledge []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		contents := []*genai.Content{genai.NewContentFromText(question, genai.RoleUser)}
		config := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemInstruction(g.persona, knowledge), genai.RoleUser),
			Temperature:       genai.Ptr(g.temperature),
			MaxOutputTokens:   int32(g.maxOutputTokens),
		}

		g.logger.Debug("Generating answer",
			zap.String("model", g.model),
			zap.Int("questionLength", len(question)),
			zap.Int("passages", len(knowledge)))

		chunks := 0
		for response, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, config) {
			if err != nil {
				yield("", fmt.Errorf("failed to generate content: %w", err))
				return
			}

			text := responseText(response)
			if text == "" {
				continue
			}
			chunks++
			if !yield(text, nil) {
				return
			}
		}

		g.logger.Debug("Answer generated", zap.Int("chunks", chunks))
	}
}

// SystemInstruction puts the knowledge passages into persona. They replace
// the {context} placeholder when there is one and are appended otherwise.
func SystemInstruction(persona string, knowledge []string) string {
	passages := strings.Join(knowledge, "\n\n")
	if strings.Contains(persona, ContextPlaceholder) {
		return strings.TrimSpace(strings.ReplaceAll(persona, ContextPlaceholder, passages))
	}
	if passages == "" {
		return persona
	}
	return persona + "\n\nUse this background knowledge when it is relevant:\n" + passages
}

// responseText extracts the text parts of the first candidate
func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 {
		return ""
	}
	candidate := response.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
