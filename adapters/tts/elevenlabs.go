package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/domain/repositories"
)

const (
	defaultAPIBaseURL = "https://api.elevenlabs.io/v1"
	audioFormatMPEG   = "audio/mpeg"

	// Every request uses the same model and voice settings
	modelID         = "eleven_multilingual_v2"
	stability       = 0.5
	similarityBoost = 0.5
)

// ElevenLabsConfig holds configuration for the ElevenLabsTTS adapter
// Required fields:
// - APIKey: Your Eleven Labs API key
// - VoiceID: The voice to speak with
// Optional fields with defaults:
// - APIBaseURL: The base URL for the Eleven Labs API (default: "https://api.elevenlabs.io/v1")
type ElevenLabsConfig struct {
	APIKey     string // Required: Your Eleven Labs API key
	VoiceID    string // Required: The voice ID to use
	APIBaseURL string // Optional: The base URL for the Eleven Labs API
}

// ElevenLabsTTS implements TextToSpeech interface using Eleven Labs API
type ElevenLabsTTS struct {
	apiKey     string
	apiBaseURL string
	voiceID    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure ElevenLabsTTS implements the TextToSpeech interface
var _ repositories.TextToSpeech = (*ElevenLabsTTS)(nil)

// ElevenLabsVoiceSettings represents voice settings for Eleven Labs API
type ElevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// ElevenLabsRequest represents the request payload for Eleven Labs TTS API
type ElevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings ElevenLabsVoiceSettings `json:"voice_settings"`
}

// ValidateElevenLabsConfig validates the ElevenLabsConfig
func ValidateElevenLabsConfig(config ElevenLabsConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("eleven labs API key is required")
	}

	if config.VoiceID == "" {
		return fmt.Errorf("eleven labs voice ID is required")
	}

	return nil
}

// NewElevenLabsTTS creates a new Eleven Labs TTS instance
func NewElevenLabsTTS(config ElevenLabsConfig, httpClient *http.Client, logger *zap.Logger) (*ElevenLabsTTS, error) {
	// Validate required configuration
	if err := ValidateElevenLabsConfig(config); err != nil {
		return nil, err
	}

	// Apply defaults where needed
	apiBaseURL := strings.TrimRight(config.APIBaseURL, "/")
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
		logger.Info("Using default API base URL", zap.String("apiBaseURL", apiBaseURL))
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &ElevenLabsTTS{
		apiKey:     config.APIKey,
		apiBaseURL: apiBaseURL,
		voiceID:    config.VoiceID,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Synthesize converts text to MPEG audio. It never fails: any error is logged
// and reported as a failed result without audio. There is no retry.
func (e *ElevenLabsTTS) Synthesize(ctx context.Context, text string) repositories.SynthesisResult {
	result := repositories.SynthesisResult{State: repositories.SynthesisIdle}
	e.logger.Debug("Speech synthesis requested", zap.String("state", string(result.State)))

	if strings.TrimSpace(text) == "" {
		e.logger.Warn("Skipping speech synthesis for empty text")
		result.State = repositories.SynthesisFailed
		result.Reason = errors.New("text cannot be empty")
		return result
	}

	result.State = repositories.SynthesisSending
	e.logger.Info("Converting text to speech",
		zap.Int("textLength", len(text)),
		zap.String("voiceID", e.voiceID),
		zap.String("state", string(result.State)))

	audio, err := e.send(ctx, text)
	if err != nil {
		e.logger.Error("Speech synthesis failed", zap.Error(err))
		result.State = repositories.SynthesisFailed
		result.Reason = err
		return result
	}

	e.logger.Info("Speech synthesis succeeded", zap.Int("audioBytes", len(audio.Data)))
	result.State = repositories.SynthesisSucceeded
	result.Audio = audio
	return result
}

func (e *ElevenLabsTTS) send(ctx context.Context, text string) (*repositories.Audio, error) {
	request := ElevenLabsRequest{
		Text:    text,
		ModelID: modelID,
		VoiceSettings: ElevenLabsVoiceSettings{
			Stability:       stability,
			SimilarityBoost: similarityBoost,
		},
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", e.apiBaseURL, e.voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Accept", audioFormatMPEG)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	e.logger.Debug("Sending request to Eleven Labs API", zap.String("url", url))

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody, _ := io.ReadAll(resp.Body)
		e.logger.Error("Eleven Labs API returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return nil, fmt.Errorf("API returned error %d: %s", resp.StatusCode, string(errorBody))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("API returned empty audio")
	}

	format := resp.Header.Get("Content-Type")
	if format == "" {
		format = audioFormatMPEG
	}

	return &repositories.Audio{Data: data, Format: format}, nil
}
