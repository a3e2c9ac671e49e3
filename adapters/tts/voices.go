package tts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Voice is an entry of the voice catalogue
type Voice struct {
	VoiceID  string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// VoiceCatalog lists the voices available to an API key. Unlike
// ElevenLabsTTS it needs no voice ID, so it can be used to pick one.
type VoiceCatalog struct {
	apiKey     string
	apiBaseURL string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewVoiceCatalog creates a voice catalogue client
func NewVoiceCatalog(apiKey, apiBaseURL string, httpClient *http.Client, logger *zap.Logger) (*VoiceCatalog, error) {
	if apiKey == "" {
		return nil, errors.New("eleven labs API key is required")
	}

	apiBaseURL = strings.TrimRight(apiBaseURL, "/")
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &VoiceCatalog{
		apiKey:     apiKey,
		apiBaseURL: apiBaseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// ListVoices retrieves available voices from Eleven Labs API
func (c *VoiceCatalog) ListVoices(ctx context.Context) ([]Voice, error) {
	url := fmt.Sprintf("%s/voices", c.apiBaseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned error %d: %s", resp.StatusCode, string(errorBody))
	}

	var voicesResponse struct {
		Voices []Voice `json:"voices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&voicesResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Info("Retrieved available voices", zap.Int("count", len(voicesResponse.Voices)))
	return voicesResponse.Voices, nil
}
