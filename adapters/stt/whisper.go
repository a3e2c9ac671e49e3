package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/adapters/audio"
	"github.com/satriahrh/npctalk/domain/repositories"
)

// WhisperSpeechToText transcribes recordings with a whisper.cpp server
type WhisperSpeechToText struct {
	serverURL  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure WhisperSpeechToText implements the SpeechToText interface
var _ repositories.SpeechToText = (*WhisperSpeechToText)(nil)

// NewWhisperSpeechToText creates a client for the whisper.cpp server at serverURL
func NewWhisperSpeechToText(serverURL string, httpClient *http.Client, logger *zap.Logger) (*WhisperSpeechToText, error) {
	serverURL = strings.TrimRight(serverURL, "/")
	if serverURL == "" {
		return nil, fmt.Errorf("whisper server URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &WhisperSpeechToText{
		serverURL:  serverURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// TranscribeAudio wraps the PCM recording in a WAV file and posts it to /inference
func (w *WhisperSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fw.Write(audio.EncodeWAV(audioData, config.SampleRate, 1)); err != nil {
		return "", fmt.Errorf("failed to write wav data: %w", err)
	}

	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("failed to write response_format field: %w", err)
	}
	if config.Language != "" {
		if err := mw.WriteField("language", config.Language); err != nil {
			return "", fmt.Errorf("failed to write language field: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	endpoint := w.serverURL + "/inference"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w.logger.Debug("Sending audio to whisper",
		zap.String("endpoint", endpoint),
		zap.Int("audioBytes", len(audioData)))

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper server returned status %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to decode whisper response: %w", err)
	}

	return strings.TrimSpace(result.Text), nil
}
