package stt

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/domain/repositories"
)

// MockSpeechToText is a placeholder implementation for speech recognition
type MockSpeechToText struct {
	text   string
	logger *zap.Logger
}

// NewMockSpeechToText creates a new mock speech-to-text service. An empty
// text selects canned phrases based on the recording length.
func NewMockSpeechToText(text string, logger *zap.Logger) repositories.SpeechToText {
	return &MockSpeechToText{
		text:   text,
		logger: logger,
	}
}

// TranscribeAudio implements repositories.SpeechToText
func (s *MockSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	s.logger.Info("Processing speech-to-text",
		zap.Int("audioSize", len(audioData)),
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding))

	if len(audioData) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	if s.text != "" {
		return s.text, nil
	}

	// Mock transcription based on audio size
	switch {
	case len(audioData) > 64000:
		return "Tell me about the old mine north of the village.", nil
	case len(audioData) > 16000:
		return "Who are you?", nil
	default:
		return "Hello", nil
	}
}
