package stt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/adapters/audio"
	"github.com/satriahrh/npctalk/domain/repositories"
)

var (
	// ErrAlreadyRecording is returned when a recording is started twice
	ErrAlreadyRecording = errors.New("recording already in progress")
	// ErrNoRecording is returned when there is nothing to transcribe
	ErrNoRecording = errors.New("no recording available")
)

// Recorder implements push-to-talk capture: it records from a microphone
// between StartRecording and StopRecording and transcribes the result.
type Recorder struct {
	mu          sync.Mutex
	mic         repositories.Microphone
	stt         repositories.SpeechToText
	minDuration time.Duration
	recording   bool
	lastCapture []byte
	logger      *zap.Logger
}

// Ensure Recorder implements the SpeechCapture interface
var _ repositories.SpeechCapture = (*Recorder)(nil)

// NewRecorder creates a recorder. Recordings shorter than minDuration are discarded.
func NewRecorder(mic repositories.Microphone, stt repositories.SpeechToText, minDuration time.Duration, logger *zap.Logger) *Recorder {
	return &Recorder{
		mic:         mic,
		stt:         stt,
		minDuration: minDuration,
		logger:      logger,
	}
}

// StartRecording begins capturing audio and discards any previous recording
func (r *Recorder) StartRecording() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return ErrAlreadyRecording
	}

	if err := r.mic.Start(); err != nil {
		return fmt.Errorf("failed to start microphone: %w", err)
	}

	r.recording = true
	r.lastCapture = nil
	r.logger.Info("Recording started")
	return nil
}

// StopRecording ends the capture and reports whether a usable recording exists
func (r *Recorder) StopRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return false
	}
	r.recording = false

	pcm, err := r.mic.Stop()
	if err != nil {
		r.logger.Error("Failed to stop microphone", zap.Error(err))
		return false
	}

	cfg := r.mic.Config()
	duration := audio.Duration(pcm, cfg.SampleRate, 1)
	if len(pcm) == 0 || duration < r.minDuration {
		r.logger.Info("Recording too short, discarding",
			zap.Duration("duration", duration),
			zap.Duration("minDuration", r.minDuration))
		return false
	}

	r.lastCapture = pcm
	r.logger.Info("Recording stopped",
		zap.Duration("duration", duration),
		zap.Int("bytes", len(pcm)))
	return true
}

// Transcribe converts the last recording to text. The recording is consumed.
func (r *Recorder) Transcribe(ctx context.Context) (string, error) {
	r.mu.Lock()
	pcm := r.lastCapture
	r.lastCapture = nil
	r.mu.Unlock()

	if len(pcm) == 0 {
		return "", ErrNoRecording
	}

	text, err := r.stt.TranscribeAudio(ctx, pcm, r.mic.Config())
	if err != nil {
		return "", fmt.Errorf("failed to transcribe recording: %w", err)
	}

	r.logger.Info("Transcription completed", zap.String("text", text))
	return text, nil
}
