package main

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/npctalk/internal/config"
)

func TestNewRecorder_Mock(t *testing.T) {
	recorder, closeCapture, err := newRecorder(context.Background(), config.CaptureConfig{
		Engine:     "mock",
		SampleRate: 16000,
		MockText:   "Where is the blacksmith?",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("newRecorder failed: %v", err)
	}
	defer closeCapture()

	if err := recorder.StartRecording(); err != nil {
		t.Fatalf("StartRecording failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if !recorder.StopRecording() {
		t.Fatal("Expected a usable recording")
	}
	text, err := recorder.Transcribe(context.Background())
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "Where is the blacksmith?" {
		t.Errorf("Expected mock text, got %q", text)
	}
}
