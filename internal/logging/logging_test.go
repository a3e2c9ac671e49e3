package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/satriahrh/npctalk/internal/config"
)

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "npctalk.log")

	logger, err := New(config.LogConfig{Level: "debug"}, path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Debug("written to file")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected log output in file")
	}

	if _, err := New(config.LogConfig{Level: "loud"}, ""); err == nil {
		t.Error("Expected error for invalid level")
	}
}
