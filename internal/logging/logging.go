// Package logging builds the zap logger shared by the chat client and the backend.
package logging

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/internal/config"
)

// New builds the zap logger. An empty output writes to stderr.
func New(cfg config.LogConfig, output string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = level

	if output != "" {
		zapCfg.OutputPaths = []string{output}
		zapCfg.ErrorOutputPaths = []string{output}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
