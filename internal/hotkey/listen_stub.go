//go:build !hotkey

package hotkey

import (
	"context"

	"go.uber.org/zap"
)

// Listen reports ErrUnavailable: this build has no global hotkey support
func Listen(ctx context.Context, binding Binding, onDown, onUp func(), logger *zap.Logger) error {
	logger.Debug("Built without global hotkey support", zap.String("binding", binding.Text))
	return ErrUnavailable
}
