//go:build hotkey

package hotkey

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	hk "golang.design/x/hotkey"
)

var keys = map[string]hk.Key{
	"space":  hk.KeySpace,
	"enter":  hk.KeyReturn,
	"escape": hk.KeyEscape,
	"tab":    hk.KeyTab,

	"0": hk.Key0, "1": hk.Key1, "2": hk.Key2, "3": hk.Key3, "4": hk.Key4,
	"5": hk.Key5, "6": hk.Key6, "7": hk.Key7, "8": hk.Key8, "9": hk.Key9,

	"a": hk.KeyA, "b": hk.KeyB, "c": hk.KeyC, "d": hk.KeyD, "e": hk.KeyE,
	"f": hk.KeyF, "g": hk.KeyG, "h": hk.KeyH, "i": hk.KeyI, "j": hk.KeyJ,
	"k": hk.KeyK, "l": hk.KeyL, "m": hk.KeyM, "n": hk.KeyN, "o": hk.KeyO,
	"p": hk.KeyP, "q": hk.KeyQ, "r": hk.KeyR, "s": hk.KeyS, "t": hk.KeyT,
	"u": hk.KeyU, "v": hk.KeyV, "w": hk.KeyW, "x": hk.KeyX, "y": hk.KeyY,
	"z": hk.KeyZ,

	"f1": hk.KeyF1, "f2": hk.KeyF2, "f3": hk.KeyF3, "f4": hk.KeyF4,
	"f5": hk.KeyF5, "f6": hk.KeyF6, "f7": hk.KeyF7, "f8": hk.KeyF8,
	"f9": hk.KeyF9, "f10": hk.KeyF10, "f11": hk.KeyF11, "f12": hk.KeyF12,
}

// Listen registers the binding and calls onDown and onUp for every key-down
// and key-up until ctx is done. It returns once the hotkey is registered.
// Both callbacks run on the same goroutine, in the order the edges arrive.
func Listen(ctx context.Context, binding Binding, onDown, onUp func(), logger *zap.Logger) error {
	// Registering from a non-main thread crashes on macOS
	if runtime.GOOS == "darwin" {
		return ErrUnavailable
	}

	mods := make([]hk.Modifier, 0, len(binding.Mods))
	for _, name := range binding.Mods {
		mod, ok := modifiers[name]
		if !ok {
			return fmt.Errorf("%w: modifier %q is not supported on %s", ErrUnavailable, name, runtime.GOOS)
		}
		mods = append(mods, mod)
	}
	key, ok := keys[binding.Key]
	if !ok {
		return fmt.Errorf("%w: key %q is not supported", ErrUnavailable, binding.Key)
	}

	hotkey := hk.New(mods, key)
	if err := hotkey.Register(); err != nil {
		return fmt.Errorf("%w: failed to register %s: %v", ErrUnavailable, binding.Text, err)
	}

	logger.Info("Push-to-talk hotkey registered", zap.String("binding", binding.Text))

	go func() {
		defer func() {
			if err := hotkey.Unregister(); err != nil {
				logger.Warn("Failed to unregister hotkey", zap.Error(err))
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-hotkey.Keydown():
				logger.Debug("Hotkey pressed")
				onDown()
			case <-hotkey.Keyup():
				logger.Debug("Hotkey released")
				onUp()
			}
		}
	}()

	return nil
}
