// Package hotkey binds a global push-to-talk key. Key-down and key-up are
// delivered as an edge pair rather than polled.
//
// The listener needs a desktop session (X11 on Linux) and is only compiled
// with the "hotkey" build tag. Without it Listen reports ErrUnavailable and
// the chat falls back to ctrl+r.
package hotkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnavailable is returned when global hotkeys cannot be used on this platform
var ErrUnavailable = errors.New("global hotkeys are unavailable")

// Binding is a parsed key combination such as "ctrl+shift+space"
type Binding struct {
	Mods []string
	Key  string
	Text string
}

var modifierNames = map[string]bool{
	"ctrl":   true,
	"shift":  true,
	"alt":    true,
	"option": true,
	"cmd":    true,
	"super":  true,
}

var keyAliases = map[string]string{
	"return": "enter",
	"esc":    "escape",
}

// ParseBinding parses a "+"-separated combination of modifiers and one key
func ParseBinding(s string) (Binding, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return Binding{}, errors.New("hotkey binding is empty")
	}

	var binding Binding
	for _, part := range strings.Split(text, "+") {
		part = strings.TrimSpace(part)
		if modifierNames[part] {
			binding.Mods = append(binding.Mods, part)
			continue
		}

		if alias, ok := keyAliases[part]; ok {
			part = alias
		}
		if !isKeyName(part) {
			return Binding{}, fmt.Errorf("unknown key %q in hotkey binding %q", part, s)
		}
		if binding.Key != "" {
			return Binding{}, fmt.Errorf("hotkey binding %q has more than one key", s)
		}
		binding.Key = part
	}

	if binding.Key == "" {
		return Binding{}, fmt.Errorf("hotkey binding %q has no key", s)
	}

	binding.Text = text
	return binding, nil
}

// isKeyName accepts space, enter, escape, tab, digits, letters and f1-f12
func isKeyName(name string) bool {
	switch name {
	case "space", "enter", "escape", "tab":
		return true
	}
	if len(name) == 1 {
		c := name[0]
		return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')
	}
	if digits, ok := strings.CutPrefix(name, "f"); ok && !strings.HasPrefix(digits, "0") {
		n, err := strconv.Atoi(digits)
		return err == nil && n >= 1 && n <= 12
	}
	return false
}
