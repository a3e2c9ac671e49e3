//go:build hotkey

package hotkey

import hk "golang.design/x/hotkey"

var modifiers = map[string]hk.Modifier{
	"ctrl":  hk.ModCtrl,
	"shift": hk.ModShift,
	"alt":   hk.Mod1,
	"super": hk.Mod4,
}
