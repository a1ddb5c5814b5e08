//go:build darwin

package input

import "golang.design/x/hotkey"

// modAlt backs the "alt" token of a push-to-talk combo, which is the
// Option key on macOS.
func modAlt() hotkey.Modifier {
	return hotkey.ModOption
}

// modSuper backs the "cmd", "super" and "win" tokens, all mapped to the
// Command key on macOS.
func modSuper() hotkey.Modifier {
	return hotkey.ModCmd
}
