//go:build linux

package input

import "golang.design/x/hotkey"

// modAlt backs the "alt" token of a push-to-talk combo. X11 exposes Alt
// as Mod1.
func modAlt() hotkey.Modifier {
	return hotkey.Mod1
}

// modSuper backs the "cmd", "super" and "win" tokens. X11 exposes the
// Super key as Mod4.
func modSuper() hotkey.Modifier {
	return hotkey.Mod4
}
