// internal/browser/keymap.go
package browser

import (
	"strings"

	"github.com/chromedp/chromedp/kb"
)

// keyNames maps the lowercase key names the model emits to the raw key runes
// the CDP input domain understands.
var keyNames = map[string]string{
	"backspace": kb.Backspace,
	"tab":       kb.Tab,
	"return":    kb.Enter,
	"enter":     kb.Enter,
	"escape":    kb.Escape,
	"space":     " ",
	"pageup":    kb.PageUp,
	"pagedown":  kb.PageDown,
	"end":       kb.End,
	"home":      kb.Home,
	"left":      kb.ArrowLeft,
	"up":        kb.ArrowUp,
	"right":     kb.ArrowRight,
	"down":      kb.ArrowDown,
	"insert":    kb.Insert,
	"delete":    kb.Delete,
	"f1":        kb.F1,
	"f2":        kb.F2,
	"f3":        kb.F3,
	"f4":        kb.F4,
	"f5":        kb.F5,
	"f6":        kb.F6,
	"f7":        kb.F7,
	"f8":        kb.F8,
	"f9":        kb.F9,
	"f10":       kb.F10,
	"f11":       kb.F11,
	"f12":       kb.F12,
}

// ResolveKey translates a model-issued key name into the rune sequence to
// dispatch. Single printable characters pass through unchanged, so "a" in
// "Control+A" types the letter itself.
func ResolveKey(name string) string {
	trimmed := strings.TrimSpace(name)
	if mapped, ok := keyNames[strings.ToLower(trimmed)]; ok {
		return mapped
	}
	return trimmed
}
