package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wailsapp/wails/v2/pkg/menu/keys"
)

// Modifier names, in X11 keybinding spelling.
const (
	ModControl = "Control"
	ModShift   = "Shift"
	ModAlt     = "Mod1"
	ModSuper   = "Mod4"
)

var modifierAliases = map[string]string{
	"control": ModControl,
	"ctrl":    ModControl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"mod1":    ModAlt,
	"option":  ModAlt,
	"super":   ModSuper,
	"win":     ModSuper,
	"mod4":    ModSuper,
	"cmd":     ModSuper,
}

// namedKeys are the non-character keys a binding may use, keyed by lower case.
var namedKeys = map[string]string{
	"escape": "Escape",
	"pause":  "Pause",
	"insert": "Insert",
	"home":   "Home",
	"end":    "End",
}

// KeySequence is a parsed global keybinding such as "Control-Shift-f".
type KeySequence struct {
	Modifiers []string
	// Key is a lower case letter or digit, "F1".."F24", or a named key.
	Key string
}

// ParseKeySequence parses dash separated modifiers followed by one key.
func ParseKeySequence(s string) (KeySequence, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return KeySequence{}, fmt.Errorf("key sequence %q has no key", s)
	}

	var seq KeySequence
	seen := make(map[string]bool)
	for _, p := range parts[:len(parts)-1] {
		mod, ok := modifierAliases[strings.ToLower(p)]
		if !ok {
			return KeySequence{}, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
		if !seen[mod] {
			seen[mod] = true
			seq.Modifiers = append(seq.Modifiers, mod)
		}
	}

	key, err := normalizeKey(parts[len(parts)-1])
	if err != nil {
		return KeySequence{}, fmt.Errorf("key sequence %q: %w", s, err)
	}
	seq.Key = key
	return seq, nil
}

func normalizeKey(k string) (string, error) {
	if len(k) == 1 {
		c := strings.ToLower(k)[0]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			return string(c), nil
		}
		return "", fmt.Errorf("unsupported key %q", k)
	}
	if n, ok := functionKeyNumber(k); ok {
		return "F" + strconv.Itoa(n), nil
	}
	if named, ok := namedKeys[strings.ToLower(k)]; ok {
		return named, nil
	}
	return "", fmt.Errorf("unsupported key %q", k)
}

// functionKeyNumber returns n for "F<n>" with n in 1..24.
func functionKeyNumber(k string) (int, bool) {
	if len(k) < 2 || (k[0] != 'F' && k[0] != 'f') {
		return 0, false
	}
	n, err := strconv.Atoi(k[1:])
	if err != nil || n < 1 || n > 24 {
		return 0, false
	}
	return n, true
}

// HasModifier reports whether mod is part of the sequence.
func (k KeySequence) HasModifier(mod string) bool {
	for _, m := range k.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

// String returns the sequence in X11 keybinding syntax.
func (k KeySequence) String() string {
	return strings.Join(append(append([]string{}, k.Modifiers...), k.Key), "-")
}

// Accelerator converts the sequence for use on a menu item.
func (k KeySequence) Accelerator() *keys.Accelerator {
	accel := &keys.Accelerator{Key: strings.ToLower(k.Key)}
	for _, m := range k.Modifiers {
		switch m {
		case ModControl:
			accel.Modifiers = append(accel.Modifiers, keys.ControlKey)
		case ModShift:
			accel.Modifiers = append(accel.Modifiers, keys.ShiftKey)
		case ModAlt:
			accel.Modifiers = append(accel.Modifiers, keys.OptionOrAltKey)
		case ModSuper:
			accel.Modifiers = append(accel.Modifiers, keys.CmdOrCtrlKey)
		}
	}
	return accel
}

// HotkeyRegistrar binds system wide shortcuts.
type HotkeyRegistrar interface {
	Register(seq KeySequence, fn func()) error
	Close()
}
