// Package shortcut parses and canonicalizes the immersive-mode shortcut
// string grammar from spec §6: modifier ("+" modifier)* "+" key.
package shortcut

import (
	"strings"

	"github.com/brightloop/screencap/internal/coreerr"
)

// Modifier is a bitmask over the accepted modifier keys.
type Modifier uint8

const (
	ModCommand Modifier = 1 << iota
	ModControl
	ModOption
	ModShift
)

var modifierAliases = map[string]Modifier{
	"command": ModCommand,
	"cmd":     ModCommand,
	"control": ModControl,
	"ctrl":    ModControl,
	"option":  ModOption,
	"alt":     ModOption,
	"shift":   ModShift,
}

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModControl, "Control"},
	{ModOption, "Option"},
	{ModShift, "Shift"},
	{ModCommand, "Command"},
}

var namedKeys = map[string]string{
	"space":     "Space",
	"tab":       "Tab",
	"return":    "Return",
	"enter":     "Return",
	"escape":    "Escape",
	"esc":       "Escape",
	"backspace": "Backspace",
	"delete":    "Delete",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"f1": "F1", "f2": "F2", "f3": "F3", "f4": "F4",
	"f5": "F5", "f6": "F6", "f7": "F7", "f8": "F8",
	"f9": "F9", "f10": "F10", "f11": "F11", "f12": "F12",
}

// Parsed is the canonical decoded form of a shortcut string.
type Parsed struct {
	ModifierMask Modifier
	Key          string
}

// Parse decodes s per the grammar in spec §6. Grammar-rejecting input
// returns a coreerr.Settings error, matching spec §8's round-trip property.
func Parse(s string) (Parsed, error) {
	parts := strings.Split(s, "+")
	if len(parts) < 2 {
		return Parsed{}, coreerr.New(coreerr.Settings, "shortcut must have at least one modifier and a key: "+s)
	}

	var mask Modifier
	for _, p := range parts[:len(parts)-1] {
		norm := strings.ToLower(strings.TrimSpace(p))
		m, ok := modifierAliases[norm]
		if !ok {
			return Parsed{}, coreerr.New(coreerr.Settings, "unknown modifier: "+p)
		}
		mask |= m
	}

	keyRaw := strings.TrimSpace(parts[len(parts)-1])
	if keyRaw == "" {
		return Parsed{}, coreerr.New(coreerr.Settings, "missing key in shortcut: "+s)
	}

	key, err := canonicalKey(keyRaw)
	if err != nil {
		return Parsed{}, err
	}

	return Parsed{ModifierMask: mask, Key: key}, nil
}

func canonicalKey(raw string) (string, error) {
	lower := strings.ToLower(raw)
	if named, ok := namedKeys[lower]; ok {
		return named, nil
	}
	if len(raw) == 1 && isAlphanumeric(raw[0]) {
		return strings.ToUpper(raw), nil
	}
	return "", coreerr.New(coreerr.Settings, "unrecognized key: "+raw)
}

func isAlphanumeric(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// String renders Parsed back to its canonical textual form, used both for
// display and for the round-trip property in spec §8.
func (p Parsed) String() string {
	var parts []string
	for _, m := range modifierNames {
		if p.ModifierMask&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, p.Key)
	return strings.Join(parts, "+")
}
