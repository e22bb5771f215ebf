package keybind

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrBadCombo is returned for a key combination that cannot be parsed.
var ErrBadCombo = errors.New("invalid key combination")

// Modifier is a set of modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModSuper
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModSuper, "Super"},
}

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
	"super":   ModSuper,
	"meta":    ModSuper,
	"cmd":     ModSuper,
	"win":     ModSuper,
}

// namedKeys maps lower-case key names to their canonical spelling.
var namedKeys = map[string]string{
	"enter": "Enter", "return": "Enter",
	"tab": "Tab", "space": "Space",
	"esc": "Esc", "escape": "Esc",
	"backspace": "Backspace", "delete": "Delete", "del": "Delete",
	"insert": "Insert", "home": "Home", "end": "End",
	"pgup": "PgUp", "pageup": "PgUp", "pgdown": "PgDown", "pagedown": "PgDown",
	"up": "Up", "down": "Down", "left": "Left", "right": "Right",
}

// Combo is a key plus the modifiers held with it, such as Ctrl+Alt+V.
type Combo struct {
	Mods Modifier
	Key  string
}

// ParseCombo parses a "+"-separated combination. Modifier names are case
// insensitive; the final element is the key.
func ParseCombo(s string) (Combo, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	if len(parts) == 0 || strings.TrimSpace(s) == "" {
		return Combo{}, fmt.Errorf("%w: empty", ErrBadCombo)
	}

	var c Combo
	for _, p := range parts[:len(parts)-1] {
		mod, ok := modifierAliases[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return Combo{}, fmt.Errorf("%w: unknown modifier %q in %q", ErrBadCombo, p, s)
		}
		if c.Mods&mod != 0 {
			return Combo{}, fmt.Errorf("%w: repeated modifier %q in %q", ErrBadCombo, p, s)
		}
		c.Mods |= mod
	}

	key, err := parseKey(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return Combo{}, fmt.Errorf("%w: %q: %v", ErrBadCombo, s, err)
	}
	c.Key = key
	return c, nil
}

func parseKey(k string) (string, error) {
	if k == "" {
		return "", errors.New("missing key")
	}
	lower := strings.ToLower(k)
	if name, ok := namedKeys[lower]; ok {
		return name, nil
	}
	if len(lower) >= 2 && lower[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(lower[1:], "%d", &n); err == nil && n >= 1 && n <= 20 && fmt.Sprint(n) == lower[1:] {
			return fmt.Sprintf("F%d", n), nil
		}
	}
	if utf8.RuneCountInString(k) == 1 {
		return strings.ToUpper(k), nil
	}
	return "", fmt.Errorf("unknown key %q", k)
}

// Has reports whether all of mods are held.
func (c Combo) Has(mods Modifier) bool {
	return c.Mods&mods == mods
}

// String renders the combination in canonical form, e.g. "Ctrl+Shift+V".
func (c Combo) String() string {
	var b strings.Builder
	for _, m := range modifierNames {
		if c.Has(m.mod) {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(c.Key)
	return b.String()
}

// TeaKey returns the bubbletea key string the combination arrives as in a
// terminal, or "" if a terminal cannot deliver it (any Super combination).
// Terminals do not report Shift alongside Ctrl, so Ctrl+Shift+V arrives as
// ctrl+v.
func (c Combo) TeaKey() string {
	if c.Has(ModSuper) {
		return ""
	}

	var key string
	switch name := c.Key; {
	case utf8.RuneCountInString(name) == 1:
		switch {
		case c.Has(ModCtrl):
			key = "ctrl+" + strings.ToLower(name)
		case c.Has(ModShift):
			key = strings.ToUpper(name)
		default:
			key = strings.ToLower(name)
		}
	case name == "Space":
		key = " "
		if c.Has(ModCtrl) {
			key = "ctrl+@"
		}
	default:
		key = strings.ToLower(name)
		if c.Has(ModShift) {
			key = "shift+" + key
		}
		if c.Has(ModCtrl) {
			key = "ctrl+" + key
		}
	}

	if c.Has(ModAlt) {
		key = "alt+" + key
	}
	return key
}
