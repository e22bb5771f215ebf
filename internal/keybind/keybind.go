// Package keybind loads and saves the key-binding document, a flat JSON
// object mapping action names to key combinations.
package keybind

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/yiblet/cliphist/internal/dispatch"
)

// Defaults returns the default combination for each bindable action.
func Defaults() map[dispatch.Action]string {
	return map[dispatch.Action]string{
		dispatch.ActionActivate:     "Ctrl+Alt+V",
		dispatch.ActionPasteLast:    "Ctrl+Shift+V",
		dispatch.ActionClearHistory: "Ctrl+Alt+C",
	}
}

// Binding is one action and its combination.
type Binding struct {
	Action dispatch.Action
	Combo  Combo
}

// Bindings is the key-binding document.
type Bindings struct {
	path   string
	raw    map[string]string
	combos map[dispatch.Action]Combo
	logger *slog.Logger
}

// Load reads the document at path. If it is missing or unparseable the
// defaults are used and written back; a failure to write them is returned
// alongside the usable bindings. A combination that does not parse falls
// back to that action's default. Unknown actions are kept but ignored.
func Load(path string, logger *slog.Logger) (*Bindings, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bindings{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if err == nil {
		err = json.Unmarshal(data, &b.raw)
	}
	if err != nil || b.raw == nil {
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("key bindings unreadable, using defaults", "path", path, "err", err)
		}
		b.reset()
		if saveErr := b.Save(); saveErr != nil {
			return b, saveErr
		}
		return b, nil
	}

	b.resolve()
	return b, nil
}

// resolve parses raw into combos, filling in defaults.
func (b *Bindings) resolve() {
	b.combos = make(map[dispatch.Action]Combo, len(dispatch.Actions))
	defaults := Defaults()
	for _, a := range dispatch.Actions {
		s, ok := b.raw[string(a)]
		if ok {
			c, err := ParseCombo(s)
			if err == nil {
				b.combos[a] = c
				continue
			}
			b.logger.Warn("invalid key binding, using default", "action", string(a), "combo", s, "err", err)
		}
		c, _ := ParseCombo(defaults[a])
		b.combos[a] = c
	}
}

func (b *Bindings) reset() {
	b.raw = make(map[string]string)
	for a, s := range Defaults() {
		b.raw[string(a)] = s
	}
	b.resolve()
}

// Path returns the document location.
func (b *Bindings) Path() string { return b.path }

// Combo returns the combination bound to a.
func (b *Bindings) Combo(a dispatch.Action) (Combo, bool) {
	c, ok := b.combos[a]
	return c, ok
}

// List returns the bindable actions with their combinations.
func (b *Bindings) List() []Binding {
	out := make([]Binding, 0, len(dispatch.Actions))
	for _, a := range dispatch.Actions {
		out = append(out, Binding{Action: a, Combo: b.combos[a]})
	}
	return out
}

// Unknown returns action names in the document that nothing handles, sorted.
func (b *Bindings) Unknown() []string {
	var out []string
	for name := range b.raw {
		if _, ok := Defaults()[dispatch.Action(name)]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Set binds a to combo. It does not save.
func (b *Bindings) Set(a dispatch.Action, combo string) error {
	if _, ok := Defaults()[a]; !ok {
		return fmt.Errorf("%w: %q", dispatch.ErrUnknownAction, a)
	}
	c, err := ParseCombo(combo)
	if err != nil {
		return err
	}
	b.raw[string(a)] = c.String()
	b.combos[a] = c
	return nil
}

// Reset restores the defaults, dropping unknown actions. It does not save.
func (b *Bindings) Reset() {
	b.reset()
}

// Lookup returns the action bound to a bubbletea key string.
func (b *Bindings) Lookup(teaKey string) (dispatch.Action, bool) {
	if teaKey == "" {
		return "", false
	}
	for _, a := range dispatch.Actions {
		if b.combos[a].TeaKey() == teaKey {
			return a, true
		}
	}
	return "", false
}

// Save writes the document as indented JSON.
func (b *Bindings) Save() error {
	data, err := json.MarshalIndent(b.raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode key bindings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("failed to create key bindings directory: %w", err)
	}
	if err := os.WriteFile(b.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write key bindings: %w", err)
	}
	return nil
}
