// Package appfs resolves where cliphist keeps its files and migrates data
// left by the earlier clipboard manager.
package appfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yiblet/cliphist/internal/store"
)

const (
	ConfigDir       = ".config/cliphist"
	ConfigFile      = "config.yaml"
	HistoryFile     = "history.json"
	HistoryDBFile   = "history.db"
	KeybindingsFile = "keybindings.json"
	LogFile         = "cliphist.log"

	LegacyHistoryFile     = ".clipboard_manager_config.json"
	LegacyKeybindingsFile = ".clipboard_manager_keybindings.json"

	migrationMarker = ".migration_complete"
)

// AppFS locates files under the cliphist configuration directory.
type AppFS struct {
	home string
	root string
}

// New returns an AppFS rooted at ~/.config/cliphist.
func New() (*AppFS, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return NewWithHome(homeDir), nil
}

// NewWithHome returns an AppFS for a custom home directory (for testing).
func NewWithHome(home string) *AppFS {
	return &AppFS{home: home, root: filepath.Join(home, ConfigDir)}
}

// Root returns the configuration directory.
func (a *AppFS) Root() string {
	return a.root
}

// Resolve returns the path for a configurable location.
// If location is empty, uses name inside the configuration directory.
// If location is absolute, uses it directly.
// If location is relative, treats it as relative to the configuration directory.
func (a *AppFS) Resolve(location, name string) string {
	switch {
	case location == "":
		return filepath.Join(a.root, name)
	case filepath.IsAbs(location):
		return location
	default:
		return filepath.Join(a.root, location)
	}
}

// HistoryPath returns the history location for a storage backend.
func (a *AppFS) HistoryPath(location string, sqlite bool) string {
	if sqlite {
		return a.Resolve(location, HistoryDBFile)
	}
	return a.Resolve(location, HistoryFile)
}

// KeybindingsPath returns the key-binding document location.
func (a *AppFS) KeybindingsPath(location string) string {
	return a.Resolve(location, KeybindingsFile)
}

// ConfigPath returns the configuration file location.
func (a *AppFS) ConfigPath() string {
	return filepath.Join(a.root, ConfigFile)
}

// LogPath returns the log file used while the picker owns the terminal.
func (a *AppFS) LogPath() string {
	return filepath.Join(a.root, LogFile)
}

// Migration reports what MigrateLegacy did.
type Migration struct {
	History     int // records imported
	Keybindings bool
}

// MigrateLegacy imports the earlier clipboard manager's history and key
// bindings from the home directory. History is only imported into an empty
// persister, and its ids are recomputed since the old ones used another
// digest. Key bindings are copied only if keybindingsPath does not exist.
// A marker file in the configuration directory prevents repeat runs.
func (a *AppFS) MigrateLegacy(p store.Persister, keybindingsPath string) (Migration, error) {
	var m Migration

	marker := filepath.Join(a.root, migrationMarker)
	if _, err := os.Stat(marker); err == nil {
		return m, nil
	}

	legacyHistory := filepath.Join(a.home, LegacyHistoryFile)
	legacyKeys := filepath.Join(a.home, LegacyKeybindingsFile)
	historyExists := exists(legacyHistory)
	keysExist := exists(legacyKeys)
	if !historyExists && !keysExist {
		return m, nil
	}

	if historyExists {
		n, err := migrateHistory(p, legacyHistory)
		if err != nil {
			return m, err
		}
		m.History = n
	}

	if keysExist && !exists(keybindingsPath) {
		data, err := os.ReadFile(legacyKeys)
		if err != nil {
			return m, fmt.Errorf("failed to read legacy key bindings: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(keybindingsPath), 0755); err != nil {
			return m, fmt.Errorf("failed to create key bindings directory: %w", err)
		}
		if err := os.WriteFile(keybindingsPath, data, 0644); err != nil {
			return m, fmt.Errorf("failed to write migrated key bindings: %w", err)
		}
		m.Keybindings = true
	}

	if err := os.MkdirAll(a.root, 0755); err != nil {
		return m, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(marker, []byte("Migration from the clipboard manager completed\n"), 0644); err != nil {
		return m, fmt.Errorf("failed to write migration marker: %w", err)
	}
	return m, nil
}

func migrateHistory(p store.Persister, legacyPath string) (int, error) {
	if _, err := p.Load(); !errors.Is(err, store.ErrNoDocument) {
		// Existing history, or a problem the caller will hit on its own load.
		return 0, nil
	}

	data, err := os.ReadFile(legacyPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read legacy history: %w", err)
	}
	doc, err := store.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("failed to parse legacy history %s: %w", legacyPath, err)
	}

	doc = store.Rekey(doc)
	if err := p.Save(doc); err != nil {
		return 0, fmt.Errorf("failed to save migrated history: %w", err)
	}
	return len(doc.History), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
