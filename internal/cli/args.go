package cli

import (
	"fmt"
	"time"
)

// Args represents the top-level command structure
type Args struct {
	ConfigPath  *string `arg:"--config" help:"Configuration file (default ~/.config/cliphist/config.yaml)"`
	HistoryPath *string `arg:"--history" help:"History file, overrides history_location"`
	LogLevel    *string `arg:"--log-level" help:"debug, info, warn or error"`
	LogFormat   *string `arg:"--log-format" help:"auto, text or json"`

	UI       *UICmd       `arg:"subcommand:ui" help:"Browse the history interactively (default)"`
	Watch    *WatchCmd    `arg:"subcommand:watch" help:"Poll the clipboard and record history"`
	List     *ListCmd     `arg:"subcommand:list" help:"Print the history"`
	Get      *GetCmd      `arg:"subcommand:get" help:"Print, save or copy an entry"`
	Paste    *PasteCmd    `arg:"subcommand:paste" help:"Copy the most recent entry and send the paste keystroke"`
	Clear    *ClearCmd    `arg:"subcommand:clear" help:"Clear the history"`
	Capacity *CapacityCmd `arg:"subcommand:capacity" help:"Show or set the history capacity"`
	Config   *ConfigCmd   `arg:"subcommand:config" help:"Manage configuration"`
	Keys     *KeysCmd     `arg:"subcommand:keys" help:"Manage key bindings"`
}

// UICmd represents the 'cliphist ui' command
type UICmd struct {
	Watch bool `arg:"-w,--watch" help:"Also record clipboard changes while the picker is open"`
}

// WatchCmd represents the 'cliphist watch' command
type WatchCmd struct {
	Interval *time.Duration `arg:"-i,--interval" help:"Poll interval, overrides poll_interval"`
}

// ListCmd represents the 'cliphist list' command
type ListCmd struct {
	Limit int `arg:"-n,--limit" help:"Show at most this many entries (0 = all)"`
}

// GetCmd represents the 'cliphist get' command
type GetCmd struct {
	Index     int     `arg:"positional,required" help:"History index (0 = most recent)"`
	File      *string `arg:"positional" help:"Output file (optional)"`
	Clipboard bool    `arg:"-c,--clipboard" help:"Copy to clipboard"`
}

// PasteCmd represents the 'cliphist paste' command
type PasteCmd struct {
	NoKeystroke bool `arg:"--no-keystroke" help:"Only copy, do not send the paste keystroke"`
}

// ClearCmd represents the 'cliphist clear' command
type ClearCmd struct {
	Force bool `arg:"-f,--force" help:"Skip confirmation prompt"`
}

// CapacityCmd represents the 'cliphist capacity' command
type CapacityCmd struct {
	N *int `arg:"positional" help:"New capacity (optional)"`
}

// ConfigCmd represents the 'cliphist config' command
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Get a configuration value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Set a configuration value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"List all configuration values"`
}

// ConfigGetCmd represents the 'cliphist config get' command
type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key"`
}

// ConfigSetCmd represents the 'cliphist config set' command
type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key"`
	Value string `arg:"positional,required" help:"Configuration value"`
}

// ConfigListCmd represents the 'cliphist config list' command
type ConfigListCmd struct{}

// KeysCmd represents the 'cliphist keys' command
type KeysCmd struct {
	List  *KeysListCmd  `arg:"subcommand:list" help:"List key bindings"`
	Set   *KeysSetCmd   `arg:"subcommand:set" help:"Bind an action to a key combination"`
	Reset *KeysResetCmd `arg:"subcommand:reset" help:"Restore the default key bindings"`
}

// KeysListCmd represents the 'cliphist keys list' command
type KeysListCmd struct{}

// KeysSetCmd represents the 'cliphist keys set' command
type KeysSetCmd struct {
	Action string `arg:"positional,required" help:"activate, paste_last or clear_history"`
	Combo  string `arg:"positional,required" help:"Key combination, e.g. Ctrl+Alt+V"`
}

// KeysResetCmd represents the 'cliphist keys reset' command
type KeysResetCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "cliphist - clipboard history with restore and paste"
}

// Version returns the program version
func (Args) Version() string {
	return "cliphist 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  cliphist watch &                 # Record clipboard changes
  cliphist                         # Browse history interactively
  cliphist list -n 5               # Show the five most recent entries
  cliphist get 0                   # Print the most recent entry
  cliphist get -c 2                # Copy the third entry back to the clipboard
  cliphist get 1 image.png         # Save an entry to a file
  cliphist paste                   # Bind to a desktop shortcut for paste-last

Desktop shortcuts are bound to commands: activate runs 'cliphist ui',
paste_last runs 'cliphist paste' and clear_history runs 'cliphist clear -f'.`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	switch {
	case args.Watch != nil:
		return args.Watch.Validate()
	case args.List != nil:
		return args.List.Validate()
	case args.Get != nil:
		return args.Get.Validate()
	case args.Capacity != nil:
		return args.Capacity.Validate()
	}
	return nil
}

// Validate validates watch command arguments
func (w *WatchCmd) Validate() error {
	if w.Interval != nil && *w.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}

// Validate validates list command arguments
func (l *ListCmd) Validate() error {
	if l.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	return nil
}

// Validate validates get command arguments
func (g *GetCmd) Validate() error {
	if g.Index < 0 {
		return fmt.Errorf("index must be non-negative")
	}
	if g.File != nil && g.Clipboard {
		return fmt.Errorf("cannot specify both file and clipboard output")
	}
	return nil
}

// Validate validates capacity command arguments
func (c *CapacityCmd) Validate() error {
	if c.N != nil && *c.N < 1 {
		return fmt.Errorf("capacity must be at least 1")
	}
	return nil
}

// HasCommand reports whether a subcommand was given.
func (args *Args) HasCommand() bool {
	return args.UI != nil || args.Watch != nil || args.List != nil || args.Get != nil ||
		args.Paste != nil || args.Clear != nil || args.Capacity != nil ||
		args.Config != nil || args.Keys != nil
}
