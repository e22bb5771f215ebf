package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yiblet/cliphist/internal/appfs"
	"github.com/yiblet/cliphist/internal/clipboard"
	"github.com/yiblet/cliphist/internal/clipboard/execboard"
	"github.com/yiblet/cliphist/internal/clipboard/sysboard"
	"github.com/yiblet/cliphist/internal/config"
	"github.com/yiblet/cliphist/internal/dispatch"
	"github.com/yiblet/cliphist/internal/history"
	"github.com/yiblet/cliphist/internal/keybind"
	"github.com/yiblet/cliphist/internal/logging"
	"github.com/yiblet/cliphist/internal/manager"
	"github.com/yiblet/cliphist/internal/store"
	"github.com/yiblet/cliphist/internal/store/dbstore"
	"github.com/yiblet/cliphist/internal/store/filestore"
	"github.com/yiblet/cliphist/internal/tui"
)

// Env carries the process environment. Zero fields use the real one.
type Env struct {
	Home      string
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Clipboard clipboard.Clipboard
	Paster    clipboard.Paster
}

// CLI handles the command-line interface
type CLI struct {
	fs         *appfs.AppFS
	cfgManager *config.ConfigManager
	cfg        *config.Config
	logger     *slog.Logger
	logFile    *os.File
	env        Env

	manager  *manager.Manager
	bindings *keybind.Bindings
	board    clipboard.Clipboard
}

// New creates a CLI with default settings
func New() (*CLI, error) {
	return NewWithArgs(nil)
}

// NewWithArgs creates a CLI honouring the global flags in args
func NewWithArgs(args *Args) (*CLI, error) {
	return NewWithEnv(args, Env{})
}

// NewWithEnv creates a CLI for args in env
func NewWithEnv(args *Args, env Env) (*CLI, error) {
	if args == nil {
		args = &Args{}
	}
	if env.Stdin == nil {
		env.Stdin = os.Stdin
	}
	if env.Stdout == nil {
		env.Stdout = os.Stdout
	}
	if env.Stderr == nil {
		env.Stderr = os.Stderr
	}

	var fs *appfs.AppFS
	if env.Home != "" {
		fs = appfs.NewWithHome(env.Home)
	} else {
		var err error
		if fs, err = appfs.New(); err != nil {
			return nil, err
		}
	}

	cfgPath := fs.ConfigPath()
	if args.ConfigPath != nil {
		cfgPath = *args.ConfigPath
	}
	cm := config.NewConfigManagerWithPath(cfgPath)
	cfg, err := cm.Load()
	if err != nil {
		return nil, err
	}

	if args.HistoryPath != nil {
		cfg.HistoryLocation = *args.HistoryPath
	}
	if args.LogLevel != nil {
		if err := logging.ValidateLevel(*args.LogLevel); err != nil {
			return nil, err
		}
		cfg.LogLevel = *args.LogLevel
	}
	if args.LogFormat != nil {
		if err := logging.ValidateFormat(*args.LogFormat); err != nil {
			return nil, err
		}
		cfg.LogFormat = *args.LogFormat
	}

	c := &CLI{fs: fs, cfgManager: cm, cfg: cfg, env: env}

	// The picker owns the terminal, so its logs go to a file.
	logOut := env.Stderr
	if args.UI != nil || !args.HasCommand() {
		if f, err := openLogFile(fs.LogPath()); err == nil {
			c.logFile = f
			logOut = f
		}
	}
	c.logger = logging.Setup(logOut, logging.ParseFormat(cfg.LogFormat), logging.ParseLevel(cfg.LogLevel))

	return c, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// Close releases the history store and log file
func (c *CLI) Close() error {
	var err error
	if c.manager != nil {
		err = c.manager.Close()
	}
	if c.logFile != nil {
		c.logFile.Close()
	}
	return err
}

// historyPath returns where the history lives for the configured backend.
func (c *CLI) historyPath() string {
	return c.fs.HistoryPath(c.cfg.HistoryLocation, c.cfg.Backend == config.BackendSQLite)
}

func (c *CLI) keybindingsPath() string {
	return c.fs.KeybindingsPath(c.cfg.KeybindingsLocation)
}

// openPersister opens the configured history backend.
func (c *CLI) openPersister() (store.Persister, error) {
	path := c.historyPath()
	switch c.cfg.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		st, err := dbstore.NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create database store: %w", err)
		}
		return st, nil
	default:
		return filestore.New(path), nil
	}
}

// openManager loads the history on first use.
func (c *CLI) openManager() (*manager.Manager, error) {
	if c.manager != nil {
		return c.manager, nil
	}

	p, err := c.openPersister()
	if err != nil {
		return nil, err
	}

	// Only migrate into the default location.
	if c.cfg.HistoryLocation == "" {
		m, err := c.fs.MigrateLegacy(p, c.keybindingsPath())
		if err != nil {
			c.logger.Warn("legacy migration failed", "err", err)
		} else if m.History > 0 || m.Keybindings {
			c.logger.Info("migrated legacy clipboard manager data", "entries", m.History, "keybindings", m.Keybindings)
		}
	}

	policy := store.PolicyVerify
	if !c.cfg.VerifyIDs {
		policy = store.PolicyTrust
	}
	mgr, err := manager.New(manager.Options{
		Persister:       p,
		Policy:          policy,
		DefaultCapacity: c.cfg.DefaultCapacity,
		MaxPayload:      c.cfg.MaxPayloadBytes,
		Logger:          c.logger,
	})
	if err != nil {
		p.Close()
		return nil, err
	}
	c.manager = mgr
	return mgr, nil
}

func (c *CLI) loadBindings() (*keybind.Bindings, error) {
	if c.bindings != nil {
		return c.bindings, nil
	}
	b, err := keybind.Load(c.keybindingsPath(), c.logger)
	if err != nil {
		c.logger.Warn("failed to write default key bindings", "err", err)
	}
	c.bindings = b
	return b, nil
}

// clipboardBackend returns the native clipboard, falling back to the
// command-line tools when no display connection is possible.
func (c *CLI) clipboardBackend() (clipboard.Clipboard, error) {
	if c.board != nil {
		return c.board, nil
	}
	if c.env.Clipboard != nil {
		c.board = c.env.Clipboard
		return c.board, nil
	}

	sys, err := sysboard.New()
	if err == nil {
		c.board = sys
		return c.board, nil
	}
	if exec := execboard.New(); exec.IsSupported() {
		c.logger.Warn("native clipboard unavailable, using command-line tools (text only)", "err", err)
		c.board = exec
		return c.board, nil
	}
	return nil, err
}

// sink returns where restored entries are written. On Linux, text goes
// through xclip or xsel when present so it outlives this process.
func (c *CLI) sink() (clipboard.Sink, error) {
	board, err := c.clipboardBackend()
	if err != nil {
		return nil, err
	}
	if c.env.Clipboard == nil && runtime.GOOS == "linux" {
		if exec := execboard.New(); exec.IsSupported() {
			return clipboard.Router{Text: exec, Other: board}, nil
		}
	}
	return board, nil
}

func (c *CLI) paster() clipboard.Paster {
	if c.env.Paster != nil {
		return c.env.Paster
	}
	return execboard.NewPaster()
}

func (c *CLI) dispatcher(opts ...dispatch.Option) (*dispatch.Dispatcher, error) {
	mgr, err := c.openManager()
	if err != nil {
		return nil, err
	}
	sink, err := c.sink()
	if err != nil {
		return nil, err
	}
	opts = append([]dispatch.Option{dispatch.WithLogger(c.logger)}, opts...)
	return dispatch.New(mgr, sink, opts...), nil
}

func (c *CLI) printf(format string, a ...any) {
	fmt.Fprintf(c.env.Stdout, format, a...)
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Watch != nil:
		return c.executeWatch(args.Watch)
	case args.List != nil:
		return c.executeList(args.List)
	case args.Get != nil:
		return c.executeGet(args.Get)
	case args.Paste != nil:
		return c.executePaste(args.Paste)
	case args.Clear != nil:
		return c.executeClear(args.Clear)
	case args.Capacity != nil:
		return c.executeCapacity(args.Capacity)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	case args.Keys != nil:
		return c.executeKeys(args.Keys)
	case args.UI != nil:
		return c.launchTUI(args.UI)
	default:
		return c.launchTUI(&UICmd{})
	}
}

// executeWatch handles the 'cliphist watch' command
func (c *CLI) executeWatch(cmd *WatchCmd) error {
	mgr, err := c.openManager()
	if err != nil {
		return err
	}
	board, err := c.clipboardBackend()
	if err != nil {
		return fmt.Errorf("failed to open clipboard: %w", err)
	}

	interval := c.cfg.PollInterval
	if cmd.Interval != nil {
		interval = *cmd.Interval
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.printf("Watching %s every %s (Ctrl+C to stop)\n", board.Name(), interval)
	return c.watch(ctx, mgr, board, interval)
}

func (c *CLI) watch(ctx context.Context, mgr *manager.Manager, src clipboard.Source, interval time.Duration) error {
	return mgr.Run(ctx, src, interval)
}

// startWatch polls src in the background. The returned function stops the
// loop and waits for an in-flight poll to finish.
func (c *CLI) startWatch(mgr *manager.Manager, src clipboard.Source, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.watch(ctx, mgr, src, interval)
	}()
	return func() {
		cancel()
		<-done
	}
}

// executeList handles the 'cliphist list' command
func (c *CLI) executeList(cmd *ListCmd) error {
	mgr, err := c.openManager()
	if err != nil {
		return err
	}

	entries := mgr.Entries()
	if len(entries) == 0 {
		c.printf("History is empty.\n")
		return nil
	}
	if cmd.Limit > 0 && cmd.Limit < len(entries) {
		entries = entries[:cmd.Limit]
	}

	now := time.Now()
	for i, e := range entries {
		c.printf("%3d  %-5s  %4s  %s\n", i, e.Kind(), tui.FormatAge(now.Sub(e.CapturedAt())), e.Preview(history.PreviewLength))
	}
	return nil
}

// executeGet handles the 'cliphist get' command
func (c *CLI) executeGet(cmd *GetCmd) error {
	if cmd.Clipboard {
		d, err := c.dispatcher()
		if err != nil {
			return err
		}
		e, err := d.Restore(cmd.Index)
		if err != nil {
			return fmt.Errorf("failed to get item at index %d: %w", cmd.Index, err)
		}
		c.printf("Copied to clipboard: %s\n", e.Preview(history.PreviewLength))
		return nil
	}

	mgr, err := c.openManager()
	if err != nil {
		return err
	}
	e, err := mgr.Restore(cmd.Index)
	if err != nil {
		return fmt.Errorf("failed to get item at index %d: %w", cmd.Index, err)
	}

	if cmd.File != nil {
		if err := os.WriteFile(*cmd.File, e.Payload(), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		c.printf("Written to %s: %s\n", *cmd.File, e.Preview(history.PreviewLength))
		return nil
	}

	_, err = c.env.Stdout.Write(e.Payload())
	return err
}

// executePaste handles the 'cliphist paste' command
func (c *CLI) executePaste(cmd *PasteCmd) error {
	var opts []dispatch.Option
	if c.cfg.PasteKeystroke && !cmd.NoKeystroke {
		opts = append(opts, dispatch.WithPaster(c.paster()))
	}
	d, err := c.dispatcher(opts...)
	if err != nil {
		return err
	}
	e, err := d.PasteLast()
	if errors.Is(err, history.ErrEmpty) {
		return errors.New("history is empty")
	}
	if err != nil {
		return err
	}
	c.logger.Debug("pasted most recent entry", "id", e.Fingerprint().Short())
	return nil
}

// executeClear handles the 'cliphist clear' command
func (c *CLI) executeClear(cmd *ClearCmd) error {
	mgr, err := c.openManager()
	if err != nil {
		return err
	}

	n := mgr.Len()
	if n == 0 {
		c.printf("History is already empty.\n")
		return nil
	}

	if !cmd.Force {
		c.printf("This will delete %d item(s) from history. Continue? [y/N]: ", n)
		response, _ := bufio.NewReader(c.env.Stdin).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			c.printf("Cancelled.\n")
			return nil
		}
	}

	mgr.ClearHistory()
	if err := mgr.LastPersistError(); err != nil {
		return fmt.Errorf("history cleared in memory but not saved: %w", err)
	}
	c.printf("Cleared %d item(s) from history.\n", n)
	return nil
}

// executeCapacity handles the 'cliphist capacity' command
func (c *CLI) executeCapacity(cmd *CapacityCmd) error {
	mgr, err := c.openManager()
	if err != nil {
		return err
	}

	if cmd.N == nil {
		c.printf("%d\n", mgr.Capacity())
		return nil
	}

	before := mgr.Len()
	if err := mgr.SetCapacity(*cmd.N); err != nil {
		return err
	}
	if err := mgr.LastPersistError(); err != nil {
		return fmt.Errorf("capacity changed in memory but not saved: %w", err)
	}
	c.printf("Capacity set to %d", *cmd.N)
	if removed := before - mgr.Len(); removed > 0 {
		c.printf(" (removed %d oldest item(s))", removed)
	}
	c.printf("\n")
	return nil
}

// executeConfig handles the 'cliphist config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.cfgManager.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		c.printf("%s\n", value)
		return nil
	case cmd.Set != nil:
		if err := c.cfgManager.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		c.printf("Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil
	case cmd.List != nil:
		values, err := c.cfgManager.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}
		c.printf("Current configuration (%s):\n", c.cfgManager.GetConfigPath())
		for _, key := range config.Keys() {
			c.printf("  %s = %s\n", key, values[key])
		}
		return nil
	default:
		return fmt.Errorf("no config subcommand specified")
	}
}

// executeKeys handles the 'cliphist keys' command
func (c *CLI) executeKeys(cmd *KeysCmd) error {
	b, err := c.loadBindings()
	if err != nil {
		return err
	}

	switch {
	case cmd.Set != nil:
		if err := b.Set(dispatch.Action(cmd.Set.Action), cmd.Set.Combo); err != nil {
			return err
		}
		if err := b.Save(); err != nil {
			return err
		}
		combo, _ := b.Combo(dispatch.Action(cmd.Set.Action))
		c.printf("Bound %s to %s\n", cmd.Set.Action, combo)
		return nil
	case cmd.Reset != nil:
		b.Reset()
		if err := b.Save(); err != nil {
			return err
		}
		c.printf("Key bindings reset to defaults.\n")
		return nil
	default:
		for _, bind := range b.List() {
			c.printf("  %-14s %s\n", bind.Action, bind.Combo)
		}
		for _, name := range b.Unknown() {
			c.printf("  %-14s (unknown action, ignored)\n", name)
		}
		return nil
	}
}

// launchTUI starts the interactive picker
func (c *CLI) launchTUI(cmd *UICmd) error {
	mgr, err := c.openManager()
	if err != nil {
		return err
	}
	bindings, err := c.loadBindings()
	if err != nil {
		return err
	}
	d, err := c.dispatcher()
	if err != nil {
		return err
	}

	opts := tui.Options{
		History:    mgr,
		Dispatcher: d,
		Bindings:   bindings,
		Logger:     c.logger,
	}

	if cmd.Watch {
		board, err := c.clipboardBackend()
		if err != nil {
			return fmt.Errorf("failed to open clipboard: %w", err)
		}
		stop := c.startWatch(mgr, board, c.cfg.PollInterval)
		defer stop()
	} else {
		opts.Reload = mgr.Reload
	}

	model := tui.NewAppModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	if model.Restored != nil {
		c.printf("Copied to clipboard: %s\n", model.Restored.Preview(history.PreviewLength))
	}
	return nil
}
