package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yiblet/cliphist/internal/history"
	"github.com/yiblet/cliphist/internal/logging"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

const (
	MaxCapacity     = 1000
	MinPollInterval = 50 * time.Millisecond
	MaxPollInterval = time.Minute
)

// Config represents the cliphist configuration
type Config struct {
	DefaultCapacity     int           `yaml:"default_capacity"`
	PollInterval        time.Duration `yaml:"poll_interval"`
	HistoryLocation     string        `yaml:"history_location,omitempty"`
	KeybindingsLocation string        `yaml:"keybindings_location,omitempty"`
	Backend             string        `yaml:"backend"`
	VerifyIDs           bool          `yaml:"verify_ids"`
	PasteKeystroke      bool          `yaml:"paste_keystroke"`
	MaxPayloadBytes     int           `yaml:"max_payload_bytes"`
	LogLevel            string        `yaml:"log_level"`
	LogFormat           string        `yaml:"log_format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultCapacity: history.DefaultCapacity,
		PollInterval:    500 * time.Millisecond,
		Backend:         BackendJSON,
		VerifyIDs:       true,
		PasteKeystroke:  runtime.GOOS == "linux",
		LogLevel:        "info",
		LogFormat:       string(logging.FormatAuto),
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	var errs []error
	if c.DefaultCapacity < 1 || c.DefaultCapacity > MaxCapacity {
		errs = append(errs, fmt.Errorf("default_capacity must be between 1 and %d", MaxCapacity))
	}
	if c.PollInterval < MinPollInterval || c.PollInterval > MaxPollInterval {
		errs = append(errs, fmt.Errorf("poll_interval must be between %s and %s", MinPollInterval, MaxPollInterval))
	}
	if c.Backend != BackendJSON && c.Backend != BackendSQLite {
		errs = append(errs, fmt.Errorf("backend must be %q or %q", BackendJSON, BackendSQLite))
	}
	if c.MaxPayloadBytes < 0 {
		errs = append(errs, errors.New("max_payload_bytes cannot be negative"))
	}
	if err := logging.ValidateLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := logging.ValidateFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a configuration manager for ~/.config/cliphist/config.yaml
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".config", "cliphist", "config.yaml")
	return &ConfigManager{
		configPath: configPath,
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't exist.
// Keys missing from the file keep their defaults.
func (cm *ConfigManager) Load() (*Config, error) {
	data, err := os.ReadFile(cm.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// normalizeKey accepts both default_capacity and default-capacity.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.Load()
	if err != nil {
		return err
	}
	if err := config.set(normalizeKey(key), value); err != nil {
		return err
	}
	return cm.Save(config)
}

func (c *Config) set(key, value string) error {
	switch key {
	case "default_capacity":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		c.DefaultCapacity = n
	case "max_payload_bytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		c.MaxPayloadBytes = n
	case "poll_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		c.PollInterval = d
	case "verify_ids", "paste_keystroke":
		var b bool
		switch value {
		case "true":
			b = true
		case "false":
			b = false
		default:
			return fmt.Errorf("invalid boolean value for %s: %s (must be 'true' or 'false')", key, value)
		}
		if key == "verify_ids" {
			c.VerifyIDs = b
		} else {
			c.PasteKeystroke = b
		}
	case "history_location":
		c.HistoryLocation = value
	case "keybindings_location":
		c.KeybindingsLocation = value
	case "backend":
		c.Backend = strings.ToLower(value)
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// values renders every key as shown by Get and List.
func (c *Config) values() map[string]string {
	orDefault := func(s string) string {
		if s == "" {
			return "[default]"
		}
		return s
	}
	return map[string]string{
		"default_capacity":     strconv.Itoa(c.DefaultCapacity),
		"poll_interval":        c.PollInterval.String(),
		"history_location":     orDefault(c.HistoryLocation),
		"keybindings_location": orDefault(c.KeybindingsLocation),
		"backend":              c.Backend,
		"verify_ids":           strconv.FormatBool(c.VerifyIDs),
		"paste_keystroke":      strconv.FormatBool(c.PasteKeystroke),
		"max_payload_bytes":    strconv.Itoa(c.MaxPayloadBytes),
		"log_level":            c.LogLevel,
		"log_format":           c.LogFormat,
	}
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	config, err := cm.Load()
	if err != nil {
		return "", err
	}

	v, ok := config.values()[normalizeKey(key)]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return v, nil
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}
	return config.values(), nil
}

// Keys returns the configuration keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, 10)
	for k := range DefaultConfig().values() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
