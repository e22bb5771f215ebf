package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.DefaultCapacity != 10 {
		t.Errorf("Expected default capacity 10, got %d", config.DefaultCapacity)
	}

	if config.PollInterval != 500*time.Millisecond {
		t.Errorf("Expected default poll interval 500ms, got %s", config.PollInterval)
	}

	if config.Backend != BackendJSON {
		t.Errorf("Expected default backend json, got %s", config.Backend)
	}

	if !config.VerifyIDs {
		t.Error("Expected verify_ids to default to true")
	}

	if config.HistoryLocation != "" {
		t.Errorf("Expected default history location empty, got %s", config.HistoryLocation)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config is invalid: %v", err)
	}
}

func TestConfigManager_LoadNonExistent(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	config, err := cm.Load()
	if err != nil {
		t.Fatalf("Expected no error loading non-existent config, got: %v", err)
	}

	if *config != *DefaultConfig() {
		t.Errorf("Expected default config, got %+v", config)
	}
}

func TestConfigManager_SaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cm := NewConfigManagerWithPath(configPath)

	testConfig := DefaultConfig()
	testConfig.DefaultCapacity = 100
	testConfig.PollInterval = 2 * time.Second
	testConfig.HistoryLocation = "/custom/path"
	testConfig.Backend = BackendSQLite
	testConfig.VerifyIDs = false
	testConfig.MaxPayloadBytes = 1 << 20

	if err := cm.Save(testConfig); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loadedConfig, err := cm.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if *loadedConfig != *testConfig {
		t.Errorf("Loaded config %+v, want %+v", loadedConfig, testConfig)
	}
}

func TestConfigManager_PartialFileKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("default_capacity: 25\npoll_interval: 1s\n"), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := NewConfigManagerWithPath(configPath).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.DefaultCapacity != 25 || config.PollInterval != time.Second {
		t.Errorf("got capacity %d, interval %s", config.DefaultCapacity, config.PollInterval)
	}
	if !config.VerifyIDs || config.Backend != BackendJSON {
		t.Errorf("missing keys lost their defaults: %+v", config)
	}
}

func TestConfigManager_LoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "default_capacity: [1,"},
		{"capacity too large", "default_capacity: 5000"},
		{"bad duration", "poll_interval: soon"},
		{"interval too short", "poll_interval: 1ms"},
		{"bad backend", "backend: mongo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			os.WriteFile(configPath, []byte(tt.content), 0644)

			if _, err := NewConfigManagerWithPath(configPath).Load(); err == nil {
				t.Errorf("Load() of %q succeeded, want error", tt.content)
			}
		})
	}
}

func TestConfigManager_Validation(t *testing.T) {
	cm := NewConfigManagerWithPath(filepath.Join(t.TempDir(), "config.yaml"))

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{"valid config", func(c *Config) { c.DefaultCapacity = 50 }, false, ""},
		{"zero capacity", func(c *Config) { c.DefaultCapacity = 0 }, true, "default_capacity must be between 1 and 1000"},
		{"negative capacity", func(c *Config) { c.DefaultCapacity = -5 }, true, "default_capacity must be between 1 and 1000"},
		{"excessive capacity", func(c *Config) { c.DefaultCapacity = 1500 }, true, "default_capacity must be between 1 and 1000"},
		{"slow poll", func(c *Config) { c.PollInterval = time.Hour }, true, "poll_interval must be between 50ms and 1m0s"},
		{"negative payload limit", func(c *Config) { c.MaxPayloadBytes = -1 }, true, "max_payload_bytes cannot be negative"},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := cm.Save(config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %s, but got none", tt.name)
				} else if tt.errorMsg != "" && err.Error() != "invalid configuration: "+tt.errorMsg {
					t.Errorf("Expected error message '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error for %s: %v", tt.name, err)
			}
		})
	}
}

func TestConfigManager_Update(t *testing.T) {
	cm := NewConfigManagerWithPath(filepath.Join(t.TempDir(), "config.yaml"))

	tests := []struct {
		name        string
		key         string
		value       string
		expectError bool
	}{
		{"valid default_capacity", "default_capacity", "100", false},
		{"kebab-case key", "default-capacity", "42", false},
		{"valid poll_interval", "poll_interval", "250ms", false},
		{"valid verify_ids false", "verify_ids", "false", false},
		{"valid paste_keystroke true", "paste_keystroke", "true", false},
		{"valid history_location", "history_location", "/custom/path", false},
		{"valid backend", "backend", "sqlite", false},
		{"valid max_payload_bytes", "max_payload_bytes", "4096", false},
		{"valid log_level", "log_level", "debug", false},
		{"invalid key", "invalid-key", "value", true},
		{"invalid default_capacity", "default_capacity", "not-a-number", true},
		{"out of range default_capacity", "default_capacity", "0", true},
		{"invalid verify_ids", "verify_ids", "maybe", true},
		{"invalid poll_interval", "poll_interval", "10", true},
		{"invalid backend", "backend", "postgres", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cm.Update(tt.key, tt.value)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %s, but got none", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %s: %v", tt.name, err)
			}

			retrievedValue, err := cm.Get(tt.key)
			if err != nil {
				t.Errorf("Failed to get value after update: %v", err)
			} else if retrievedValue != tt.value {
				t.Errorf("Expected retrieved value %s, got %s", tt.value, retrievedValue)
			}
		})
	}
}

func TestConfigManager_List(t *testing.T) {
	cm := NewConfigManagerWithPath(filepath.Join(t.TempDir(), "config.yaml"))

	values, err := cm.List()
	if err != nil {
		t.Fatalf("Failed to list default config: %v", err)
	}

	for _, key := range Keys() {
		if _, exists := values[key]; !exists {
			t.Errorf("Expected key %s to exist in list output", key)
		}
	}
	if len(values) != len(Keys()) {
		t.Errorf("List() has %d keys, Keys() has %d", len(values), len(Keys()))
	}

	if values["default_capacity"] != "10" {
		t.Errorf("Expected default default_capacity 10, got %s", values["default_capacity"])
	}
	if values["poll_interval"] != "500ms" {
		t.Errorf("Expected default poll_interval 500ms, got %s", values["poll_interval"])
	}
	if values["history_location"] != "[default]" {
		t.Errorf("Expected default history_location [default], got %s", values["history_location"])
	}
}

func TestConfigManager_GetConfigPath(t *testing.T) {
	configPath := "/test/config/path.yaml"
	cm := NewConfigManagerWithPath(configPath)

	if cm.GetConfigPath() != configPath {
		t.Errorf("Expected config path %s, got %s", configPath, cm.GetConfigPath())
	}
}

func TestNewConfigManager(t *testing.T) {
	cm, err := NewConfigManager()
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	configPath := cm.GetConfigPath()
	if !filepath.IsAbs(configPath) {
		t.Errorf("Expected absolute config path, got %s", configPath)
	}

	if !strings.HasSuffix(configPath, filepath.Join(".config", "cliphist", "config.yaml")) {
		t.Errorf("Expected config path to end with .config/cliphist/config.yaml, got %s", configPath)
	}
}
