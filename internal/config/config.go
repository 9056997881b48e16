// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for wayne.
//
// Configuration is read from a TOML file, a .env file in the working
// directory, and WAYNE_* environment variables, with sensible defaults and
// validation.
//
// Configuration file locations (in order of precedence):
//   - WAYNE_* environment variables (a .env file is loaded into the environment first)
//   - ~/.wayne/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/wayne-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete wayne configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// API is the remote Wayne Security API.
	API APIConfig `toml:"api" json:"api"`

	// Storage holds the local key/value store that keeps the session token.
	Storage StorageConfig `toml:"storage" json:"storage"`

	Log LogConfig `toml:"log" json:"log"`

	UI UIConfig `toml:"ui" json:"ui"`

	// Users maps a username to the role shown when the token carries no
	// role claim. Unknown usernames fall back to the least privileged role.
	Users map[string]string `toml:"users" json:"users"`
}

// APIConfig contains settings for the HTTP API client.
type APIConfig struct {
	// URL is the base URL of the API server.
	URL string `toml:"url" json:"url"`
	// TimeoutSeconds bounds every request.
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds"`
	// RateLimit is the client-side request rate in requests per second.
	// Zero disables limiting.
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	// Burst is the limiter bucket size.
	Burst int `toml:"burst" json:"burst"`
	// MaxResponseBytes caps response bodies.
	MaxResponseBytes int64 `toml:"max_response_bytes" json:"max_response_bytes"`
}

// StorageConfig contains settings for the local token store.
type StorageConfig struct {
	// Path is the sqlite database file. Empty means ~/.wayne/storage.db.
	Path string `toml:"path" json:"path"`
	// Watch enables detection of logins and logouts made by another wayne process.
	Watch bool `toml:"watch" json:"watch"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
	// File receives log output. Empty means ~/.wayne/wayne.log for the TUI
	// and stderr for CLI commands.
	File string `toml:"file" json:"file"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is one of auto, dark, light.
	Theme string `toml:"theme" json:"theme"`
	// RefreshSeconds triggers a periodic dashboard reload. Zero disables it.
	RefreshSeconds int `toml:"refresh_seconds" json:"refresh_seconds"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultAPIURL           = "http://127.0.0.1:8001"
	DefaultTimeoutSeconds   = 15
	DefaultRateLimit        = 10.0
	DefaultBurst            = 5
	DefaultMaxResponseBytes = 10 * 1024 * 1024
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultTheme            = "auto"
)

// DefaultUsers is the username directory shipped with the dashboard.
func DefaultUsers() map[string]string {
	return map[string]string{
		"funcionario": "funcionario",
		"gerente":     "gerente",
		"admin":       "admin",
	}
}

// Default returns a Config with every field set to its default.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			URL:              DefaultAPIURL,
			TimeoutSeconds:   DefaultTimeoutSeconds,
			RateLimit:        DefaultRateLimit,
			Burst:            DefaultBurst,
			MaxResponseBytes: DefaultMaxResponseBytes,
		},
		Storage: StorageConfig{Watch: true},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		UI: UIConfig{
			Theme:          DefaultTheme,
			RefreshSeconds: 30,
		},
		Users: DefaultUsers(),
	}
}

// Timeout returns the API timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the wayne configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("WAYNE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".wayne"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StoragePath resolves the storage database path.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "storage.db"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads a .env file from the working directory into the process
// environment. A missing file is not an error. Variables already set win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load loads configuration from ~/.wayne/config.toml, falling back to
// defaults. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPathTOML()
	if err != nil {
		return finish(Default())
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// Encode renders cfg as the TOML text SaveTOML writes.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# wayne configuration file\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}

	// SECURITY: the config may carry the users directory; keep it private.
	if err := util.WriteFileAtomic(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"text": true, "json": true}
	validThemes     = map[string]bool{"auto": true, "dark": true, "light": true}
)

// Validate validates the configuration and returns any errors as ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http or https URL", c.API.URL),
		})
	}

	if c.API.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_seconds",
			Message: "must be positive",
		})
	}

	if c.API.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.rate_limit",
			Message: "must not be negative",
		})
	}

	if c.API.Burst < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.burst",
			Message: "must not be negative",
		})
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: text, json", c.Log.Format),
		})
	}

	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if c.UI.RefreshSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.refresh_seconds",
			Message: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.API.URL == "" {
		c.API.URL = DefaultAPIURL
	}
	c.API.URL = strings.TrimRight(c.API.URL, "/")
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.API.RateLimit > 0 && c.API.Burst == 0 {
		c.API.Burst = DefaultBurst
	}
	if c.API.MaxResponseBytes <= 0 {
		c.API.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.UI.Theme == "" {
		c.UI.Theme = DefaultTheme
	}
	if c.Users == nil {
		c.Users = DefaultUsers()
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - WAYNE_API_URL: overrides api.url
//   - WAYNE_TIMEOUT: overrides api.timeout_seconds
//   - WAYNE_RATE_LIMIT: overrides api.rate_limit
//   - WAYNE_LOG_LEVEL: overrides log.level
//   - WAYNE_LOG_FILE: overrides log.file
//   - WAYNE_STORAGE_PATH: overrides storage.path
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("WAYNE_API_URL"); v != "" {
		c.API.URL = v
	}

	if v := os.Getenv("WAYNE_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSeconds = n
		}
	}

	if v := os.Getenv("WAYNE_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.API.RateLimit = f
		}
	}

	if v := os.Getenv("WAYNE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if v := os.Getenv("WAYNE_LOG_FILE"); v != "" {
		c.Log.File = v
	}

	if v := os.Getenv("WAYNE_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
}

// =============================================================================
// KEY ACCESS
// =============================================================================

// Keys lists the dot-separated keys accepted by Set. users.<name> is also
// accepted for any username.
func Keys() []string {
	return []string{
		"api.url", "api.timeout_seconds", "api.rate_limit", "api.burst", "api.max_response_bytes",
		"log.level", "log.format", "log.file",
		"storage.path", "storage.watch",
		"ui.theme", "ui.refresh_seconds",
	}
}

// Set assigns value to the field named by a dot-separated key such as
// "api.url" or "users.bruce". Values are parsed for the field's type but
// not validated; call Validate afterwards.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if name, ok := strings.CutPrefix(key, "users."); ok {
		if name == "" {
			return fmt.Errorf("config key %q: missing username", key)
		}
		if c.Users == nil {
			c.Users = map[string]string{}
		}
		if value == "" {
			delete(c.Users, name)
			return nil
		}
		c.Users[name] = strings.ToLower(value)
		return nil
	}

	var err error
	switch key {
	case "api.url":
		c.API.URL = strings.TrimRight(value, "/")
	case "api.timeout_seconds":
		c.API.TimeoutSeconds, err = strconv.Atoi(value)
	case "api.rate_limit":
		c.API.RateLimit, err = strconv.ParseFloat(value, 64)
	case "api.burst":
		c.API.Burst, err = strconv.Atoi(value)
	case "api.max_response_bytes":
		c.API.MaxResponseBytes, err = strconv.ParseInt(value, 10, 64)
	case "log.level":
		c.Log.Level = strings.ToLower(value)
	case "log.format":
		c.Log.Format = strings.ToLower(value)
	case "log.file":
		c.Log.File = value
	case "storage.path":
		c.Storage.Path = value
	case "storage.watch":
		c.Storage.Watch, err = strconv.ParseBool(value)
	case "ui.theme":
		c.UI.Theme = strings.ToLower(value)
	case "ui.refresh_seconds":
		c.UI.RefreshSeconds, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	if err != nil {
		return fmt.Errorf("config key %s: invalid value %q", key, value)
	}
	return nil
}

// String returns a JSON rendering of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
