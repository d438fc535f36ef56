// Package config loads the applaunch configuration file and resolves the
// XDG directories the launcher keeps its state in.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfig overrides the configuration file location.
const EnvConfig = "APPLAUNCH_CONFIG"

// Config holds user preferences. Zero values are replaced by defaults.
type Config struct {
	// Terminal is the command prefix used for terminal applications. The
	// entry's command line is appended as a single argument.
	Terminal []string `yaml:"terminal"`
	// Socket overrides $NIRI_SOCKET.
	Socket string `yaml:"socket,omitempty"`
	// IPCTimeout bounds dial and round trip of every compositor request.
	IPCTimeout time.Duration `yaml:"ipc_timeout"`
	// CacheDir overrides $XDG_CACHE_HOME/applaunch.
	CacheDir      string        `yaml:"cache_dir,omitempty"`
	FallbackIcon  string        `yaml:"fallback_icon"`
	IconCacheSize int           `yaml:"icon_cache_size"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
	// Limit caps the rows printed by query; 0 prints everything.
	Limit int `yaml:"limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Terminal:      []string{"ghostty", "-c"},
		IPCTimeout:    2 * time.Second,
		FallbackIcon:  "application-x-executable",
		IconCacheSize: 512,
		WatchDebounce: 500 * time.Millisecond,
	}
}

// Dir returns the applaunch config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/applaunch if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "applaunch"), nil
}

// Path returns the config file location: $APPLAUNCH_CONFIG when set,
// otherwise config.yaml inside Dir.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return expandPath(p), nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/applaunch, defaulting to
// ~/.cache/applaunch.
func DefaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "applaunch"), nil
}

// Load reads the config file at path. A missing file yields the defaults.
// Unknown keys are rejected so typos do not pass silently.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.hydrateDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) hydrateDefaults() {
	def := Default()
	if len(c.Terminal) == 0 {
		c.Terminal = def.Terminal
	}
	if c.IPCTimeout == 0 {
		c.IPCTimeout = def.IPCTimeout
	}
	if c.FallbackIcon == "" {
		c.FallbackIcon = def.FallbackIcon
	}
	if c.IconCacheSize == 0 {
		c.IconCacheSize = def.IconCacheSize
	}
	if c.WatchDebounce == 0 {
		c.WatchDebounce = def.WatchDebounce
	}
	if c.CacheDir != "" {
		c.CacheDir = expandPath(c.CacheDir)
	}
	if c.Socket != "" {
		c.Socket = expandPath(c.Socket)
	}
}

// Validate rejects values the launcher cannot work with.
func (c *Config) Validate() error {
	if len(c.Terminal) == 0 || c.Terminal[0] == "" {
		return errors.New("terminal: command must not be empty")
	}
	if c.IPCTimeout < 0 {
		return fmt.Errorf("ipc_timeout: must be positive, got %s", c.IPCTimeout)
	}
	if c.IconCacheSize < 0 {
		return fmt.Errorf("icon_cache_size: must be positive, got %d", c.IconCacheSize)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce: must be positive, got %s", c.WatchDebounce)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit: must not be negative, got %d", c.Limit)
	}
	return nil
}

// ResolveCacheDir returns CacheDir or the XDG default.
func (c *Config) ResolveCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	return DefaultCacheDir()
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return filepath.Clean(path)
}
