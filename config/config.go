// Package config loads go-bookmarks settings from a TOML or YAML file,
// an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	bookmarks "github.com/anatolykoptev/go-bookmarks"
	"github.com/anatolykoptev/go-bookmarks/memory"
)

// Config holds all go-bookmarks configuration.
type Config struct {
	Memory  MemoryConfig  `toml:"memory" yaml:"memory"`
	Twitter TwitterConfig `toml:"twitter" yaml:"twitter"`
	Daemon  DaemonConfig  `toml:"daemon" yaml:"daemon"`
	Capture CaptureConfig `toml:"capture" yaml:"capture"`
	Ledger  LedgerConfig  `toml:"ledger" yaml:"ledger"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// MemoryConfig holds memory API settings.
type MemoryConfig struct {
	APIKey  string `toml:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// TwitterConfig tunes the bookmarks crawl.
type TwitterConfig struct {
	Proxy               string        `toml:"proxy,omitempty" yaml:"proxy,omitempty"`
	OperationID         string        `toml:"operation_id,omitempty" yaml:"operation_id,omitempty"`
	ContainerTag        string        `toml:"container_tag" yaml:"container_tag"`
	RateLimitWait       time.Duration `toml:"rate_limit_wait" yaml:"rate_limit_wait"`
	RateLimitMaxWait    time.Duration `toml:"rate_limit_max_wait,omitempty" yaml:"rate_limit_max_wait,omitempty"`
	RateLimitMaxRetries int           `toml:"rate_limit_max_retries,omitempty" yaml:"rate_limit_max_retries,omitempty"`
	PageDelay           time.Duration `toml:"page_delay" yaml:"page_delay"`
	MaxPages            int           `toml:"max_pages,omitempty" yaml:"max_pages,omitempty"`
}

// DaemonConfig holds the background HTTP server settings.
type DaemonConfig struct {
	Addr      string `toml:"addr" yaml:"addr"`
	TabBuffer int    `toml:"tab_buffer" yaml:"tab_buffer"`
}

// CaptureConfig controls the playwright-driven browser used to observe
// x.com traffic.
type CaptureConfig struct {
	Enabled     bool   `toml:"enabled" yaml:"enabled"`
	Headless    bool   `toml:"headless" yaml:"headless"`
	StartURL    string `toml:"start_url" yaml:"start_url"`
	UserDataDir string `toml:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty"`
}

// LedgerConfig locates the run history database.
type LedgerConfig struct {
	Path string `toml:"path,omitempty" yaml:"path,omitempty"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Memory: MemoryConfig{
			BaseURL: memory.DefaultBaseURL,
		},
		Twitter: TwitterConfig{
			ContainerTag:  bookmarks.DefaultContainerTag,
			RateLimitWait: 60 * time.Second,
			PageDelay:     time.Second,
		},
		Daemon: DaemonConfig{
			Addr:      "127.0.0.1:8788",
			TabBuffer: 64,
		},
		Capture: CaptureConfig{
			StartURL: "https://x.com/i/bookmarks",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-bookmarks")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "go-bookmarks")
}

// DefaultPath returns the full path to the default config file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path, returning defaults if it doesn't exist.
// Files ending in .yaml or .yml are parsed as YAML, everything else as TOML.
// Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := unmarshal(path, data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// LoadEnvFiles loads .env files into the process environment. Missing files
// are ignored; existing variables are not overwritten.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Save writes cfg to path in the format implied by its extension.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate reports settings that make an import impossible.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Memory.APIKey) == "" {
		return errors.New("memory api key is not set (BOOKMARKS_API_KEY or memory.api_key)")
	}
	if c.Twitter.RateLimitMaxWait > 0 && c.Twitter.RateLimitMaxWait < c.Twitter.RateLimitWait {
		return fmt.Errorf("rate_limit_max_wait %s is below rate_limit_wait %s",
			c.Twitter.RateLimitMaxWait, c.Twitter.RateLimitWait)
	}
	return nil
}

// Importer converts the twitter section into the importer's config.
func (c Config) Importer() bookmarks.Config {
	return bookmarks.Config{
		Proxy:               c.Twitter.Proxy,
		RateLimitWait:       c.Twitter.RateLimitWait,
		RateLimitMaxWait:    c.Twitter.RateLimitMaxWait,
		RateLimitMaxRetries: c.Twitter.RateLimitMaxRetries,
		PageDelay:           c.Twitter.PageDelay,
		MaxPages:            c.Twitter.MaxPages,
		DefaultContainerTag: c.Twitter.ContainerTag,
		OperationID:         c.Twitter.OperationID,
	}
}

// LedgerPath returns the configured ledger path or the default one.
func (c Config) LedgerPath() string {
	if c.Ledger.Path != "" {
		return c.Ledger.Path
	}
	return filepath.Join(Dir(), "ledger.db")
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return toml.Unmarshal(data, cfg)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// applyEnv overrides file values with BOOKMARKS_* variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("BOOKMARKS_API_KEY"); v != "" {
		cfg.Memory.APIKey = v
	}
	if v := os.Getenv("BOOKMARKS_API_URL"); v != "" {
		cfg.Memory.BaseURL = v
	}
	if v := os.Getenv("BOOKMARKS_PROXY"); v != "" {
		cfg.Twitter.Proxy = v
	}
	if v := os.Getenv("BOOKMARKS_ADDR"); v != "" {
		cfg.Daemon.Addr = v
	}
	if v := os.Getenv("BOOKMARKS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
