// Package config loads the blogwiki YAML configuration from XDG paths.
package config

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/abelbrown/blogwiki/internal/fetch"
	"github.com/abelbrown/blogwiki/internal/logging"
	"github.com/abelbrown/blogwiki/internal/scroll"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "blogwiki"

// Environment overrides.
const (
	EnvDatabase = "BLOGWIKI_DB"
	EnvPageSize = "BLOGWIKI_PAGE_SIZE"
)

// Source is one feed to import.
type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// ScrollConfig holds the scroll thresholds, in terminal lines.
type ScrollConfig struct {
	ListTopThreshold   int `yaml:"list_top_threshold"`
	DetailTopThreshold int `yaml:"detail_top_threshold"`
	HeaderDeadZone     int `yaml:"header_dead_zone"`
}

// ImportConfig tunes feed imports.
type ImportConfig struct {
	Timeout       string  `yaml:"timeout"`
	MaxConcurrent int     `yaml:"max_concurrent"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Interval      string  `yaml:"interval"`
}

// Config is the persistent application configuration.
type Config struct {
	PageSize int          `yaml:"page_size"`
	Database string       `yaml:"database"`
	Theme    string       `yaml:"theme"`
	Scroll   ScrollConfig `yaml:"scroll"`
	Import   ImportConfig `yaml:"import"`
	Sources  []Source     `yaml:"sources"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/blogwiki/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// DefaultDatabasePath returns $XDG_DATA_HOME/blogwiki/blogwiki.db.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, appName, "blogwiki.db")
}

// LogDir is where the dated log files go.
func LogDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads path (DefaultConfigPath when empty) over the embedded defaults,
// so a file only needs the keys it changes. A missing file is created from
// the defaults on first run. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Non-fatal: the embedded defaults still apply.
		if err := writeDefaults(path); err != nil {
			logging.Warn("writing default config", "path", path, "err", err)
		}
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnv() error {
	if db := os.Getenv(EnvDatabase); db != "" {
		c.Database = db
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		c.PageSize = n
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", cfg.PageSize)
	}
	if cfg.Scroll.ListTopThreshold < 0 || cfg.Scroll.DetailTopThreshold < 0 || cfg.Scroll.HeaderDeadZone < 0 {
		return errors.New("scroll thresholds must not be negative")
	}
	if cfg.Import.MaxConcurrent < 0 {
		return fmt.Errorf("import.max_concurrent must not be negative, got %d", cfg.Import.MaxConcurrent)
	}
	for _, d := range []struct{ key, val string }{
		{"import.timeout", cfg.Import.Timeout},
		{"import.interval", cfg.Import.Interval},
	} {
		if d.val == "" {
			continue
		}
		if _, err := time.ParseDuration(d.val); err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
	}

	validTypes := map[string]bool{"rss": true, "atom": true}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: rss, atom)", s.Name, s.Type)
		}
	}
	return nil
}

// DatabasePath resolves the SQLite file, falling back to the XDG data dir.
func (c *Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return DefaultDatabasePath()
}

// EnabledSources returns the sources to import, ready for the fetcher.
func (c *Config) EnabledSources() []fetch.Source {
	var out []fetch.Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, fetch.Source{Name: s.Name, Type: s.Type, URL: s.URL})
		}
	}
	return out
}

// ImportTimeout is the per-source timeout, 30s when unset.
func (c *Config) ImportTimeout() time.Duration {
	d, err := time.ParseDuration(c.Import.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ImportInterval is the background re-import period; zero disables it.
func (c *Config) ImportInterval() time.Duration {
	d, err := time.ParseDuration(c.Import.Interval)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ListScroll is the controller config for the post list.
func (c *Config) ListScroll() scroll.Config {
	return scroll.Config{
		ScrollTopThreshold: c.Scroll.ListTopThreshold,
		HeaderDeadZone:     c.Scroll.HeaderDeadZone,
	}
}

// DetailScroll is the controller config for a single post.
func (c *Config) DetailScroll() scroll.Config {
	return scroll.Config{
		ScrollTopThreshold: c.Scroll.DetailTopThreshold,
		HeaderDeadZone:     c.Scroll.HeaderDeadZone,
	}
}
