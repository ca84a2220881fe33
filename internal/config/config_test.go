package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/blogwiki/internal/logging"
	"github.com/abelbrown/blogwiki/internal/scroll"
	"github.com/charmbracelet/log"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if cfg.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.PageSize)
	}
	if len(cfg.Sources) == 0 {
		t.Error("expected at least one default source")
	}
	if err := validate(cfg); err != nil {
		t.Errorf("embedded defaults do not validate: %v", err)
	}
}

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.PageSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("defaults not written: %v", err)
	}
	if !strings.Contains(string(data), "page_size") {
		t.Error("written file does not look like the default config")
	}
}

func TestLoadWarnsWhenDefaultsCannotBeWritten(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger
	logging.Logger = log.New(&buf)
	t.Cleanup(func() { logging.Logger = prev })

	// A dangling link into a missing directory reads as absent and
	// cannot be written through.
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.Symlink(filepath.Join(dir, "missing", "config.yaml"), path); err != nil {
		t.Skipf("symlink: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 10 {
		t.Errorf("PageSize = %d, want the default 10", cfg.PageSize)
	}
	if !strings.Contains(buf.String(), "writing default config") {
		t.Errorf("expected a warning, log was %q", buf.String())
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "page_size: 4\nscroll:\n  header_dead_zone: 2\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 4 {
		t.Errorf("PageSize = %d, want 4", cfg.PageSize)
	}
	if cfg.Scroll.HeaderDeadZone != 2 {
		t.Errorf("HeaderDeadZone = %d, want 2", cfg.Scroll.HeaderDeadZone)
	}
	if cfg.Scroll.DetailTopThreshold != 25 {
		t.Errorf("DetailTopThreshold = %d, want default 25", cfg.Scroll.DetailTopThreshold)
	}
	if cfg.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", cfg.Theme)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "page_size: 4\n")
	t.Setenv(EnvPageSize, "7")
	t.Setenv(EnvDatabase, "/tmp/other.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 7 {
		t.Errorf("PageSize = %d, want 7", cfg.PageSize)
	}
	if cfg.DatabasePath() != "/tmp/other.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath())
	}
}

func TestLoadBadEnvPageSize(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv(EnvPageSize, "ten")

	if _, err := Load(path); err == nil {
		t.Error("expected error for non-numeric page size")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "page_size: [\n")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	good := Source{Name: "Blog", Type: "rss", URL: "https://example.com/feed"}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, "page_size"},
		{"negative threshold", func(c *Config) { c.Scroll.ListTopThreshold = -1 }, "scroll"},
		{"bad timeout", func(c *Config) { c.Import.Timeout = "soon" }, "import.timeout"},
		{"missing name", func(c *Config) { c.Sources[0].Name = "" }, "name is required"},
		{"missing url", func(c *Config) { c.Sources[0].URL = "" }, "url is required"},
		{"ftp url", func(c *Config) { c.Sources[0].URL = "ftp://example.com/feed" }, "http or https"},
		{"unknown type", func(c *Config) { c.Sources[0].Type = "json" }, "unknown type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{PageSize: 10, Sources: []Source{good}}
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnabledSources(t *testing.T) {
	cfg := &Config{
		Sources: []Source{
			{Name: "A", Type: "rss", URL: "https://a", Enabled: true},
			{Name: "B", Enabled: false},
			{Name: "C", Type: "atom", URL: "https://c", Enabled: true},
		},
	}
	enabled := cfg.EnabledSources()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled sources, got %d", len(enabled))
	}
	if enabled[0].Name != "A" || enabled[1].Name != "C" || enabled[1].Type != "atom" {
		t.Errorf("unexpected enabled sources: %+v", enabled)
	}
}

func TestImportDurations(t *testing.T) {
	cfg := &Config{Import: ImportConfig{Timeout: "5s", Interval: "10m"}}
	if got := cfg.ImportTimeout(); got != 5*time.Second {
		t.Errorf("ImportTimeout = %v", got)
	}
	if got := cfg.ImportInterval(); got != 10*time.Minute {
		t.Errorf("ImportInterval = %v", got)
	}

	cfg.Import = ImportConfig{}
	if got := cfg.ImportTimeout(); got != 30*time.Second {
		t.Errorf("default ImportTimeout = %v, want 30s", got)
	}
	if got := cfg.ImportInterval(); got != 0 {
		t.Errorf("default ImportInterval = %v, want 0", got)
	}
}

func TestScrollConfigs(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	list, detail := cfg.ListScroll(), cfg.DetailScroll()
	if list.ScrollTopThreshold != 15 || detail.ScrollTopThreshold != 25 {
		t.Errorf("thresholds = %d/%d, want 15/25", list.ScrollTopThreshold, detail.ScrollTopThreshold)
	}
	if list.HeaderDeadZone != 5 || detail.HeaderDeadZone != 5 {
		t.Errorf("dead zones = %d/%d, want 5", list.HeaderDeadZone, detail.HeaderDeadZone)
	}
}

func TestScrollConfigsExplicitZero(t *testing.T) {
	path := writeConfig(t, "scroll:\n  list_top_threshold: 0\n  detail_top_threshold: 0\n  header_dead_zone: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.ListScroll(); got != (scroll.Config{}) {
		t.Errorf("ListScroll = %+v, want zero thresholds", got)
	}
	if got := cfg.DetailScroll(); got != (scroll.Config{}) {
		t.Errorf("DetailScroll = %+v, want zero thresholds", got)
	}
}

func TestDatabasePathDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.DatabasePath(); !strings.HasSuffix(got, filepath.Join("blogwiki", "blogwiki.db")) {
		t.Errorf("DatabasePath = %q", got)
	}
}
