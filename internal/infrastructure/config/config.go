package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Environment overrides.
const (
	EnvStore     = "TASKPORT_STORE"
	EnvExportDir = "TASKPORT_EXPORT_DIR"
	EnvLogLevel  = "TASKPORT_LOG_LEVEL"
)

// Config is the workspace configuration stored in .taskport/config.yaml.
type Config struct {
	Store     string          `yaml:"store"`
	Database  string          `yaml:"database,omitempty"`
	ExportDir string          `yaml:"export_dir"`
	LogLevel  string          `yaml:"log_level"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Serve     ServeConfig     `yaml:"serve"`
	Webhooks  []WebhookConfig `yaml:"webhooks,omitempty"`
}

// ScheduleConfig drives periodic exports.
type ScheduleConfig struct {
	Cron   string `yaml:"cron"`
	Format string `yaml:"format"`
	Kind   string `yaml:"kind"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// WebhookConfig is an endpoint notified of exports and imports.
type WebhookConfig struct {
	Name       string        `yaml:"name"`
	URL        string        `yaml:"url"`
	Secret     string        `yaml:"secret,omitempty"`
	Events     []string      `yaml:"events,omitempty"` // export, import; empty means both
	MaxRetries int           `yaml:"max_retries,omitempty"`
	RetryDelay time.Duration `yaml:"retry_delay,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Store:     StoreFile,
		ExportDir: "exports",
		LogLevel:  "info",
		Schedule: ScheduleConfig{
			Cron:   "0 0 2 * * *",
			Format: "json",
			Kind:   "projects",
		},
		Serve: ServeConfig{Addr: "127.0.0.1:8089"},
	}
}

// Load reads the workspace config, fills unset keys with defaults and applies
// environment overrides. A missing file yields the defaults.
func Load(root string) (*Config, error) {
	cfg := Default()

	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
		cfg.merge(&fileCfg)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to .taskport/config.yaml.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	repo := storage.NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		return err
	}
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("invalid store %q (expected %s or %s)", c.Store, StoreFile, StoreSQLite)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for i, w := range c.Webhooks {
		u, err := url.Parse(w.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("webhooks[%d]: invalid url %q", i, w.URL)
		}
		for _, e := range w.Events {
			if e != "export" && e != "import" {
				return fmt.Errorf("webhooks[%d]: unknown event %q (expected export or import)", i, e)
			}
		}
	}
	return nil
}

// DatabasePath returns the SQLite file location, relative paths resolved
// against root.
func (c *Config) DatabasePath(root string) string {
	db := c.Database
	if db == "" {
		db = filepath.Join(storage.TaskportDir, storage.DatabaseFile)
	}
	if filepath.IsAbs(db) {
		return db
	}
	return filepath.Join(root, db)
}

// ExportPath returns the export directory, relative paths resolved against root.
func (c *Config) ExportPath(root string) string {
	if filepath.IsAbs(c.ExportDir) {
		return c.ExportDir
	}
	return filepath.Join(root, c.ExportDir)
}

// ParseLevel maps a log level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}

func (c *Config) merge(f *Config) {
	if f.Store != "" {
		c.Store = f.Store
	}
	if f.Database != "" {
		c.Database = f.Database
	}
	if f.ExportDir != "" {
		c.ExportDir = f.ExportDir
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.Schedule.Cron != "" {
		c.Schedule.Cron = f.Schedule.Cron
	}
	if f.Schedule.Format != "" {
		c.Schedule.Format = f.Schedule.Format
	}
	if f.Schedule.Kind != "" {
		c.Schedule.Kind = f.Schedule.Kind
	}
	if f.Serve.Addr != "" {
		c.Serve.Addr = f.Serve.Addr
	}
	if len(f.Webhooks) > 0 {
		c.Webhooks = f.Webhooks
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvStore); v != "" {
		c.Store = strings.ToLower(v)
	}
	if v := os.Getenv(EnvExportDir); v != "" {
		c.ExportDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}
