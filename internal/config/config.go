// Package config loads and saves the YAML server configuration.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	MonthCellOrderInsertion     = "insertion"
	MonthCellOrderChronological = "chronological"
)

// AuthConfig controls bearer-token verification.
type AuthConfig struct {
	// JWTSecret signs and verifies HS256 owner tokens. The JWT_SECRET
	// environment variable takes precedence when set.
	JWTSecret string `yaml:"jwt_secret" json:"-"`
}

// FeedsConfig controls ICS subscription syncing.
type FeedsConfig struct {
	DefaultSyncIntervalMin int `yaml:"default_sync_interval_min" json:"default_sync_interval_min"`
}

// CalendarConfig controls calendar view projection.
type CalendarConfig struct {
	// MonthCellOrder is "insertion" (native events first, then tasks) or
	// "chronological" (by start time) for month cell truncation.
	MonthCellOrder string `yaml:"month_cell_order" json:"month_cell_order"`

	// MonthCellCapacity is the number of chips shown per month cell before
	// the "+N more" indicator.
	MonthCellCapacity int `yaml:"month_cell_capacity" json:"month_cell_capacity"`
}

// Config is the top-level application configuration.
type Config struct {
	Listen    string `yaml:"listen" json:"listen"`
	DataDir   string `yaml:"data_dir" json:"data_dir"`
	StaticDir string `yaml:"static_dir" json:"static_dir"`

	// Timezone is the IANA zone used as local wall-clock time for all
	// calendar arithmetic. Empty means the process zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	Auth     AuthConfig     `yaml:"auth" json:"auth"`
	Feeds    FeedsConfig    `yaml:"feeds" json:"feeds"`
	Calendar CalendarConfig `yaml:"calendar" json:"calendar"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    ":8099",
		DataDir:   "/data",
		StaticDir: "./static",
		LogLevel:  "info",
		Feeds: FeedsConfig{
			DefaultSyncIntervalMin: 15,
		},
		Calendar: CalendarConfig{
			MonthCellOrder:    MonthCellOrderInsertion,
			MonthCellCapacity: 3,
		},
	}
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.StaticDir == "" {
		c.StaticDir = def.StaticDir
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Feeds.DefaultSyncIntervalMin < 5 {
		c.Feeds.DefaultSyncIntervalMin = def.Feeds.DefaultSyncIntervalMin
	}
	switch c.Calendar.MonthCellOrder {
	case MonthCellOrderInsertion, MonthCellOrderChronological:
	default:
		c.Calendar.MonthCellOrder = MonthCellOrderInsertion
	}
	if c.Calendar.MonthCellCapacity <= 0 {
		c.Calendar.MonthCellCapacity = def.Calendar.MonthCellCapacity
	}
}

// applyEnv overlays environment settings that are never written back.
func (c *Config) applyEnv() {
	if env := os.Getenv("JWT_SECRET"); env != "" {
		c.Auth.JWTSecret = env
	}
}

// Location resolves Timezone, falling back to time.Local when the zone is
// empty or unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads configuration from path. On first run the default config is
// written to path with 0600 permissions and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.applyEnv()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".planner-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
