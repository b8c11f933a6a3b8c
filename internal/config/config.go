// Package config provides the YAML application configuration, including
// first-run default creation and atomic saves with 0600 permissions.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LogConfig controls logger construction.
type LogConfig struct {
	// Level is a zap level string: debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// Format selects the encoding: "console" or "json".
	Format string `yaml:"format" json:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	// DefaultCalendar is the name of the calendar created and activated at
	// startup so unqualified commands have a target.
	DefaultCalendar string `yaml:"default_calendar" json:"default_calendar"`

	// DefaultTimezone is the IANA zone for the default calendar.
	DefaultTimezone string `yaml:"default_timezone" json:"default_timezone"`

	// ExportDir is where relative export paths are resolved.
	ExportDir string `yaml:"export_dir" json:"export_dir"`

	Log LogConfig `yaml:"log" json:"log"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultCalendar: "default",
		DefaultTimezone: "UTC",
		ExportDir:       ".",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Normalize fills in missing/zero values with defaults so partially filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.DefaultCalendar == "" {
		c.DefaultCalendar = "default"
	}
	if c.DefaultTimezone == "" {
		c.DefaultTimezone = "UTC"
	}
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		c.Log.Format = "console"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there (parent
//     directory created as needed, file mode 0600) and returned.
//   - Otherwise the YAML is unmarshalled and normalized.
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
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with final
// permissions 0600.
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

	tmp, err := os.CreateTemp(dir, ".gocal-config-*.tmp")
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

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
