// Package config resolves runtime settings from an optional YAML file, an
// optional .env file and REVENUEPRO_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/revenuepro/internal/store"
)

const (
	EnvDB        = "REVENUEPRO_DB"
	EnvLogFile   = "REVENUEPRO_LOG_FILE"
	EnvLogLevel  = "REVENUEPRO_LOG_LEVEL"
	EnvExportDir = "REVENUEPRO_EXPORT_DIR"
	EnvConfig    = "REVENUEPRO_CONFIG"
)

type Config struct {
	DBPath    string `yaml:"db_path"`
	LogFile   string `yaml:"log_file"`
	LogLevel  string `yaml:"log_level"`
	ExportDir string `yaml:"export_dir"`
}

// Defaults places everything under the user config dir, next to the database.
func Defaults() (*Config, error) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return nil, fmt.Errorf("default db path: %w", err)
	}
	dir := filepath.Dir(dbPath)
	home, err := os.UserHomeDir()
	if err != nil {
		home = dir
	}
	return &Config{
		DBPath:    dbPath,
		LogFile:   filepath.Join(dir, "revenuepro.log"),
		LogLevel:  "info",
		ExportDir: home,
	}, nil
}

// DefaultPath returns ~/.config/revenuepro/config.yaml
func DefaultPath() (string, error) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(dbPath), "config.yaml"), nil
}

// Load builds the configuration. A missing YAML or .env file is not an error;
// an unreadable or malformed one is. An empty path means DefaultPath, or
// REVENUEPRO_CONFIG when set.
func Load(path, envFile string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.merge(file)
	return nil
}

func (c *Config) merge(o Config) {
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.ExportDir != "" {
		c.ExportDir = o.ExportDir
	}
}

func (c *Config) applyEnv() {
	c.merge(Config{
		DBPath:    os.Getenv(EnvDB),
		LogFile:   os.Getenv(EnvLogFile),
		LogLevel:  os.Getenv(EnvLogLevel),
		ExportDir: os.Getenv(EnvExportDir),
	})
}

// Save writes c as YAML to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
