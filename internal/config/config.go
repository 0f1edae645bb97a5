// Package config loads the optional flywaysum.yaml project file and the
// environment used to reach the Flyway history database.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const ConfigFileName = "flywaysum.yaml"

// Environment variables consulted for the connection string, in order.
const (
	EnvConnection  = "FLYWAYSUM_CONNECTION"
	EnvDatabaseURL = "DATABASE_URL"
)

type HistoryConfig struct {
	Schema string `yaml:"schema"`
	Table  string `yaml:"table"`
}

type ProjectConfig struct {
	Workers      int           `yaml:"workers"`
	MaxLength    int           `yaml:"max_length"`
	BackupSuffix string        `yaml:"backup_suffix"`
	Connection   string        `yaml:"connection"`
	History      HistoryConfig `yaml:"history"`
	Timeout      string        `yaml:"timeout"`
}

// Default returns the configuration used when no file is present.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{}
	cfg.applyDefaults()
	return cfg
}

// Load reads flywaysum.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a config file. Unset fields take their defaults; unknown
// keys are rejected. ${VAR} references in connection are expanded.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %v", flywaysum.ErrInvalidConfig, path, err)
	}

	cfg.Connection = os.ExpandEnv(cfg.Connection)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func (c *ProjectConfig) applyDefaults() {
	if c.Workers == 0 {
		c.Workers = flywaysum.DefaultWorkers
	}
	if c.MaxLength == 0 {
		c.MaxLength = flywaysum.DefaultMaxCommentLength
	}
	if c.BackupSuffix == "" {
		c.BackupSuffix = flywaysum.DefaultBackupSuffix
	}
	if c.History.Schema == "" {
		c.History.Schema = flywaysum.DefaultHistorySchema
	}
	if c.History.Table == "" {
		c.History.Table = flywaysum.DefaultHistoryTable
	}
}

// Validate checks value ranges. Errors wrap flywaysum.ErrInvalidConfig.
func (c *ProjectConfig) Validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", flywaysum.ErrInvalidConfig, c.Workers)
	case c.MaxLength < 1 || c.MaxLength > flywaysum.DefaultMaxCommentLength:
		return fmt.Errorf("%w: max_length must be between 1 and %d, got %d",
			flywaysum.ErrInvalidConfig, flywaysum.DefaultMaxCommentLength, c.MaxLength)
	case strings.ContainsAny(c.BackupSuffix, `/\`):
		return fmt.Errorf("%w: backup_suffix must not contain path separators: %q", flywaysum.ErrInvalidConfig, c.BackupSuffix)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout. An empty value means no timeout.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: invalid timeout %q", flywaysum.ErrInvalidConfig, c.Timeout)
	}
	return d, nil
}

// LoadEnv loads .env from dir if present. Variables already set in the
// process environment win.
func LoadEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ResolveConnection picks the connection string: flag value first, then the
// config file, then FLYWAYSUM_CONNECTION, then DATABASE_URL.
func ResolveConnection(flagValue string, cfg *ProjectConfig) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil && cfg.Connection != "" {
		return cfg.Connection
	}
	if v := os.Getenv(EnvConnection); v != "" {
		return v
	}
	return os.Getenv(EnvDatabaseURL)
}
