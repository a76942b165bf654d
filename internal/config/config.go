// Package config loads the ingestsim configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ingestsim/internal/scenario"
)

const (
	// DefaultPath is read when --config is not given. A missing file there
	// is not an error.
	DefaultPath = "/etc/ingestsim/config.yaml"

	// DefaultIngestDir is the directory the broadcast scheduler watches.
	DefaultIngestDir = "/var/spool/ingestsim/ingest"

	DefaultWatchDebounce = 250 * time.Millisecond
)

// LogConfig controls the rotating log file. File logging is off when
// Directory is empty.
type LogConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// Config is the file configuration. Command-line flags override it.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	IngestDir string `yaml:"ingest_dir"`

	// Journal is the SQLite journal path. Empty disables the journal.
	Journal string `yaml:"journal"`

	// Scenarios is a catalog file replacing the built-in catalog.
	Scenarios string `yaml:"scenarios"`

	LargeFileSize int64         `yaml:"large_file_size"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	Logs LogConfig `yaml:"logs"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:       scenario.DefaultDataDir,
		IngestDir:     DefaultIngestDir,
		LargeFileSize: scenario.DefaultLargeFileSize,
		WatchDebounce: DefaultWatchDebounce,
		Logs: LogConfig{
			MaxSizeMB:  25,
			MaxAgeDays: 7,
			MaxBackups: 5,
		},
	}
}

// Load reads the file at path over the defaults. Unknown keys are rejected.
// Relative paths in the file are resolved against the file's directory.
//
// A missing file returns an error wrapping os.ErrNotExist.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}

	base := filepath.Dir(path)
	resolve := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Clean(filepath.Join(base, p))
	}
	cfg.DataDir = resolve(cfg.DataDir)
	cfg.IngestDir = resolve(cfg.IngestDir)
	cfg.Journal = resolve(cfg.Journal)
	cfg.Scenarios = resolve(cfg.Scenarios)
	cfg.Logs.Directory = resolve(cfg.Logs.Directory)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that have no usable default.
func (c Config) Validate() error {
	switch {
	case c.IngestDir == "":
		return errors.New("ingest_dir must not be empty")
	case c.LargeFileSize <= 0:
		return fmt.Errorf("large_file_size must be positive, got %d", c.LargeFileSize)
	case c.WatchDebounce < 0:
		return fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce)
	case c.Logs.MaxSizeMB < 0 || c.Logs.MaxAgeDays < 0 || c.Logs.MaxBackups < 0:
		return errors.New("logs limits must not be negative")
	}
	return nil
}
