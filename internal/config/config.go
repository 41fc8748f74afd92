package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Log levels accepted by LogLevel
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

type Config struct {
	ShiftsPath   string `yaml:"ShiftsPath"`
	RatesPath    string `yaml:"RatesPath"`
	DatabasePath string `yaml:"DatabasePath"`
	HistoryPath  string `yaml:"HistoryPath"`
	LogLevel     string `yaml:"LogLevel"`
}

// envOverrides maps environment variables onto config fields.
var envOverrides = []struct {
	key   string
	field func(*Config) *string
}{
	{"SHIFTBOOK_SHIFTS", func(c *Config) *string { return &c.ShiftsPath }},
	{"SHIFTBOOK_RATES", func(c *Config) *string { return &c.RatesPath }},
	{"SHIFTBOOK_DB", func(c *Config) *string { return &c.DatabasePath }},
	{"SHIFTBOOK_HISTORY", func(c *Config) *string { return &c.HistoryPath }},
	{"SHIFTBOOK_LOG_LEVEL", func(c *Config) *string { return &c.LogLevel }},
}

// Load reads the YAML config at path, or ~/.shiftbook.yaml when path is
// empty. A missing file yields the defaults. Values from .env and the
// environment win over the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()
	for _, o := range envOverrides {
		if v := os.Getenv(o.key); v != "" {
			*o.field(cfg) = v
		}
	}

	defaults := Default()
	if cfg.ShiftsPath == "" {
		cfg.ShiftsPath = defaults.ShiftsPath
	}
	if cfg.RatesPath == "" {
		cfg.RatesPath = defaults.RatesPath
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaults.DatabasePath
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = filepath.Join(filepath.Dir(cfg.DatabasePath), "history")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = LevelInfo
	}

	cfg.ShiftsPath = expandHome(cfg.ShiftsPath)
	cfg.RatesPath = expandHome(cfg.RatesPath)
	cfg.DatabasePath = expandHome(cfg.DatabasePath)
	cfg.HistoryPath = expandHome(cfg.HistoryPath)

	return cfg, nil
}

// ReadFile returns the defaults overlaid with the YAML at path, without
// environment overrides. A missing file yields the defaults.
func ReadFile(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Keys lists the names accepted by Set.
var Keys = []string{"ShiftsPath", "RatesPath", "DatabasePath", "HistoryPath", "LogLevel"}

// Set assigns one field by its YAML key, case-insensitively.
func (c *Config) Set(key, value string) error {
	fields := map[string]*string{
		"shiftspath":   &c.ShiftsPath,
		"ratespath":    &c.RatesPath,
		"databasepath": &c.DatabasePath,
		"historypath":  &c.HistoryPath,
		"loglevel":     &c.LogLevel,
	}
	field, ok := fields[strings.ToLower(key)]
	if !ok {
		return &ValidationError{Field: key, Message: fmt.Sprintf("unknown key (use one of %s)", strings.Join(Keys, ", "))}
	}
	*field = strings.TrimSpace(value)
	return nil
}

func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shiftbook.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		ShiftsPath:   filepath.Join(home, ".shiftbook", "shifts.txt"),
		RatesPath:    filepath.Join(home, ".shiftbook", "driverRates.txt"),
		DatabasePath: filepath.Join(home, ".shiftbook", "ledger.db"),
		LogLevel:     LevelInfo,
	}
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[2:])
	}
	return p
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

// Validate checks the configuration for common issues
func (c *Config) Validate() error {
	if c.ShiftsPath == "" {
		return &ValidationError{Field: "ShiftsPath", Message: "Shift file path is required"}
	}
	if c.RatesPath == "" {
		return &ValidationError{Field: "RatesPath", Message: "Rate file path is required"}
	}
	if c.DatabasePath == "" {
		return &ValidationError{Field: "DatabasePath", Message: "Database path is required"}
	}

	switch strings.ToLower(c.LogLevel) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
	default:
		return &ValidationError{Field: "LogLevel", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}

	return nil
}
