package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds persistent defaults loaded from config files.
type Config struct {
	Journal JournalConfig `yaml:"journal"`
	Serve   ServeConfig   `yaml:"serve"`
	Backup  BackupConfig  `yaml:"backup"`
	Redact  RedactConfig  `yaml:"redact"`
}

// JournalConfig holds journal file defaults.
type JournalConfig struct {
	File   string `yaml:"file"`
	Recent int    `yaml:"recent"`
}

// ServeConfig holds HTTP server defaults.
type ServeConfig struct {
	Listen   string   `yaml:"listen"`
	AuditLog string   `yaml:"audit_log"`
	Webhooks []string `yaml:"webhooks"`
}

// BackupConfig holds remote backup defaults.
type BackupConfig struct {
	Remote string `yaml:"remote"`
}

// RedactConfig controls secret redaction on newly added messages.
type RedactConfig struct {
	Enabled      bool   `yaml:"enabled"`
	PatternsFile string `yaml:"patterns_file"`
}

// Load reads config from ~/.logshelf/config.yaml then CWD .logshelf.yaml.
// CWD config values override home config. Missing files are not errors.
// Environment variables (LOGSHELF_*) override config file values.
func Load() *Config {
	cfg := &Config{}

	// home config
	if home, err := os.UserHomeDir(); err == nil {
		_ = loadFile(filepath.Join(home, ".logshelf", "config.yaml"), cfg)
	}

	// CWD config overrides
	_ = loadFile(".logshelf.yaml", cfg)

	// env overrides
	applyEnv(cfg)

	return cfg
}

// LoadFrom reads config from a specific path. Used for testing.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LOGSHELF_FILE"); v != "" {
		cfg.Journal.File = v
	}
	if v := os.Getenv("LOGSHELF_RECENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Journal.Recent = n
		}
	}
	if v := os.Getenv("LOGSHELF_LISTEN"); v != "" {
		cfg.Serve.Listen = v
	}
	if v := os.Getenv("LOGSHELF_AUDIT_LOG"); v != "" {
		cfg.Serve.AuditLog = v
	}
	if v := os.Getenv("LOGSHELF_WEBHOOKS"); v != "" {
		cfg.Serve.Webhooks = strings.Split(v, ",")
	}
	if v := os.Getenv("LOGSHELF_REMOTE"); v != "" {
		cfg.Backup.Remote = v
	}
	if v := os.Getenv("LOGSHELF_REDACT"); v != "" {
		cfg.Redact.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("LOGSHELF_REDACT_PATTERNS"); v != "" {
		cfg.Redact.PatternsFile = v
	}
}
