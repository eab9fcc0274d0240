package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns
// any errors. The configuration is not modified by environment
// variables; use LoadWithEnvOverrides for that functionality.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the
// naming convention SPENDGUARD_SECTION_FIELD (e.g.,
// SPENDGUARD_AUDIT_BACKEND) and always take precedence over file-based
// configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format
// SPENDGUARD_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Audit overrides
	if val := os.Getenv("SPENDGUARD_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("SPENDGUARD_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLitePath = val
	}
	if val := os.Getenv("SPENDGUARD_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.RetentionDays = i
		}
	}
	if val := os.Getenv("SPENDGUARD_AUDIT_MAX_RECORDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.MaxRecords = i
		}
	}

	// Retention overrides
	if val := os.Getenv("SPENDGUARD_RETENTION_LEDGER_RETENTION"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retention.LedgerRetention = Duration(d)
		}
	}
	if val := os.Getenv("SPENDGUARD_RETENTION_SWEEP_SCHEDULE"); val != "" {
		cfg.Retention.SweepSchedule = val
	}

	// Logging overrides
	if val := os.Getenv("SPENDGUARD_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SPENDGUARD_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
