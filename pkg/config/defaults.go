package config

import "time"

// Default values for configuration fields.
const (
	// Policy tier defaults (USD)
	DefaultHourlyAlertAmount   = 50.0
	DefaultHourlySuspendAmount = 100.0
	DefaultDailyAlertAmount    = 500.0
	DefaultDailySuspendAmount  = 1000.0

	// Audit defaults
	DefaultAuditBackend       = "memory"
	DefaultAuditSQLitePath    = "data/alerts.db"
	DefaultAuditRetentionDays = 90
	DefaultAuditMaxRecords    = 10000

	// Retention defaults
	DefaultLedgerRetention = 30 * 24 * time.Hour
	DefaultSweepSchedule   = "0 * * * *"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultRules returns the default policy tiers: hourly alert and
// suspend thresholds plus a daily alert and suspend budget.
func DefaultRules() []RuleConfig {
	return []RuleConfig{
		{Amount: DefaultHourlyAlertAmount, Window: Duration(time.Hour), Action: "alert"},
		{Amount: DefaultHourlySuspendAmount, Window: Duration(time.Hour), Action: "suspend"},
		{Amount: DefaultDailyAlertAmount, Window: Duration(24 * time.Hour), Action: "alert"},
		{Amount: DefaultDailySuspendAmount, Window: Duration(24 * time.Hour), Action: "suspend"},
	}
}

// DefaultConfig returns a fully-defaulted configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with defaults.
func ApplyDefaults(cfg *Config) {
	if len(cfg.Policy.Rules) == 0 {
		cfg.Policy.Rules = DefaultRules()
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = DefaultAuditSQLitePath
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = DefaultAuditRetentionDays
	}
	if cfg.Audit.MaxRecords == 0 {
		cfg.Audit.MaxRecords = DefaultAuditMaxRecords
	}

	if cfg.Retention.LedgerRetention == 0 {
		cfg.Retention.LedgerRetention = Duration(DefaultLedgerRetention)
	}
	if cfg.Retention.SweepSchedule == "" {
		cfg.Retention.SweepSchedule = DefaultSweepSchedule
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}
