package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"expert-ai/spendguard/pkg/breaker"
)

// Config is the root configuration structure for spendguard.
type Config struct {
	// Policy contains the default threshold rule tiers supplied to the
	// breaker on each admission call.
	Policy PolicyConfig `yaml:"policy"`

	// Audit contains alert audit sink configuration.
	Audit AuditConfig `yaml:"audit"`

	// Retention contains ledger retention and sweep scheduling.
	Retention RetentionConfig `yaml:"retention"`

	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// PolicyConfig contains the default threshold rules, evaluated in the
// order listed.
type PolicyConfig struct {
	// Rules are the policy tiers (e.g., an hourly alert threshold
	// below an hourly suspend threshold, plus daily budgets).
	Rules []RuleConfig `yaml:"rules"`
}

// RuleConfig is one threshold rule as configured.
type RuleConfig struct {
	// Amount is the spend threshold in USD.
	Amount float64 `yaml:"amount"`

	// Window is the sliding window the threshold applies to.
	Window Duration `yaml:"window"`

	// Action is "alert" or "suspend".
	Action string `yaml:"action"`
}

// AuditConfig contains alert audit sink configuration.
type AuditConfig struct {
	// Backend selects the sink: "memory", "sqlite", or "none" to
	// disable auditing.
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/alerts.db"
	SQLitePath string `yaml:"sqlite_path"`

	// RetentionDays is how long audited records are kept before the
	// sweeper prunes them. Zero disables pruning.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the per-scope record count of the memory
	// backend.
	// Default: 10000
	MaxRecords int `yaml:"max_records"`
}

// RetentionConfig contains ledger retention and sweep scheduling.
type RetentionConfig struct {
	// LedgerRetention is the spend-event retention horizon. It must
	// cover the longest configured rule window.
	// Default: 720h (30 days)
	LedgerRetention Duration `yaml:"ledger_retention"`

	// SweepSchedule is a standard cron expression for background
	// eviction sweeps. Empty disables the sweeper.
	// Default: "0 * * * *" (hourly)
	SweepSchedule string `yaml:"sweep_schedule"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn",
	// "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`
}

// Duration wraps time.Duration so YAML values may be written as Go
// duration strings ("1h", "24h") or integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(v)
	case int64:
		*d = Duration(v)
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// BreakerRules converts the configured policy tiers into breaker rules,
// preserving order.
func (p PolicyConfig) BreakerRules() []breaker.Rule {
	rules := make([]breaker.Rule, 0, len(p.Rules))
	for _, rc := range p.Rules {
		rules = append(rules, breaker.Rule{
			Amount: rc.Amount,
			Window: rc.Window.Std(),
			Action: breaker.Action(rc.Action),
		})
	}
	return rules
}
