package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"expert-ai/spendguard/pkg/breaker"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the field (e.g., "policy.rules[0].amount").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects all validation errors found in a
// configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All errors are collected
// and returned together; nil means the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validatePolicy(cfg)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validatePolicy(cfg *Config) []FieldError {
	var errs []FieldError

	for i, rule := range cfg.Policy.Rules {
		field := func(name string) string {
			return fmt.Sprintf("policy.rules[%d].%s", i, name)
		}

		if rule.Amount <= 0 {
			errs = append(errs, FieldError{field("amount"), "must be positive"})
		}
		if rule.Window <= 0 {
			errs = append(errs, FieldError{field("window"), "must be positive"})
		}
		if !breaker.Action(rule.Action).Valid() {
			errs = append(errs, FieldError{field("action"),
				fmt.Sprintf("must be %q or %q, got %q", breaker.ActionAlert, breaker.ActionSuspend, rule.Action)})
		}
		// Events older than the ledger retention are evicted, so a
		// wider rule window would silently undercount.
		if cfg.Retention.LedgerRetention > 0 && rule.Window > cfg.Retention.LedgerRetention {
			errs = append(errs, FieldError{field("window"),
				fmt.Sprintf("exceeds retention.ledger_retention (%s)", cfg.Retention.LedgerRetention.Std())})
		}
	}

	return errs
}

func validateAudit(audit *AuditConfig) []FieldError {
	var errs []FieldError

	switch audit.Backend {
	case "memory", "none":
	case "sqlite":
		if audit.SQLitePath == "" {
			errs = append(errs, FieldError{"audit.sqlite_path", "required for sqlite backend"})
		}
	default:
		errs = append(errs, FieldError{"audit.backend",
			fmt.Sprintf("must be \"memory\", \"sqlite\", or \"none\", got %q", audit.Backend)})
	}

	if audit.RetentionDays < 0 {
		errs = append(errs, FieldError{"audit.retention_days", "must not be negative"})
	}
	if audit.MaxRecords < 0 {
		errs = append(errs, FieldError{"audit.max_records", "must not be negative"})
	}

	return errs
}

func validateRetention(retention *RetentionConfig) []FieldError {
	var errs []FieldError

	if retention.LedgerRetention < 0 {
		errs = append(errs, FieldError{"retention.ledger_retention", "must not be negative"})
	}
	if retention.SweepSchedule != "" {
		if _, err := cron.ParseStandard(retention.SweepSchedule); err != nil {
			errs = append(errs, FieldError{"retention.sweep_schedule",
				fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}

	return errs
}

func validateLogging(logging *LoggingConfig) []FieldError {
	var errs []FieldError

	switch logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"logging.level",
			fmt.Sprintf("must be one of debug, info, warn, error; got %q", logging.Level)})
	}

	switch logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"logging.format",
			fmt.Sprintf("must be \"json\" or \"text\", got %q", logging.Format)})
	}

	return errs
}
