package audit

import (
	"context"
	"errors"
	"time"

	"expert-ai/spendguard/pkg/breaker/alert"
)

// ErrClosed is returned by sink operations after Close.
var ErrClosed = errors.New("audit sink closed")

// Sink records alert records for later inspection.
// Implementations must be thread-safe.
type Sink interface {
	// RecordAlert persists one alert record. Returns an error on
	// storage failure; callers treat failures as non-fatal.
	RecordAlert(ctx context.Context, rec alert.Record) error

	// Alerts returns all persisted records for a scope, oldest first.
	Alerts(ctx context.Context, scopeKey string) ([]alert.Record, error)

	// Cleanup removes records observed before the cutoff and returns
	// the number removed.
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases sink resources. The sink must not be used after
	// Close.
	Close() error
}
