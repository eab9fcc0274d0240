package audit

import (
	"context"
	"sync"
	"time"

	"expert-ai/spendguard/pkg/breaker/alert"
)

// DefaultMemoryMaxRecords caps the per-scope record count of the memory
// sink. The oldest records are dropped first once the cap is reached.
const DefaultMemoryMaxRecords = 10000

// MemorySink implements Sink with an in-memory, per-scope capped copy of
// alert records. All data is lost when the process exits.
type MemorySink struct {
	byScope    map[string][]alert.Record
	maxRecords int
	closed     bool
	mu         sync.RWMutex
}

// NewMemorySink creates a memory sink. A non-positive maxRecords falls
// back to DefaultMemoryMaxRecords.
func NewMemorySink(maxRecords int) *MemorySink {
	if maxRecords <= 0 {
		maxRecords = DefaultMemoryMaxRecords
	}
	return &MemorySink{
		byScope:    make(map[string][]alert.Record),
		maxRecords: maxRecords,
	}
}

// RecordAlert persists one alert record.
func (m *MemorySink) RecordAlert(ctx context.Context, rec alert.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	records := append(m.byScope[rec.ScopeKey], rec)
	if len(records) > m.maxRecords {
		records = records[len(records)-m.maxRecords:]
	}
	m.byScope[rec.ScopeKey] = records
	return nil
}

// Alerts returns all persisted records for a scope, oldest first.
func (m *MemorySink) Alerts(ctx context.Context, scopeKey string) ([]alert.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	records := m.byScope[scopeKey]
	if len(records) == 0 {
		return nil, nil
	}
	return append([]alert.Record(nil), records...), nil
}

// Cleanup removes records observed before the cutoff.
func (m *MemorySink) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	removed := 0
	for scope, records := range m.byScope {
		kept := records[:0:0]
		for _, rec := range records {
			if rec.Timestamp.Before(olderThan) {
				removed++
				continue
			}
			kept = append(kept, rec)
		}
		if len(kept) == 0 {
			delete(m.byScope, scope)
		} else {
			m.byScope[scope] = kept
		}
	}
	return removed, nil
}

// Close marks the sink closed.
func (m *MemorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.byScope = nil
	return nil
}
