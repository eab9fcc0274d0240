package ledger

import (
	"sync"
	"time"
)

// DefaultRetention is the event retention horizon used when the caller
// does not know the largest window it will evaluate. It must be at least
// as large as any window passed to WindowedSpend; 30 days comfortably
// covers hourly and daily policy tiers.
const DefaultRetention = 30 * 24 * time.Hour

// Event is a single immutable spend record.
type Event struct {
	// Timestamp is when the spend occurred.
	Timestamp time.Time

	// Amount is the spend in USD.
	Amount float64
}

// Ledger tracks spend events per billing scope over a sliding window.
type Ledger struct {
	retention time.Duration
	scopes    map[string][]Event
	mu        sync.RWMutex
}

// New creates a ledger with the given retention horizon. A zero or
// negative retention falls back to DefaultRetention.
func New(retention time.Duration) *Ledger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Ledger{
		retention: retention,
		scopes:    make(map[string][]Event),
	}
}

// Retention returns the configured retention horizon.
func (l *Ledger) Retention() time.Duration {
	return l.retention
}

// Record appends a spend event for the scope and evicts events that have
// fallen out of the retention horizon.
//
// Events are appended in call order; for a single scope the caller is
// expected to serialize Record with any same-call window evaluation.
func (l *Ledger) Record(scopeKey string, amount float64, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := l.scopes[scopeKey]
	events = append(events, Event{Timestamp: now, Amount: amount})
	l.scopes[scopeKey] = evict(events, now.Add(-l.retention))
}

// WindowedSpend returns the total spend for the scope with
// timestamp >= now - window. The window must not exceed the retention
// horizon or evicted events will be silently missing from the sum.
func (l *Ledger) WindowedSpend(scopeKey string, window time.Duration, now time.Time) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cutoff := now.Add(-window)

	var sum float64
	for _, ev := range l.scopes[scopeKey] {
		if !ev.Timestamp.Before(cutoff) {
			sum += ev.Amount
		}
	}
	return sum
}

// Total returns the sum of all retained events for the scope. This is
// the inspection view of spend within the retention horizon, not an
// admission input.
func (l *Ledger) Total(scopeKey string, now time.Time) float64 {
	return l.WindowedSpend(scopeKey, l.retention, now)
}

// Len returns the number of retained events for the scope.
func (l *Ledger) Len(scopeKey string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.scopes[scopeKey])
}

// Scopes returns the keys of all scopes with at least one retained event.
func (l *Ledger) Scopes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(l.scopes))
	for key := range l.scopes {
		keys = append(keys, key)
	}
	return keys
}

// Sweep evicts expired events across all scopes and drops scopes left
// empty. It returns the number of evicted events. Record already evicts
// lazily for active scopes; Sweep exists so idle scopes do not retain
// events forever.
func (l *Ledger) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.retention)

	evicted := 0
	for key, events := range l.scopes {
		kept := evict(events, cutoff)
		evicted += len(events) - len(kept)
		if len(kept) == 0 {
			delete(l.scopes, key)
		} else {
			l.scopes[key] = kept
		}
	}
	return evicted
}

// Reset discards all events for all scopes.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scopes = make(map[string][]Event)
}

// evict drops events strictly older than cutoff. Events are stored in
// append order, so eviction only trims the head of the slice.
func evict(events []Event, cutoff time.Time) []Event {
	keep := 0
	for keep < len(events) && events[keep].Timestamp.Before(cutoff) {
		keep++
	}
	if keep == 0 {
		return events
	}
	return append(events[:0:0], events[keep:]...)
}
