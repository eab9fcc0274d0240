package alert

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record captures a single threshold crossing. Records are append-only
// and never mutated after creation.
type Record struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// ScopeKey is the billing scope that crossed the threshold.
	ScopeKey string `json:"scope_key"`

	// Threshold is the rule amount in USD that was exceeded.
	Threshold float64 `json:"threshold"`

	// ActualSpend is the windowed spend in USD at the time of crossing.
	ActualSpend float64 `json:"actual_spend"`

	// Window is the rule's evaluation window.
	Window time.Duration `json:"window"`

	// Action is the rule action that fired ("alert" or "suspend").
	Action string `json:"action"`

	// Timestamp is when the crossing was observed.
	Timestamp time.Time `json:"timestamp"`
}

// NewRecord creates a Record with a fresh UUID.
func NewRecord(scopeKey string, threshold, actualSpend float64, window time.Duration, action string, now time.Time) Record {
	return Record{
		ID:          uuid.New().String(),
		ScopeKey:    scopeKey,
		Threshold:   threshold,
		ActualSpend: actualSpend,
		Window:      window,
		Action:      action,
		Timestamp:   now,
	}
}

// Handler receives a dispatched alert record.
type Handler func(scopeKey string, rec Record)

// History holds per-scope alert records in crossing order.
type History struct {
	byScope map[string][]Record
	mu      sync.RWMutex
}

// NewHistory creates an empty alert history.
func NewHistory() *History {
	return &History{
		byScope: make(map[string][]Record),
	}
}

// Append adds a record to its scope's history.
func (h *History) Append(rec Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byScope[rec.ScopeKey] = append(h.byScope[rec.ScopeKey], rec)
}

// ForScope returns the scope's full history, oldest first. The returned
// slice is a copy and safe to retain.
func (h *History) ForScope(scopeKey string) []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	records := h.byScope[scopeKey]
	if len(records) == 0 {
		return nil
	}
	return append([]Record(nil), records...)
}

// Len returns the number of records for the scope.
func (h *History) Len(scopeKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byScope[scopeKey])
}

// Reset discards all history.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byScope = make(map[string][]Record)
}

// Dispatcher invokes registered handlers for each dispatched record.
type Dispatcher struct {
	handlers []Handler
	logger   *slog.Logger
	mu       sync.RWMutex

	// onPanic, when set, is called after a recovered handler panic.
	// The breaker uses it to count dispatch failures in metrics.
	onPanic func()
}

// NewDispatcher creates a dispatcher. A nil logger falls back to
// slog.Default.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger: logger.With("component", "breaker.alert"),
	}
}

// Subscribe registers a handler. Handlers are invoked in registration
// order on every dispatch.
func (d *Dispatcher) Subscribe(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// OnPanic registers a callback invoked after a recovered handler panic.
func (d *Dispatcher) OnPanic(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onPanic = fn
}

// HandlerCount returns the number of registered handlers.
func (d *Dispatcher) HandlerCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers)
}

// Dispatch invokes every handler synchronously with the record. A
// handler panic is recovered and logged; remaining handlers still run.
func (d *Dispatcher) Dispatch(rec Record) {
	d.mu.RLock()
	handlers := d.handlers
	onPanic := d.onPanic
	d.mu.RUnlock()

	for _, h := range handlers {
		d.invoke(h, rec, onPanic)
	}
}

func (d *Dispatcher) invoke(h Handler, rec Record, onPanic func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("alert handler panicked",
				"scope_key", rec.ScopeKey,
				"alert_id", rec.ID,
				"panic", r,
			)
			if onPanic != nil {
				onPanic()
			}
		}
	}()

	h(rec.ScopeKey, rec)
}

// Reset removes all handlers. This is for test isolation only.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = nil
}
