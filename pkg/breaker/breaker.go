package breaker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"expert-ai/spendguard/pkg/breaker/alert"
	"expert-ai/spendguard/pkg/breaker/audit"
	"expert-ai/spendguard/pkg/breaker/ledger"
	"expert-ai/spendguard/pkg/breaker/override"
)

// Config contains configuration for a Breaker instance.
type Config struct {
	// Retention is the ledger's event retention horizon. It must be at
	// least as large as the longest rule window callers will evaluate.
	// Default: ledger.DefaultRetention (30 days).
	Retention time.Duration

	// Logger for breaker activity. Default: slog.Default.
	Logger *slog.Logger

	// Now overrides the time source, for tests. Default: time.Now.
	Now func() time.Time

	// Audit, when set, receives a copy of every alert record. Sink
	// failures are logged and never affect admission decisions.
	Audit audit.Sink

	// Metrics, when set, receives admission and alert counters.
	Metrics *Metrics
}

// Breaker is the spend circuit breaker controller. It owns the spend
// ledger, suspension state, administrative overrides, and the alert
// history for every billing scope in the process.
type Breaker struct {
	ledger     *ledger.Ledger
	overrides  *override.Registry
	history    *alert.History
	dispatcher *alert.Dispatcher
	sink       audit.Sink
	metrics    *Metrics
	logger     *slog.Logger
	now        func() time.Time

	// mu serializes state transitions so that threshold evaluation for
	// a call observes the ledger after that call's own event, and two
	// concurrent calls for one scope cannot both miss a crossing.
	mu          sync.Mutex
	suspensions map[string]Suspension
}

// New creates a Breaker with the given configuration.
func New(cfg Config) *Breaker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "breaker")

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	b := &Breaker{
		ledger:      ledger.New(cfg.Retention),
		overrides:   override.NewRegistry(),
		history:     alert.NewHistory(),
		dispatcher:  alert.NewDispatcher(logger),
		sink:        cfg.Audit,
		metrics:     cfg.Metrics,
		logger:      logger,
		now:         now,
		suspensions: make(map[string]Suspension),
	}

	if b.metrics != nil {
		b.dispatcher.OnPanic(b.metrics.RecordDispatchPanic)
	}

	return b
}

// Ledger exposes the underlying spend ledger for wiring (retention
// sweeping, inspection). Mutating it directly bypasses admission
// semantics.
func (b *Breaker) Ledger() *ledger.Ledger {
	return b.ledger
}

// Record appends a spend event for the operation's billing scope and
// evaluates the supplied threshold rules against the updated ledger.
//
// If the scope is already suspended (and not masked by an override) the
// event is still appended for audit completeness and the call is denied
// without evaluating rules. Otherwise every rule is evaluated in order,
// even after a crossing: an alert rule and a suspend rule crossed by the
// same call both fire and are both recorded. The call is denied iff a
// suspend rule was crossed.
func (b *Breaker) Record(principalID string, amount float64, orgID string, rules []Rule) Decision {
	scopeKey := ScopeKey(principalID, orgID)

	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.RecordCheckDuration("record", time.Since(start).Seconds())
		}
	}()

	now := b.now()

	if suspended, reason := b.suspendedLocked(scopeKey, now); suspended {
		// Append anyway so suspended scopes keep a complete spend trail.
		b.ledger.Record(scopeKey, amount, now)

		decision := Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("Account suspended: %s", reason),
		}
		b.observeDecision(decision)
		return decision
	}

	b.ledger.Record(scopeKey, amount, now)

	denied := false
	var denyReason string

	for _, rule := range rules {
		spent := b.ledger.WindowedSpend(scopeKey, rule.Window, now)
		if spent <= rule.Amount {
			continue
		}

		rec := alert.NewRecord(scopeKey, rule.Amount, spent, rule.Window, string(rule.Action), now)
		b.history.Append(rec)
		b.recordAudit(rec)
		if b.metrics != nil {
			b.metrics.RecordCrossing(string(rule.Action))
		}

		b.logger.Warn("spend threshold crossed",
			"scope_key", scopeKey,
			"threshold", rule.Amount,
			"actual_spend", spent,
			"window", rule.Window,
			"action", rule.Action,
		)

		// Subscribers run synchronously; panics are isolated by the
		// dispatcher so the remaining rules still get evaluated.
		b.dispatcher.Dispatch(rec)

		if rule.Action == ActionSuspend {
			reason := fmt.Sprintf("Exceeded spending limit: $%.2f in %s", rule.Amount, rule.Window)
			b.suspendLocked(scopeKey, reason, now)
			denied = true
			denyReason = reason
		}
	}

	decision := Decision{Allowed: !denied, Reason: denyReason}
	b.observeDecision(decision)
	return decision
}

// IsSuspended reports whether the operation's billing scope is currently
// suspended. A non-expired administrative override masks suspension; an
// expired override reveals the stored flag unchanged.
func (b *Breaker) IsSuspended(principalID, orgID string) bool {
	scopeKey := ScopeKey(principalID, orgID)

	b.mu.Lock()
	defer b.mu.Unlock()

	suspended, _ := b.suspendedLocked(scopeKey, b.now())
	return suspended
}

// CurrentSpend returns the operation scope's total retained spend. This
// is an inspection value (spend within the ledger's retention horizon),
// not an admission input.
func (b *Breaker) CurrentSpend(principalID, orgID string) float64 {
	return b.ledger.Total(ScopeKey(principalID, orgID), b.now())
}

// WindowedSpend returns the operation scope's spend within the window.
func (b *Breaker) WindowedSpend(principalID, orgID string, window time.Duration) float64 {
	return b.ledger.WindowedSpend(ScopeKey(principalID, orgID), window, b.now())
}

// Suspend suspends a billing scope directly, independent of threshold
// evaluation. Used for manual administrative action.
func (b *Breaker) Suspend(scopeKey, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.suspendLocked(scopeKey, reason, b.now())
}

// Unsuspend clears a scope's suspension. Overrides and ledger history
// are untouched; the scope may be re-suspended later.
func (b *Breaker) Unsuspend(scopeKey string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.suspensions, scopeKey)
	if b.metrics != nil {
		b.metrics.SetSuspendedScopes(len(b.suspensions))
	}

	b.logger.Info("scope unsuspended", "scope_key", scopeKey)
}

// SuspensionFor returns the stored suspension state for a scope, for
// inspection. The second return is false if the scope was never
// suspended (or has been unsuspended).
func (b *Breaker) SuspensionFor(scopeKey string) (Suspension, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.suspensions[scopeKey]
	return s, ok
}

// SetOverride creates or replaces an administrative override for a
// scope. A zero ttl grants an indefinite override. Overrides mask the
// admission decision while active; they never mutate suspension state.
func (b *Breaker) SetOverride(scopeKey, adminID, reason string, ttl time.Duration) override.Override {
	o := b.overrides.Set(scopeKey, adminID, reason, b.now(), ttl)

	b.logger.Info("admin override set",
		"scope_key", scopeKey,
		"admin_id", adminID,
		"expires_at", o.ExpiresAt,
	)
	return o
}

// OverrideFor returns the stored override for a scope regardless of
// expiry, for inspection.
func (b *Breaker) OverrideFor(scopeKey string) (override.Override, bool) {
	return b.overrides.Get(scopeKey)
}

// RemoveOverride deletes the override for a scope.
func (b *Breaker) RemoveOverride(scopeKey string) {
	b.overrides.Remove(scopeKey)
	b.logger.Info("admin override removed", "scope_key", scopeKey)
}

// Alerts returns the scope's full alert history, oldest first.
func (b *Breaker) Alerts(scopeKey string) []alert.Record {
	return b.history.ForScope(scopeKey)
}

// OnAlert registers a process-wide alert subscriber. Handlers run
// synchronously on the admission path and must not call back into the
// Breaker. There is no unregister; subscribe once at startup.
func (b *Breaker) OnAlert(h alert.Handler) {
	b.dispatcher.Subscribe(h)
}

// Reset wipes all ledgers, suspensions, overrides, and alert history.
// Test and operational utility only; it must not be reachable from
// request-handling paths.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ledger.Reset()
	b.overrides.Reset()
	b.history.Reset()
	b.suspensions = make(map[string]Suspension)
	if b.metrics != nil {
		b.metrics.SetSuspendedScopes(0)
	}
}

// suspendedLocked reports the effective suspension state for a scope,
// honoring overrides. Caller must hold b.mu.
func (b *Breaker) suspendedLocked(scopeKey string, now time.Time) (bool, string) {
	s, ok := b.suspensions[scopeKey]
	if !ok || !s.Suspended {
		return false, ""
	}
	if b.overrides.Active(scopeKey, now) {
		return false, ""
	}
	return true, s.Reason
}

// suspendLocked transitions a scope to suspended. Caller must hold b.mu.
func (b *Breaker) suspendLocked(scopeKey, reason string, now time.Time) {
	b.suspensions[scopeKey] = Suspension{
		ScopeKey:    scopeKey,
		Suspended:   true,
		Reason:      reason,
		SuspendedAt: now,
	}
	if b.metrics != nil {
		b.metrics.SetSuspendedScopes(len(b.suspensions))
	}

	b.logger.Warn("scope suspended", "scope_key", scopeKey, "reason", reason)
}

// recordAudit mirrors an alert record to the audit sink, if configured.
func (b *Breaker) recordAudit(rec alert.Record) {
	if b.sink == nil {
		return
	}
	if err := b.sink.RecordAlert(context.Background(), rec); err != nil {
		b.logger.Error("audit sink write failed",
			"scope_key", rec.ScopeKey,
			"alert_id", rec.ID,
			"error", err,
		)
	}
}

// observeDecision updates admission metrics.
func (b *Breaker) observeDecision(d Decision) {
	if b.metrics == nil {
		return
	}
	b.metrics.RecordAdmission(d.Allowed)
}
