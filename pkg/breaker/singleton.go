package breaker

import (
	"sync"
	"time"

	"expert-ai/spendguard/pkg/breaker/alert"
	"expert-ai/spendguard/pkg/breaker/override"
)

var (
	// defaultBreaker holds the process-wide default instance.
	defaultBreaker *Breaker

	// defaultMu protects access to defaultBreaker.
	defaultMu sync.RWMutex

	// defaultOnce ensures lazy construction happens only once.
	defaultOnce sync.Once
)

// Default returns the process-wide default Breaker, constructing it with
// default configuration on first use.
//
// For testing, prefer explicit instances from New; the default exists
// for convenience call sites that do not carry one.
func Default() *Breaker {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		if defaultBreaker == nil {
			defaultBreaker = New(Config{})
		}
		defaultMu.Unlock()
	})

	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultBreaker
}

// SetDefault replaces the process-wide default Breaker. This is
// primarily intended for tests and startup wiring.
func SetDefault(b *Breaker) {
	defaultOnce.Do(func() {})

	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultBreaker = b
}

// Record records spend against the default instance.
func Record(principalID string, amount float64, orgID string, rules []Rule) Decision {
	return Default().Record(principalID, amount, orgID, rules)
}

// IsSuspended queries the default instance.
func IsSuspended(principalID, orgID string) bool {
	return Default().IsSuspended(principalID, orgID)
}

// CurrentSpend queries the default instance.
func CurrentSpend(principalID, orgID string) float64 {
	return Default().CurrentSpend(principalID, orgID)
}

// Suspend suspends a scope on the default instance.
func Suspend(scopeKey, reason string) {
	Default().Suspend(scopeKey, reason)
}

// Unsuspend clears a scope's suspension on the default instance.
func Unsuspend(scopeKey string) {
	Default().Unsuspend(scopeKey)
}

// SetOverride grants an override on the default instance.
func SetOverride(scopeKey, adminID, reason string, ttl time.Duration) override.Override {
	return Default().SetOverride(scopeKey, adminID, reason, ttl)
}

// OverrideFor inspects an override on the default instance.
func OverrideFor(scopeKey string) (override.Override, bool) {
	return Default().OverrideFor(scopeKey)
}

// RemoveOverride deletes an override on the default instance.
func RemoveOverride(scopeKey string) {
	Default().RemoveOverride(scopeKey)
}

// Alerts returns a scope's alert history from the default instance.
func Alerts(scopeKey string) []alert.Record {
	return Default().Alerts(scopeKey)
}

// OnAlert subscribes a handler on the default instance.
func OnAlert(h alert.Handler) {
	Default().OnAlert(h)
}

// Reset wipes the default instance's state. Test utility only.
func Reset() {
	Default().Reset()
}
