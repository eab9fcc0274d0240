package override

import (
	"sync"
	"time"
)

// Override is an administrative exemption for one billing scope.
type Override struct {
	// ScopeKey is the billing scope the override applies to.
	ScopeKey string `json:"scope_key"`

	// AdminID identifies the administrator who granted the override.
	AdminID string `json:"admin_id"`

	// Reason records why the override was granted.
	Reason string `json:"reason"`

	// GrantedAt is when the override was created.
	GrantedAt time.Time `json:"granted_at"`

	// ExpiresAt is when the override lapses. A zero value means the
	// override is indefinite.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the override has lapsed at the given time.
// Indefinite overrides never expire.
func (o Override) Expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && !now.Before(o.ExpiresAt)
}

// Registry holds at most one override per scope.
type Registry struct {
	byScope map[string]Override
	mu      sync.RWMutex
}

// NewRegistry creates an empty override registry.
func NewRegistry() *Registry {
	return &Registry{
		byScope: make(map[string]Override),
	}
}

// Set creates or replaces the override for a scope. A zero ttl grants an
// indefinite override.
func (r *Registry) Set(scopeKey, adminID, reason string, now time.Time, ttl time.Duration) Override {
	o := Override{
		ScopeKey:  scopeKey,
		AdminID:   adminID,
		Reason:    reason,
		GrantedAt: now,
	}
	if ttl > 0 {
		o.ExpiresAt = now.Add(ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byScope[scopeKey] = o
	return o
}

// Get returns the stored override regardless of expiry, for inspection.
func (r *Registry) Get(scopeKey string) (Override, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.byScope[scopeKey]
	return o, ok
}

// Active reports whether a non-expired override exists for the scope.
func (r *Registry) Active(scopeKey string, now time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byScope[scopeKey]
	return ok && !o.Expired(now)
}

// Remove deletes the override for a scope. No-op if none exists.
func (r *Registry) Remove(scopeKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byScope, scopeKey)
}

// Reset discards all overrides.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byScope = make(map[string]Override)
}
