// Package override provides time-bounded administrative exemptions from
// suspension enforcement.
//
// # Overview
//
// An override masks the admission decision for a suspended scope without
// clearing the underlying suspended flag. Once the override expires the
// breaker reverts to reporting the stored flag unchanged; an operator
// who wants renewed enforcement after an override lapses must re-suspend
// explicitly.
//
// # Usage
//
//	r := override.NewRegistry()
//	r.Set("org-1", "admin@example.com", "billing dispute", time.Now(), 24*time.Hour)
//
//	if r.Active("org-1", time.Now()) {
//	    // suspension is masked
//	}
//
// # Thread Safety
//
// Registry is safe for concurrent use via sync.RWMutex.
package override
