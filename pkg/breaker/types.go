package breaker

import (
	"errors"
	"time"
)

// Action defines what happens when a threshold rule is crossed.
type Action string

const (
	// ActionAlert records and dispatches an alert but allows the
	// request.
	ActionAlert Action = "alert"

	// ActionSuspend records an alert and suspends the billing scope;
	// the triggering request is denied.
	ActionSuspend Action = "suspend"
)

// Valid reports whether the action is a known rule action.
func (a Action) Valid() bool {
	return a == ActionAlert || a == ActionSuspend
}

// Rule is a single spend threshold. Rules are supplied by the caller on
// every Record call and evaluated in the order given; each rule is
// independent, with its own window and action.
type Rule struct {
	// Amount is the spend threshold in USD.
	Amount float64 `yaml:"amount"`

	// Window is the sliding window the threshold applies to.
	Window time.Duration `yaml:"window"`

	// Action is what happens when windowed spend exceeds Amount.
	Action Action `yaml:"action"`
}

// Decision is the admission result of a Record call.
type Decision struct {
	// Allowed indicates whether the triggering operation may proceed.
	Allowed bool

	// Reason explains the denial (set iff Allowed is false).
	Reason string
}

// Suspension is the stored suspension state for one billing scope.
type Suspension struct {
	// ScopeKey is the suspended billing scope.
	ScopeKey string `json:"scope_key"`

	// Suspended is the enforcement flag.
	Suspended bool `json:"suspended"`

	// Reason records why the scope was suspended.
	Reason string `json:"reason"`

	// SuspendedAt is when the suspension took effect.
	SuspendedAt time.Time `json:"suspended_at"`
}

// ErrNoRules is reserved for callers that want to treat an empty rule
// set as a configuration error; Record itself accepts empty rules and
// simply records spend.
var ErrNoRules = errors.New("no threshold rules supplied")

// ScopeKey derives the billing scope for an operation: the organization
// if present, otherwise the individual principal. All ledger,
// suspension, and override state is keyed by this value, so users
// sharing an organization share one budget.
func ScopeKey(principalID, orgID string) string {
	if orgID != "" {
		return orgID
	}
	return principalID
}
