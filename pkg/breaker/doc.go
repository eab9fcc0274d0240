// Package breaker implements the spend-based circuit breaker that gates
// paid expert-agent requests behind windowed spend budgets.
//
// # Overview
//
// Every paid request records its cost against a billing scope (the
// organization if present, otherwise the individual principal). An
// ordered list of threshold rules is evaluated against the scope's
// windowed spend; crossing an alert rule records and dispatches an
// alert, crossing a suspend rule additionally suspends the scope and
// denies the request. Administrators can suspend and unsuspend scopes
// directly and grant time-limited overrides that mask suspension without
// clearing it.
//
// # Usage
//
//	b := breaker.New(breaker.Config{})
//
//	rules := []breaker.Rule{
//	    {Amount: 50, Window: time.Hour, Action: breaker.ActionAlert},
//	    {Amount: 100, Window: time.Hour, Action: breaker.ActionSuspend},
//	}
//
//	decision := b.Record("user-42", cost, "org-7", rules)
//	if !decision.Allowed {
//	    // surface a quota error to the caller
//	}
//
// A process-wide default instance is available through the package-level
// functions (Record, IsSuspended, ...) for call sites that do not carry
// an instance; prefer explicit instances in anything testable.
//
// # Concurrency
//
// The breaker is an in-memory, single-process component. All operations
// are thread-safe and complete in bounded time with no I/O on the
// admission path. Horizontally scaled deployments enforce budgets
// independently per instance; coordinating spend across instances needs
// an external shared store and is out of scope here.
package breaker
