// Package ledger provides per-scope, time-windowed spend accounting.
//
// # Overview
//
// The ledger is the accounting leaf of the spend circuit breaker. It
// retains individual timestamped spend events per billing scope and
// answers "how much has this scope spent within window W?" for any
// window up to the retention horizon.
//
// # Sliding-Window Log
//
// The ledger keeps a log of individual events rather than bucketed
// counters. Threshold rules with different window lengths (an hourly
// alert rule and a daily suspend rule, say) must be evaluated precisely
// against the same history; a single bucketed window cannot serve two
// differently-sized windows correctly at bucket boundaries. The trade
// is some memory for exactness, bounded by lazy eviction of events
// older than the retention horizon.
//
// # Usage
//
//	l := ledger.New(ledger.DefaultRetention)
//
//	now := time.Now()
//	l.Record("org-1", 0.42, now)
//
//	spent := l.WindowedSpend("org-1", time.Hour, now)
//
// # Thread Safety
//
// All operations are thread-safe using sync.RWMutex.
package ledger
