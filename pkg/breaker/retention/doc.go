// Package retention provides scheduled background eviction for the
// spend circuit breaker.
//
// The ledger evicts lazily on Record, which bounds memory for active
// scopes but leaves events pinned for scopes that stop recording. The
// Sweeper runs ledger eviction (and, when configured, audit sink
// cleanup) on a cron schedule so idle scopes are reclaimed too.
package retention
