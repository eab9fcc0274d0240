// Package audit provides optional long-term sinks for alert records.
//
// # Overview
//
// The breaker's in-memory alert history is the authoritative,
// test-visible record of threshold crossings; it lives and dies with the
// process. An audit sink mirrors each record as it is produced so that
// operators keep a durable, queryable trail of crossings across
// restarts. The sink is observability only: it never feeds back into
// admission decisions, and ledger state is still rebuilt empty on
// restart.
//
// Two implementations are provided:
//
//   - MemorySink: capped in-memory copy, useful for tests and as a
//     bounded ring for short-lived deployments
//   - SQLiteSink: file-backed trail using modernc.org/sqlite with WAL
//     journaling and prepared statements
//
// # Error Handling
//
// Sink failures are logged by the breaker and never surfaced to the
// admission path; a broken audit trail must not block spending checks.
//
// # Thread Safety
//
// All sinks are safe for concurrent use.
package audit
