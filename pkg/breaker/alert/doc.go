// Package alert provides threshold-crossing records, per-scope history,
// and synchronous subscriber dispatch for the spend circuit breaker.
//
// # Overview
//
// Every time a spend threshold is crossed the breaker appends a Record
// to the scope's history and hands it to the Dispatcher, which invokes
// every registered handler synchronously. A panicking handler is
// recovered and logged so that a misbehaving subscriber can never
// prevent the breaker from suspending a scope or evaluating the
// remaining rules.
//
// # Usage
//
//	d := alert.NewDispatcher(nil)
//	d.Subscribe(func(scopeKey string, rec alert.Record) {
//	    log.Printf("scope %s crossed $%.2f", scopeKey, rec.Threshold)
//	})
//
// There is no unsubscribe; handlers are expected to be registered once
// at startup.
package alert
