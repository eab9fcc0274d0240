// Package pricing converts token counts into monetary cost.
//
// # Overview
//
// The pricing package is the cost-estimation leaf of the spend circuit
// breaker. It holds per-1K-token rates and computes the USD cost of a
// request from its input and output token counts. It has no state beyond
// the rate tables and performs no I/O.
//
// # Usage
//
//	// Platform default rates
//	cost := pricing.EstimateCost(1000, 500) // 0.00375
//
//	// Explicit rates
//	cost := pricing.EstimateCostWith(2000, 800, pricing.Rates{
//	    InputPer1K:  0.003,
//	    OutputPer1K: 0.015,
//	})
//
//	// Per-model lookup
//	rates := pricing.DefaultTable.Lookup("anthropic", "claude-3-5-sonnet")
//	cost := pricing.EstimateCostWith(2000, 800, rates)
//
// # Thread Safety
//
// Table is safe for concurrent lookup and update via sync.RWMutex. The
// estimation functions are pure and need no synchronization.
package pricing
