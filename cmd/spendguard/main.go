// Spendguard is a spend-based circuit breaker for multi-tenant AI
// workloads.
//
// It tracks per-principal and per-organization API spend in a sliding
// window, raises alerts as configured thresholds are crossed, and
// suspends accounts that exceed their budget.
//
// Usage:
//
//	# Validate a configuration file
//	spendguard validate --config spendguard.yaml
//
//	# Replay a JSONL spend log through the breaker
//	spendguard simulate --events spend.jsonl
//
//	# Show version information
//	spendguard version
package main

func main() {
	Execute()
}
