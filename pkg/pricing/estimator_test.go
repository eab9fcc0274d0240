package pricing

import (
	"math"
	"testing"
)

// ============================================================================
// Estimation Tests
// ============================================================================

func TestEstimateCost_DefaultRates(t *testing.T) {
	cost := EstimateCost(1000, 500)

	// 1000/1000*0.00125 + 500/1000*0.005 = 0.00125 + 0.0025
	expected := 0.00375
	if math.Abs(cost-expected) > 1e-12 {
		t.Errorf("Expected cost %.6f, got %.6f", expected, cost)
	}
}

func TestEstimateCost_ZeroTokens(t *testing.T) {
	if cost := EstimateCost(0, 0); cost != 0 {
		t.Errorf("Expected 0 for zero tokens, got %.6f", cost)
	}
}

func TestEstimateCost_InputOnly(t *testing.T) {
	cost := EstimateCost(2000, 0)

	expected := 0.0025
	if math.Abs(cost-expected) > 1e-12 {
		t.Errorf("Expected cost %.6f, got %.6f", expected, cost)
	}
}

func TestEstimateCostWith_ExplicitRates(t *testing.T) {
	rates := Rates{InputPer1K: 0.003, OutputPer1K: 0.015}
	cost := EstimateCostWith(2000, 1000, rates)

	// 2*0.003 + 1*0.015
	expected := 0.021
	if math.Abs(cost-expected) > 1e-12 {
		t.Errorf("Expected cost %.6f, got %.6f", expected, cost)
	}
}

func TestEstimateForModel_KnownModel(t *testing.T) {
	cost := EstimateForModel(1000, 1000, "openai", "gpt-4")

	expected := 0.09
	if math.Abs(cost-expected) > 1e-12 {
		t.Errorf("Expected cost %.6f, got %.6f", expected, cost)
	}
}

// ============================================================================
// Table Tests
// ============================================================================

func TestTable_Lookup_ExactMatch(t *testing.T) {
	rates := DefaultTable.Lookup("anthropic", "claude-3-opus")

	if rates.InputPer1K != 0.015 || rates.OutputPer1K != 0.075 {
		t.Errorf("Unexpected rates for claude-3-opus: %+v", rates)
	}
}

func TestTable_Lookup_WildcardFallback(t *testing.T) {
	rates := DefaultTable.Lookup("anthropic", "claude-unknown-future-model")

	if rates.InputPer1K != 0.003 || rates.OutputPer1K != 0.015 {
		t.Errorf("Expected anthropic wildcard rates, got %+v", rates)
	}
}

func TestTable_Lookup_UnknownProvider(t *testing.T) {
	rates := DefaultTable.Lookup("no-such-provider", "some-model")

	if rates != DefaultRates {
		t.Errorf("Expected default rates for unknown provider, got %+v", rates)
	}
}

func TestTable_Set(t *testing.T) {
	table := NewTable()
	table.Set("custom", "my-model", Rates{InputPer1K: 0.001, OutputPer1K: 0.002})

	rates := table.Lookup("custom", "my-model")
	if rates.InputPer1K != 0.001 || rates.OutputPer1K != 0.002 {
		t.Errorf("Unexpected rates after Set: %+v", rates)
	}

	// Replace in place
	table.Set("custom", "my-model", Rates{InputPer1K: 0.005, OutputPer1K: 0.01})
	rates = table.Lookup("custom", "my-model")
	if rates.InputPer1K != 0.005 {
		t.Errorf("Expected replaced rate 0.005, got %.6f", rates.InputPer1K)
	}
}

func TestTable_Lookup_LocalModelsFree(t *testing.T) {
	if cost := EstimateForModel(100000, 100000, "local", "llama3"); cost != 0 {
		t.Errorf("Expected zero cost for local models, got %.6f", cost)
	}
}
