package pricing

// Rates contains the USD price per 1K tokens for a model.
type Rates struct {
	// InputPer1K is the price per 1,000 prompt tokens.
	InputPer1K float64 `json:"input_per_1k" yaml:"input_per_1k"`

	// OutputPer1K is the price per 1,000 completion tokens.
	OutputPer1K float64 `json:"output_per_1k" yaml:"output_per_1k"`
}

// DefaultRates are the platform-wide fallback rates used when no model
// information is available at estimation time.
var DefaultRates = Rates{
	InputPer1K:  0.00125,
	OutputPer1K: 0.005,
}

// EstimateCost returns the USD cost of a request priced at the platform
// default rates. Zero tokens cost zero.
func EstimateCost(inputTokens, outputTokens int) float64 {
	return EstimateCostWith(inputTokens, outputTokens, DefaultRates)
}

// EstimateCostWith returns the USD cost of a request priced at the given
// rates.
//
// The result is:
//
//	inputTokens/1000 * rates.InputPer1K + outputTokens/1000 * rates.OutputPer1K
func EstimateCostWith(inputTokens, outputTokens int, rates Rates) float64 {
	inputCost := float64(inputTokens) / 1000.0 * rates.InputPer1K
	outputCost := float64(outputTokens) / 1000.0 * rates.OutputPer1K
	return inputCost + outputCost
}

// EstimateForModel returns the USD cost of a request priced at the rates
// configured for the given provider and model in the default table.
func EstimateForModel(inputTokens, outputTokens int, provider, model string) float64 {
	return EstimateCostWith(inputTokens, outputTokens, DefaultTable.Lookup(provider, model))
}
