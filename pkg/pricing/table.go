package pricing

import "sync"

// Table maps provider and model names to per-1K-token rates.
//
// Each provider may define a "*" entry that serves as the fallback for
// models not listed explicitly. Unknown providers fall back to
// DefaultRates.
type Table struct {
	mu        sync.RWMutex
	providers map[string]map[string]Rates
}

// NewTable creates an empty rate table.
func NewTable() *Table {
	return &Table{
		providers: make(map[string]map[string]Rates),
	}
}

// Lookup returns the rates for the given provider and model.
//
// Resolution order: exact model match, the provider's "*" wildcard entry,
// then DefaultRates.
func (t *Table) Lookup(provider, model string) Rates {
	t.mu.RLock()
	defer t.mu.RUnlock()

	models, ok := t.providers[provider]
	if !ok {
		return DefaultRates
	}

	if rates, ok := models[model]; ok {
		return rates
	}
	if rates, ok := models["*"]; ok {
		return rates
	}
	return DefaultRates
}

// Set adds or replaces the rates for a provider/model pair. Use model "*"
// to set the provider-wide fallback.
func (t *Table) Set(provider, model string, rates Rates) {
	t.mu.Lock()
	defer t.mu.Unlock()

	models, ok := t.providers[provider]
	if !ok {
		models = make(map[string]Rates)
		t.providers[provider] = models
	}
	models[model] = rates
}

// Providers returns the provider names with at least one configured rate.
func (t *Table) Providers() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.providers))
	for name := range t.providers {
		names = append(names, name)
	}
	return names
}

// DefaultTable contains baked-in rates for common LLM providers.
// Prices are per 1K tokens in USD.
var DefaultTable = &Table{
	providers: map[string]map[string]Rates{
		"anthropic": {
			"claude-3-5-sonnet": {InputPer1K: 0.003, OutputPer1K: 0.015},
			"claude-3-5-haiku":  {InputPer1K: 0.0008, OutputPer1K: 0.004},
			"claude-3-opus":     {InputPer1K: 0.015, OutputPer1K: 0.075},
			"claude-3-haiku":    {InputPer1K: 0.00025, OutputPer1K: 0.00125},
			"*":                 {InputPer1K: 0.003, OutputPer1K: 0.015},
		},
		"openai": {
			"gpt-4o":        {InputPer1K: 0.0025, OutputPer1K: 0.01},
			"gpt-4o-mini":   {InputPer1K: 0.00015, OutputPer1K: 0.0006},
			"gpt-4-turbo":   {InputPer1K: 0.01, OutputPer1K: 0.03},
			"gpt-4":         {InputPer1K: 0.03, OutputPer1K: 0.06},
			"gpt-3.5-turbo": {InputPer1K: 0.0005, OutputPer1K: 0.0015},
			"o1-mini":       {InputPer1K: 0.003, OutputPer1K: 0.012},
			"*":             {InputPer1K: 0.01, OutputPer1K: 0.03},
		},
		"google": {
			"gemini-1.5-pro":   {InputPer1K: 0.00125, OutputPer1K: 0.005},
			"gemini-1.5-flash": {InputPer1K: 0.000075, OutputPer1K: 0.0003},
			"*":                {InputPer1K: 0.001, OutputPer1K: 0.004},
		},
		"local": {
			// Self-hosted models carry no per-token cost.
			"*": {InputPer1K: 0, OutputPer1K: 0},
		},
	},
}
