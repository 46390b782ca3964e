package budget

import (
	"sync"
)

// ModelRate is the USD price per 1,000 tokens for one model.
type ModelRate struct {
	// Input is the cost per 1K input (prompt) tokens.
	Input float64 `yaml:"input" json:"input"`

	// Output is the cost per 1K output (completion) tokens.
	Output float64 `yaml:"output" json:"output"`
}

// fallbackRatePer1K is the blended USD rate per combined 1K tokens used
// when a model is missing from the rate table.
const fallbackRatePer1K = 0.002

// defaultRates is the built-in pricing table. Rates are USD per 1K tokens.
var defaultRates = map[string]ModelRate{
	"gpt-4o":                    {Input: 0.0025, Output: 0.010},
	"gpt-4o-mini":               {Input: 0.00015, Output: 0.0006},
	"gpt-4-turbo":               {Input: 0.01, Output: 0.03},
	"gpt-3.5-turbo":             {Input: 0.0005, Output: 0.0015},
	"claude-3-5-sonnet-20241022": {Input: 0.003, Output: 0.015},
	"claude-3-sonnet-20240229":   {Input: 0.003, Output: 0.015},
	"claude-sonnet-4-5":          {Input: 0.003, Output: 0.015},
	"claude-3-opus-20240229":     {Input: 0.015, Output: 0.075},
	"claude-3-haiku-20240307":    {Input: 0.00025, Output: 0.00125},
	"claude-haiku-4-5":           {Input: 0.00025, Output: 0.00125},
}

// Estimator estimates request costs from token counts and a per-model
// rate table. It is thread-safe and supports hot-reload of the table.
type Estimator struct {
	rates map[string]ModelRate
	mu    sync.RWMutex
}

// NewEstimator creates a cost estimator. When rates is nil the built-in
// pricing table is used; otherwise rates replaces it entirely.
func NewEstimator(rates map[string]ModelRate) *Estimator {
	if rates == nil {
		rates = defaultRates
	}
	return &Estimator{rates: rates}
}

// EstimateCost returns the USD cost for a request against model with the
// given input and output token counts. An unrecognized model falls back
// to a blended 0.002 USD per combined 1K tokens; this method never fails.
func (e *Estimator) EstimateCost(model string, inputTokens, outputTokens int) float64 {
	e.mu.RLock()
	rate, ok := e.rates[model]
	e.mu.RUnlock()

	if !ok {
		return float64(inputTokens+outputTokens) / 1000.0 * fallbackRatePer1K
	}

	inputCost := float64(inputTokens) / 1000.0 * rate.Input
	outputCost := float64(outputTokens) / 1000.0 * rate.Output

	return inputCost + outputCost
}

// Rate returns the rate table entry for model and whether it exists.
func (e *Estimator) Rate(model string) (ModelRate, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rate, ok := e.rates[model]
	return rate, ok
}

// UpdateRates replaces the pricing table. This supports hot-reload from
// configuration without restarting the process. A nil table restores the
// built-in defaults.
func (e *Estimator) UpdateRates(rates map[string]ModelRate) {
	if rates == nil {
		rates = defaultRates
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rates = rates
}
