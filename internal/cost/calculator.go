// Package cost computes LLM spend from token usage and a per-model pricing
// table. Rates are configuration data, not control flow, so the same engine
// works for any study or model without code changes.
package cost

import "math"

// ModelRate holds per-model token pricing in USD per thousand tokens.
type ModelRate struct {
	InputPer1K  float64 `yaml:"input_per_1k" mapstructure:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k" mapstructure:"output_per_1k"`
}

// Rates maps model name to pricing.
type Rates map[string]ModelRate

// Calculator computes call costs for configured models.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Call returns the input, output, and total cost of a single call, each
// rounded to six decimal places. Unknown models cost zero.
func (c *Calculator) Call(model string, inputTokens, outputTokens int64) (in, out, total float64) {
	rate, ok := c.rates[model]
	if !ok {
		return 0, 0, 0
	}
	in = Round6(float64(inputTokens) / 1000 * rate.InputPer1K)
	out = Round6(float64(outputTokens) / 1000 * rate.OutputPer1K)
	return in, out, Round6(in + out)
}

// Round6 rounds to six decimal places.
func Round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

// Round4 rounds to four decimal places, used for aggregate totals.
func Round4(f float64) float64 {
	return math.Round(f*1e4) / 1e4
}

// DefaultRates returns the pricing table used when none is configured.
// The haiku entry carries the study's fixed per-1K rates.
func DefaultRates() Rates {
	return Rates{
		"claude-haiku-4-5-20251001": {
			InputPer1K:  0.00015,
			OutputPer1K: 0.00060,
		},
		"claude-sonnet-4-5-20250929": {
			InputPer1K:  0.003,
			OutputPer1K: 0.015,
		},
	}
}
