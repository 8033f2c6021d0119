package cost

import (
	"sync"

	"github.com/sells-group/siteforge/pkg/anthropic"
)

// Rates holds per-model token pricing keyed by model ID.
type Rates map[string]ModelRate

// ModelRate holds token pricing per million tokens.
type ModelRate struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	CacheWriteMul float64 `yaml:"cache_write_mul" mapstructure:"cache_write_mul"`
	CacheReadMul  float64 `yaml:"cache_read_mul" mapstructure:"cache_read_mul"`
}

// Calculator prices generator calls and keeps a running total. It is safe
// for concurrent use.
type Calculator struct {
	rates Rates

	mu       sync.Mutex
	calls    int
	usage    anthropic.Usage
	totalUSD float64
}

// NewCalculator creates a Calculator. A nil rates map uses DefaultRates.
func NewCalculator(rates Rates) *Calculator {
	if rates == nil {
		rates = DefaultRates()
	}
	return &Calculator{rates: rates}
}

// Price returns the USD cost of one call. Unknown models cost 0.
func (c *Calculator) Price(model string, u anthropic.Usage) float64 {
	rate, ok := c.rates[model]
	if !ok {
		return 0
	}
	in := (float64(u.InputTokens) / 1e6) * rate.Input
	out := (float64(u.OutputTokens) / 1e6) * rate.Output
	cw := (float64(u.CacheCreationTokens) / 1e6) * rate.Input * rate.CacheWriteMul
	cr := (float64(u.CacheReadInputTokens) / 1e6) * rate.Input * rate.CacheReadMul
	return in + out + cw + cr
}

// Record prices a call, adds it to the running total and returns its cost.
func (c *Calculator) Record(model string, u anthropic.Usage) float64 {
	usd := c.Price(model, u)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.usage.InputTokens += u.InputTokens
	c.usage.OutputTokens += u.OutputTokens
	c.usage.CacheCreationTokens += u.CacheCreationTokens
	c.usage.CacheReadInputTokens += u.CacheReadInputTokens
	c.totalUSD += usd
	return usd
}

// Summary is a snapshot of recorded usage.
type Summary struct {
	Calls    int             `json:"calls"`
	Usage    anthropic.Usage `json:"usage"`
	TotalUSD float64         `json:"totalUsd"`
}

// Summary returns the totals recorded so far.
func (c *Calculator) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Summary{Calls: c.calls, Usage: c.usage, TotalUSD: c.totalUSD}
}

// DefaultRates returns list pricing for the models the generator is
// usually pointed at.
func DefaultRates() Rates {
	return Rates{
		"claude-haiku-4-5-20251001": {
			Input: 1.00, Output: 5.00,
			CacheWriteMul: 1.25, CacheReadMul: 0.1,
		},
		"claude-sonnet-4-5-20250929": {
			Input: 3.00, Output: 15.00,
			CacheWriteMul: 1.25, CacheReadMul: 0.1,
		},
	}
}
