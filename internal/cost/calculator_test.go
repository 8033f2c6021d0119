package cost

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/siteforge/pkg/anthropic"
)

func testRates() Rates {
	return Rates{
		"haiku": {
			Input: 0.80, Output: 4.00,
			CacheWriteMul: 1.25, CacheReadMul: 0.1,
		},
		"sonnet": {
			Input: 3.00, Output: 15.00,
			CacheWriteMul: 1.25, CacheReadMul: 0.1,
		},
	}
}

func TestPrice(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(testRates())

	tests := []struct {
		name  string
		model string
		usage anthropic.Usage
		want  float64
	}{
		{
			name:  "haiku simple",
			model: "haiku",
			usage: anthropic.Usage{InputTokens: 1000000, OutputTokens: 100000},
			want:  0.80 + 0.40,
		},
		{
			name:  "haiku with cache",
			model: "haiku",
			usage: anthropic.Usage{
				InputTokens: 500000, OutputTokens: 50000,
				CacheCreationTokens: 200000, CacheReadInputTokens: 300000,
			},
			// 0.40 + 0.20 + 0.20 + 0.024
			want: 0.824,
		},
		{
			name:  "sonnet",
			model: "sonnet",
			usage: anthropic.Usage{InputTokens: 2000, OutputTokens: 500},
			want:  0.006 + 0.0075,
		},
		{
			name:  "unknown model",
			model: "gpt-4",
			usage: anthropic.Usage{InputTokens: 1000000, OutputTokens: 1000000},
			want:  0,
		},
		{
			name:  "zero usage",
			model: "haiku",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, calc.Price(tt.model, tt.usage), 1e-9)
		})
	}
}

func TestRecordAndSummary(t *testing.T) {
	calc := NewCalculator(testRates())

	usd := calc.Record("haiku", anthropic.Usage{InputTokens: 1000000})
	assert.InDelta(t, 0.80, usd, 1e-9)
	calc.Record("unknown", anthropic.Usage{InputTokens: 10, OutputTokens: 5})

	s := calc.Summary()
	assert.Equal(t, 2, s.Calls)
	assert.Equal(t, int64(1000010), s.Usage.InputTokens)
	assert.Equal(t, int64(5), s.Usage.OutputTokens)
	assert.InDelta(t, 0.80, s.TotalUSD, 1e-9)
}

func TestRecordConcurrent(t *testing.T) {
	calc := NewCalculator(testRates())

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			calc.Record("sonnet", anthropic.Usage{OutputTokens: 1000})
		}()
	}
	wg.Wait()

	s := calc.Summary()
	assert.Equal(t, 50, s.Calls)
	assert.InDelta(t, 50*0.015, s.TotalUSD, 1e-9)
}

func TestDefaultRates(t *testing.T) {
	calc := NewCalculator(nil)
	assert.Greater(t, calc.Price("claude-haiku-4-5-20251001", anthropic.Usage{InputTokens: 1000}), 0.0)
	assert.Contains(t, DefaultRates(), "claude-sonnet-4-5-20250929")
}
