package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/siteforge/internal/config"
	"github.com/sells-group/siteforge/internal/cost"
	"github.com/sells-group/siteforge/internal/fetcher"
	"github.com/sells-group/siteforge/internal/generator"
	"github.com/sells-group/siteforge/internal/onboard"
	"github.com/sells-group/siteforge/internal/resilience"
	"github.com/sells-group/siteforge/internal/scraper"
	"github.com/sells-group/siteforge/internal/store"
	"github.com/sells-group/siteforge/pkg/anthropic"
)

// generationCosts totals Anthropic usage for the life of the process.
var generationCosts = cost.NewCalculator(nil)

func newScraper(c *config.Config) *scraper.Scraper {
	f := fetcher.New(c.Scrape.Fetcher, c.Scrape.FetcherOptions())
	return scraper.New(f,
		scraper.WithProductPaths(c.Scrape.ProductPaths),
		scraper.WithProductCap(c.Scrape.ProductCap),
	)
}

// newGenerator wires the configured provider. Anthropic output always falls
// back to the template generator.
func newGenerator(c *config.Config) generator.Generator {
	tmpl := generator.TemplateGenerator{}
	switch c.Generator.Provider {
	case "template":
		return tmpl
	case "auto":
		if c.Anthropic.Key == "" {
			zap.L().Info("no anthropic key configured, using template generator")
			return tmpl
		}
	}

	policy := resilience.DefaultPolicy("anthropic.generate")
	policy.Attempts = c.Generator.RetryAttempts
	breaker := resilience.NewBreaker("anthropic",
		c.Generator.BreakerThreshold,
		time.Duration(c.Generator.BreakerCooldownSecs)*time.Second,
	)
	ai := generator.NewAnthropicGenerator(anthropic.NewClient(c.Anthropic.Key),
		generator.WithModel(c.Anthropic.Model),
		generator.WithMaxTokens(c.Anthropic.MaxTokens),
		generator.WithRetryPolicy(policy),
		generator.WithBreaker(breaker),
		generator.WithCostTracker(generationCosts),
	)
	return generator.Fallback{Primary: ai, Secondary: tmpl}
}

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &cfg.Store.Pool)
}

// newOnboardService builds the full onboarding stack. st may be nil.
func newOnboardService(c *config.Config, st store.Store) *onboard.Service {
	return onboard.New(newScraper(c), newGenerator(c), st)
}
