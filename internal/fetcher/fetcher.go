// Package fetcher retrieves raw HTML for the scraping pipeline.
package fetcher

import (
	"context"
	"time"
)

// Fetcher retrieves the HTML of a single page.
type Fetcher interface {
	// Fetch returns the page body and true on success. Any transport error,
	// timeout or non-2xx status yields ("", false); callers treat that as
	// "source unavailable" and continue with defaults.
	Fetch(ctx context.Context, url string) (string, bool)
}

// Func adapts a plain function to the Fetcher interface.
type Func func(ctx context.Context, url string) (string, bool)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, url string) (string, bool) {
	return f(ctx, url)
}

// Browser-like request defaults.
const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	DefaultTimeout        = 12 * time.Second
	DefaultMaxBodyBytes   = 2 << 20
)

// Options configures both fetcher implementations.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	// HostRPS throttles requests per host. Zero disables throttling.
	HostRPS float64
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return o
}

// New returns the fetcher named by kind ("http" or "colly"). Unknown kinds
// fall back to the HTTP fetcher.
func New(kind string, opts Options) Fetcher {
	if kind == "colly" {
		return NewCollyFetcher(opts)
	}
	return NewHTTPFetcher(opts)
}
