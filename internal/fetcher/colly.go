package fetcher

import (
	"context"
	"net/http"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CollyFetcher implements Fetcher with a fresh colly collector per request.
type CollyFetcher struct {
	opts Options
}

// NewCollyFetcher creates a new CollyFetcher.
func NewCollyFetcher(opts Options) *CollyFetcher {
	return &CollyFetcher{opts: opts.withDefaults()}
}

// Fetch implements Fetcher.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (string, bool) {
	body, err := f.fetch(ctx, rawURL)
	if err != nil {
		zap.L().Debug("fetcher: colly fetch failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return "", false
	}
	return body, true
}

func (f *CollyFetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	c := colly.NewCollector(
		colly.UserAgent(f.opts.UserAgent),
		colly.MaxBodySize(int(f.opts.MaxBodyBytes)),
		colly.StdlibContext(ctx),
		colly.DetectCharset(),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.opts.Timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", DefaultAccept)
		r.Headers.Set("Accept-Language", DefaultAcceptLanguage)
		r.Headers.Set("Cache-Control", "no-cache")
		r.Headers.Set("Pragma", "no-cache")
	})

	var (
		body     string
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode < 200 || r.StatusCode > 299 {
			fetchErr = eris.Errorf("fetcher: unexpected status %d from %s", r.StatusCode, rawURL)
			return
		}
		var header http.Header
		if r.Headers != nil {
			header = *r.Headers
		}
		if err := rejectChallenge(rawURL, r.StatusCode, header, r.Body); err != nil {
			fetchErr = err
			return
		}
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = eris.Wrap(err, "fetcher: colly response")
	})

	if err := c.Visit(rawURL); err != nil {
		return "", eris.Wrap(err, "fetcher: colly visit")
	}
	if fetchErr != nil {
		return "", fetchErr
	}
	return body, nil
}
