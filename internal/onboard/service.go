// Package onboard turns a URL into a persisted business: scrape, generate
// copy, save.
package onboard

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/siteforge/internal/generator"
	"github.com/sells-group/siteforge/internal/model"
	"github.com/sells-group/siteforge/internal/scraper"
	"github.com/sells-group/siteforge/internal/store"
)

// ErrInvalidURL is returned when the URL cannot be normalized.
var ErrInvalidURL = eris.New("onboard: invalid url")

// NeedsContent is added to NeedsInput when no copy could be generated.
const NeedsContent = "content"

// Scraper produces scraped data for a URL. *scraper.Scraper satisfies it.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) *model.ScrapedData
}

// Service runs the onboarding flow.
type Service struct {
	scraper   Scraper
	generator generator.Generator
	store     store.Store
}

// New creates a Service. st may be nil when only Build is used.
func New(s Scraper, g generator.Generator, st store.Store) *Service {
	return &Service{scraper: s, generator: g, store: st}
}

// Build scrapes rawURL and generates copy without persisting anything.
// Only an unusable URL is an error; scrape and generation failures degrade
// to defaults and are listed in NeedsInput.
func (s *Service) Build(ctx context.Context, rawURL string) (*model.Business, error) {
	normalized, err := scraper.NormalizeURL(rawURL)
	if err != nil {
		return nil, eris.Wrap(ErrInvalidURL, err.Error())
	}
	log := zap.L().With(zap.String("url", normalized))

	d := s.scraper.Scrape(ctx, normalized)
	b := &model.Business{
		Name:         displayName(d, normalized),
		SourceURL:    normalized,
		BusinessType: d.BusinessType,
		ScrapedData:  d,
		NeedsInput:   d.MissingFields(),
	}
	if b.NeedsInput == nil {
		b.NeedsInput = []string{}
	}

	in := generator.InputFrom(d)
	if in.Name == "" {
		in.Name = b.Name
	}
	content, err := s.generator.Generate(ctx, in)
	if err != nil {
		log.Warn("onboard: content generation failed", zap.Error(err))
		b.NeedsInput = append(b.NeedsInput, NeedsContent)
	} else {
		b.GeneratedContent = content
	}

	log.Info("onboard: built business",
		zap.String("business_type", string(b.BusinessType)),
		zap.String("confidence", string(d.Confidence)),
		zap.Int("products", len(d.Products)),
		zap.Strings("needs_input", b.NeedsInput),
	)
	return b, nil
}

// Onboard builds and saves a business.
func (s *Service) Onboard(ctx context.Context, rawURL string) (*model.Business, error) {
	if s.store == nil {
		return nil, eris.New("onboard: no store configured")
	}
	b, err := s.Build(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveBusiness(ctx, b); err != nil {
		return nil, eris.Wrap(err, "onboard: save business")
	}
	return b, nil
}

// displayName prefers the scraped title and falls back to the bare host.
func displayName(d *model.ScrapedData, normalized string) string {
	if t := strings.TrimSpace(d.Title); t != "" {
		return t
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return normalized
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
