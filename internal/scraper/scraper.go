// Package scraper turns a URL into a complete model.ScrapedData by chaining
// fetch, routing, pattern extraction and product discovery.
package scraper

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/siteforge/internal/classify"
	"github.com/sells-group/siteforge/internal/extract"
	"github.com/sells-group/siteforge/internal/fetcher"
	"github.com/sells-group/siteforge/internal/model"
	"github.com/sells-group/siteforge/internal/product"
	"github.com/sells-group/siteforge/internal/social"
)

// DefaultProductCap stops product-listing follow-ups once this many products
// have been collected.
const DefaultProductCap = 8

// DefaultProductPaths are tried in order when the main page shows
// storefront signals but no products.
var DefaultProductPaths = []string{
	"/products", "/shop", "/collections", "/collections/all", "/store", "/catalog", "/all-products",
}

// Scraper runs the website pipeline and delegates social profile URLs to a
// social.Scraper. It holds no per-scrape state and is safe for concurrent use.
type Scraper struct {
	fetcher      fetcher.Fetcher
	social       *social.Scraper
	productPaths []string
	productCap   int
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithProductPaths replaces the ordered list of product-listing paths.
func WithProductPaths(paths []string) Option {
	return func(s *Scraper) {
		s.productPaths = append([]string(nil), paths...)
	}
}

// WithProductCap sets the follow-up product cap. Values <= 0 keep the default.
func WithProductCap(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.productCap = n
		}
	}
}

// New creates a Scraper that fetches through f.
func New(f fetcher.Fetcher, opts ...Option) *Scraper {
	s := &Scraper{
		fetcher:      f,
		social:       social.New(f),
		productPaths: DefaultProductPaths,
		productCap:   DefaultProductCap,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var (
	defaultOnce    sync.Once
	defaultScraper *Scraper
)

// ScrapeWebsite scrapes rawURL with a default HTTP fetcher.
func ScrapeWebsite(ctx context.Context, rawURL string) *model.ScrapedData {
	defaultOnce.Do(func() {
		defaultScraper = New(fetcher.NewHTTPFetcher(fetcher.Options{}))
	})
	return defaultScraper.Scrape(ctx, rawURL)
}

// Scrape always returns a complete record. Unreachable pages, bad URLs and
// extractor failures all degrade to defaults; nothing is returned as an error.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (d *model.ScrapedData) {
	log := zap.L().With(zap.String("url", rawURL))
	defer func() {
		if r := recover(); r != nil {
			log.Error("scraper: scrape panicked, returning defaults", zap.Any("panic", r))
			d = model.NewScrapedData(rawURL)
		}
		d.Finalize()
	}()

	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		log.Warn("scraper: invalid url", zap.Error(err))
		return model.NewScrapedData(rawURL)
	}

	route := RouteURL(normalized)
	if route.Kind == RouteSocial {
		log.Debug("scraper: routing to social scraper", zap.String("platform", route.Platform))
		return s.social.Scrape(ctx, normalized)
	}

	body, ok := s.fetcher.Fetch(ctx, normalized)
	if !ok {
		log.Info("scraper: main page unavailable, returning defaults")
		return model.NewScrapedData(normalized)
	}

	d = model.NewScrapedData(normalized)
	d.SourceType = model.SourceWebsite
	d.Website = model.StringPtr(normalized)

	page := extract.Parse(body, normalized)
	extract.Apply(page, d)
	d.BusinessType = classify.Classify(strings.Join([]string{d.Title, d.Description, page.Text()}, " "), normalized)

	products, strategy := product.Extract(page)
	d.Products = products
	log.Debug("scraper: main page extracted",
		zap.String("business_type", string(d.BusinessType)),
		zap.Int("products", len(products)),
		zap.String("strategy", strategy),
	)

	if len(d.Products) == 0 && (d.BusinessType == model.BusinessTypeEcommerce || classify.HasEcommerceSignals(body)) {
		d.BusinessType = model.BusinessTypeEcommerce
		d.Products = s.followProductPages(ctx, normalized, d.Products)
	}

	if len(d.Products) == 0 {
		d.Products = product.Merge(d.Products, product.DeepJSONLD(page), 0)
		if len(d.Products) > 0 {
			log.Debug("scraper: products found in nested json-ld", zap.Int("products", len(d.Products)))
		}
	}

	d.BusinessType = classify.Promote(d.BusinessType, len(d.Products) > 0)
	if d.BusinessType == model.BusinessTypeEcommerce {
		d.SourceType = model.SourceEcommerce
	}
	d.Confidence = d.ScoreConfidence()

	log.Info("scraper: scrape complete",
		zap.String("business_type", string(d.BusinessType)),
		zap.Int("products", len(d.Products)),
		zap.String("confidence", string(d.Confidence)),
	)
	return d
}

// followProductPages fetches candidate listing pages one at a time, merging
// products until the cap is reached or the candidates run out.
func (s *Scraper) followProductPages(ctx context.Context, pageURL string, have []model.ProductData) []model.ProductData {
	products := have
	for _, u := range CandidateURLs(pageURL, s.productPaths) {
		if len(products) >= s.productCap {
			break
		}
		if ctx.Err() != nil {
			zap.L().Debug("scraper: context done, stopping product follow-up", zap.Error(ctx.Err()))
			break
		}
		got := s.scrapeProductPage(ctx, u)
		products = product.Merge(products, got, s.productCap)
	}
	return products
}

// scrapeProductPage returns the products on one candidate page. Failures of
// any kind yield nil so the caller moves on to the next candidate.
func (s *Scraper) scrapeProductPage(ctx context.Context, u string) (out []model.ProductData) {
	log := zap.L().With(zap.String("url", u))
	defer func() {
		if r := recover(); r != nil {
			log.Warn("scraper: product page panicked", zap.Any("panic", r))
			out = nil
		}
	}()

	body, ok := s.fetcher.Fetch(ctx, u)
	if !ok {
		log.Debug("scraper: product page unavailable")
		return nil
	}
	got, strategy := product.Extract(extract.Parse(body, u))
	log.Debug("scraper: product page extracted", zap.Int("products", len(got)), zap.String("strategy", strategy))
	return got
}
