// Package product extracts storefront products from fetched pages.
package product

import (
	"strings"

	"github.com/sells-group/siteforge/internal/extract"
	"github.com/sells-group/siteforge/internal/model"
)

// Strategy extracts products from one page.
type Strategy struct {
	Name string
	Fn   func(*extract.Page) []model.ProductData
}

// Strategies lists the extraction strategies in order of specificity.
var Strategies = []Strategy{
	{Name: "jsonld", Fn: FromJSONLD},
	{Name: "shopify", Fn: FromShopify},
	{Name: "generic", Fn: FromGeneric},
}

// Extract runs the strategies in order and returns the first non-empty
// result together with the name of the strategy that produced it.
func Extract(p *extract.Page) ([]model.ProductData, string) {
	for _, s := range Strategies {
		if got := s.Fn(p); len(got) > 0 {
			return got, s.Name
		}
	}
	return []model.ProductData{}, ""
}

// Merge appends src to dst, skipping products whose normalized name is
// already present. The first occurrence wins and order is preserved.
// limit <= 0 means no cap.
func Merge(dst, src []model.ProductData, limit int) []model.ProductData {
	out := make([]model.ProductData, 0, len(dst)+len(src))
	seen := make(map[string]bool, len(dst)+len(src))
	for _, list := range [][]model.ProductData{dst, src} {
		for _, prod := range list {
			if limit > 0 && len(out) >= limit {
				return out
			}
			key := NameKey(prod.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, prod)
		}
	}
	return out
}

// NameKey is the dedup key for a product name.
func NameKey(name string) string {
	return strings.ToLower(cleanText(name))
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
