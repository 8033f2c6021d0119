package product

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/siteforge/internal/extract"
	"github.com/sells-group/siteforge/internal/model"
)

// cardSpec describes how to read one family of product-card markup.
type cardSpec struct {
	card    string
	name    []string
	sale    []string
	regular []string
	price   []string
	link    []string
}

// Shopify theme conventions (Dawn, Debut, Brooklyn, Supply and friends).
var shopifySpec = cardSpec{
	card: `.product-card, .grid-product, .card-wrapper, .product-item, .grid__item .card, .product-grid-item, .product-block`,
	name: []string{
		".product-card__title", ".card__heading", ".grid-product__title", ".product-item__title",
		".product-title", ".product-block__title", "h3", "h2", `a[href*="/products/"]`,
	},
	sale:    []string{".price-item--sale", ".price__sale .price-item", ".product-price--sale", ".sale-price", ".on-sale"},
	regular: []string{".price-item--regular", ".compare-at-price", ".product-price--compare", "s", "del", ".was-price"},
	price:   []string{".price", ".product-price", ".money", ".grid-product__price", ".product-item__price", `[class*="price"]`},
	link:    []string{`a[href*="/products/"]`, "a[href]"},
}

// Broad fallback covering WooCommerce loops and hand-rolled product grids.
var genericSpec = cardSpec{
	card: `li.product, .card-product, [class*="product-card"], [class*="productCard"], [class*="product-item"], [class*="product_item"], [class*="product-tile"], [itemtype*="schema.org/Product"]`,
	name: []string{
		".woocommerce-loop-product__title", `[itemprop="name"]`, `[class*="title"]`, `[class*="name"]`, "h2", "h3", "h4", "a",
	},
	sale:    []string{".price ins .amount", ".price ins", `[class*="sale"]`, `[class*="special"]`},
	regular: []string{".price del .amount", ".price del", "del", "s", `[class*="old"]`, `[class*="was"]`, `[class*="compare"]`},
	price:   []string{`[itemprop="price"]`, ".price .amount", ".price", `[class*="price"]`},
	link:    []string{"a[href]"},
}

// FromShopify reads Shopify-style product cards.
func FromShopify(p *extract.Page) []model.ProductData {
	return fromCards(p, shopifySpec)
}

// FromGeneric reads generic product-card markup. Cards wrapping other cards
// are treated as containers and skipped.
func FromGeneric(p *extract.Page) []model.ProductData {
	return fromCards(p, genericSpec)
}

func fromCards(p *extract.Page, spec cardSpec) []model.ProductData {
	var out []model.ProductData
	p.Doc.Find(spec.card).Each(func(_ int, card *goquery.Selection) {
		if card.Find(spec.card).Length() > 0 {
			return
		}
		name := firstText(card, spec.name)
		if name == "" || len(name) > 150 {
			return
		}

		prod := model.ProductData{Name: name}
		sale := ParsePrice(firstText(card, spec.sale))
		regular := ParsePrice(firstText(card, spec.regular))
		switch {
		case sale != nil && regular != nil && *sale < *regular:
			prod.Price, prod.SalePrice = regular, sale
		case sale != nil:
			prod.Price = sale
		default:
			prod.Price = cardPrice(card, spec.price)
			if prod.Price == nil {
				prod.Price = regular
			}
		}

		if prod.Price == nil {
			prod.Price = textPrice(card)
		}

		prod.Image = p.Resolve(extract.ImageSrc(card.Find("img").First()))
		prod.URL = p.Resolve(firstAttr(card, spec.link, "href"))

		// A card with neither price nor link is almost always a category
		// tile or marketing block.
		if prod.Price == nil && prod.URL == "" {
			return
		}
		out = append(out, prod)
	})
	return Merge(nil, out, 0)
}

// cardPrice reads the price from a content attribute when present,
// otherwise from element text.
func cardPrice(card *goquery.Selection, selectors []string) *float64 {
	for _, sel := range selectors {
		s := card.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		if v, ok := s.Attr("content"); ok {
			if f := ParsePrice(v); f != nil {
				return f
			}
		}
		if f := ParsePrice(s.Text()); f != nil {
			return f
		}
	}
	return nil
}

// currencyRe matches an amount with a currency symbol or code next to it.
var currencyRe = regexp.MustCompile(`(?i)[$€£¥]\s*\d[\d.,]*|\d[\d.,]*\s*(?:USD|EUR|GBP|€|£)`)

// textPrice scans the card's text nodes in document order for the first
// currency-shaped amount. Used when no price element is marked up.
func textPrice(card *goquery.Selection) *float64 {
	var found *float64
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
			switch goquery.NodeName(c) {
			case "#text":
				if m := currencyRe.FindString(c.Text()); m != "" {
					found = ParsePrice(m)
				}
			case "script", "style", "del", "s":
			default:
				walk(c)
			}
			return found == nil
		})
	}
	walk(card)
	return found
}

func firstText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if t := cleanText(s.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

func firstAttr(s *goquery.Selection, selectors []string, attr string) string {
	for _, sel := range selectors {
		if v := strings.TrimSpace(s.Find(sel).First().AttrOr(attr, "")); v != "" {
			return v
		}
	}
	// The card itself may be the link.
	if s.Is("a") {
		return strings.TrimSpace(s.AttrOr(attr, ""))
	}
	return ""
}
