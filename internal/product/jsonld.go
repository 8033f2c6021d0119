package product

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sells-group/siteforge/internal/extract"
	"github.com/sells-group/siteforge/internal/model"
)

const maxDescriptionLen = 300

// FromJSONLD reads Product nodes from the page's JSON-LD: top-level objects,
// arrays, @graph members and ItemList elements. Blocks that fail to parse
// are skipped individually.
func FromJSONLD(p *extract.Page) []model.ProductData {
	var out []model.ProductData
	for _, n := range p.JSONLD() {
		switch {
		case extract.LDType(n, "Product", "ProductGroup"):
			out = appendLDProduct(out, p, n)
		case extract.LDType(n, "ItemList", "OfferCatalog"):
			for _, el := range n.Get("itemListElement").Array() {
				out = appendLDProduct(out, p, listItem(el))
			}
		}
	}
	return Merge(nil, out, 0)
}

// DeepJSONLD walks every JSON-LD node recursively and returns any Product
// found at any depth (mainEntity, hasOfferCatalog, itemOffered and so on).
func DeepJSONLD(p *extract.Page) []model.ProductData {
	var out []model.ProductData
	var walk func(r gjson.Result, depth int)
	walk = func(r gjson.Result, depth int) {
		if depth > 12 {
			return
		}
		switch {
		case r.IsArray():
			for _, v := range r.Array() {
				walk(v, depth+1)
			}
		case r.IsObject():
			if extract.LDType(r, "Product") {
				out = appendLDProduct(out, p, r)
			}
			r.ForEach(func(key, v gjson.Result) bool {
				if key.String() != "offers" {
					walk(v, depth+1)
				}
				return true
			})
		}
	}
	for _, n := range p.JSONLD() {
		walk(n, 0)
	}
	return Merge(nil, out, 0)
}

// listItem unwraps a ListItem to the entity it points at.
func listItem(el gjson.Result) gjson.Result {
	if item := el.Get("item"); item.IsObject() {
		return item
	}
	if item := el.Get("itemOffered"); item.IsObject() {
		return item
	}
	return el
}

func appendLDProduct(out []model.ProductData, p *extract.Page, n gjson.Result) []model.ProductData {
	name := cleanText(n.Get("name").String())
	if name == "" {
		return out
	}
	prod := model.ProductData{
		Name:        name,
		Description: extract.Truncate(extract.PlainText(n.Get("description").String()), maxDescriptionLen),
		Image:       p.Resolve(ldImage(n.Get("image"))),
		URL:         p.Resolve(n.Get("url").String()),
		Category:    ldCategory(n.Get("category")),
	}

	offers := n.Get("offers")
	if offers.IsArray() {
		offers = offers.Get("0")
	}
	if offers.Exists() {
		prod.Price = ldPrice(offers.Get("price"))
		if prod.Price == nil {
			prod.Price = ldPrice(offers.Get("lowPrice"))
		}
		if prod.Price == nil {
			prod.Price = ldPrice(offers.Get("priceSpecification.price"))
		}
	}
	return append(out, prod)
}

func ldImage(r gjson.Result) string {
	switch {
	case r.IsArray():
		return ldImage(r.Get("0"))
	case r.IsObject():
		if u := r.Get("url").String(); u != "" {
			return u
		}
		return r.Get("contentUrl").String()
	default:
		return r.String()
	}
}

func ldCategory(r gjson.Result) string {
	if r.IsArray() {
		return ldCategory(r.Get("0"))
	}
	if r.IsObject() {
		return cleanText(r.Get("name").String())
	}
	cat := cleanText(r.String())
	// Google taxonomy paths: "Food > Pizza" keeps the leaf.
	if i := strings.LastIndex(cat, ">"); i >= 0 {
		cat = strings.TrimSpace(cat[i+1:])
	}
	return cat
}
