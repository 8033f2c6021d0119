// Package classify maps page content onto a model.BusinessType using
// keyword scoring.
package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sells-group/siteforge/internal/model"
)

// MinHits is the score a category must reach before it is chosen over
// model.BusinessTypeOther.
const MinHits = 2

// category pairs a business type with its keywords. Order is the tie-break
// priority: earlier wins.
type category struct {
	Type     model.BusinessType
	Keywords []string
}

var categories = []category{
	{model.BusinessTypeEcommerce, []string{
		"add to cart", "add to bag", "shopping cart", "checkout", "free shipping", "shop now",
		"buy now", "in stock", "out of stock", "shopify", "woocommerce", "online store", "our products",
	}},
	{model.BusinessTypeRestaurant, []string{
		"menu", "reservation", "reservations", "restaurant", "dine in", "takeout", "take-out",
		"delivery", "cuisine", "brunch", "dinner", "lunch", "pizza", "bistro", "cafe", "chef",
	}},
	{model.BusinessTypeHealthcare, []string{
		"clinic", "patient", "patients", "doctor", "dental", "dentist", "medical", "physician",
		"therapy", "healthcare", "appointment", "treatment", "pediatric", "chiropractic",
	}},
	{model.BusinessTypeFitness, []string{
		"gym", "fitness", "workout", "personal training", "personal trainer", "crossfit", "yoga",
		"pilates", "membership", "classes", "strength", "bootcamp",
	}},
	{model.BusinessTypeBeauty, []string{
		"salon", "spa", "haircut", "hair", "nails", "manicure", "pedicure", "facial", "massage",
		"beauty", "barber", "lashes", "makeup", "skincare",
	}},
	{model.BusinessTypeRealEstate, []string{
		"real estate", "realtor", "listings", "property", "properties", "homes for sale",
		"mortgage", "realty", "broker", "open house", "for rent",
	}},
	{model.BusinessTypeEducation, []string{
		"school", "courses", "course", "students", "tutoring", "academy", "curriculum",
		"enroll", "enrollment", "lessons", "education", "university",
	}},
	{model.BusinessTypeAgency, []string{
		"agency", "digital marketing", "branding", "seo", "our clients", "case studies",
		"creative studio", "web design", "campaigns", "strategy",
	}},
	{model.BusinessTypePortfolio, []string{
		"portfolio", "my work", "selected work", "photographer", "photography", "illustrator",
		"designer", "artist", "projects", "about me", "commissions",
	}},
	{model.BusinessTypeService, []string{
		"services", "our services", "free estimate", "free quote", "get a quote", "licensed",
		"insured", "plumbing", "cleaning", "repair", "contractor", "consulting", "landscaping",
	}},
}

var patterns = compile(categories)

func compile(cats []category) map[model.BusinessType][]*regexp.Regexp {
	out := make(map[model.BusinessType][]*regexp.Regexp, len(cats))
	for _, c := range cats {
		for _, kw := range c.Keywords {
			out[c.Type] = append(out[c.Type], regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
	}
	return out
}

// Score returns the keyword hit count per business type. Each keyword counts
// once for the page text and twice when it appears in the URL host or path.
func Score(text, rawURL string) map[model.BusinessType]int {
	text = strings.ToLower(text)
	u := urlWords(rawURL)

	scores := make(map[model.BusinessType]int, len(categories))
	for _, c := range categories {
		for _, re := range patterns[c.Type] {
			if re.MatchString(text) {
				scores[c.Type]++
			}
			if u != "" && re.MatchString(u) {
				scores[c.Type] += 2
			}
		}
	}
	return scores
}

// Classify returns the highest-scoring business type. Ties go to the
// category listed first; scores under MinHits yield
// model.BusinessTypeOther.
func Classify(text, rawURL string) model.BusinessType {
	scores := Score(text, rawURL)
	best, bestScore := model.BusinessTypeOther, 0
	for _, c := range categories {
		if s := scores[c.Type]; s > bestScore {
			best, bestScore = c.Type, s
		}
	}
	if bestScore < MinHits {
		return model.BusinessTypeOther
	}
	return best
}

// Promote upgrades an ambiguous classification to ecommerce once products
// have been found.
func Promote(current model.BusinessType, productsFound bool) model.BusinessType {
	if !productsFound {
		return current
	}
	switch current {
	case model.BusinessTypeOther, model.BusinessTypeService, "":
		return model.BusinessTypeEcommerce
	}
	return current
}

var ecommerceMarkers = []string{
	"cdn.shopify.com", "shopify.theme", "myshopify.com", "woocommerce", "wc-add-to-cart",
	"bigcommerce", "squarespace-commerce", "ecwid", "/cart", "add-to-cart", "add to cart",
	"addtocart", "data-product-id", `"@type":"product"`, `"@type": "product"`, "og:type\" content=\"product",
}

// HasEcommerceSignals reports whether raw HTML carries storefront platform or
// cart markers.
func HasEcommerceSignals(html string) bool {
	lower := strings.ToLower(html)
	for _, m := range ecommerceMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// urlWords turns a URL's host and path into space-separated words so keyword
// patterns can match "joes-pizza.com/menu".
func urlWords(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	s := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www.") + " " + u.Path)
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '/' || r == '-' || r == '_' {
			return ' '
		}
		return r
	}, s)
}
