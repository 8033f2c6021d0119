package extract

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxFeatures = 8
	maxServices = 12
)

// Navigation and boilerplate phrases that show up inside feature/service
// lists but carry no information.
var boilerplatePhrases = map[string]bool{
	"learn more": true, "read more": true, "view all": true, "contact us": true,
	"home": true, "about": true, "about us": true, "get started": true,
	"book now": true, "shop now": true, "see more": true, "menu": true,
}

// Features collects short selling points from feature/benefit sections.
func Features(p *Page) []string {
	return collectPhrases(p, maxFeatures, []string{
		`[class*="feature"] h3`, `[class*="feature"] h4`, `[class*="feature"] li`,
		`[id*="feature"] h3`, `[id*="feature"] li`,
		`[class*="benefit"] h3`, `[class*="benefit"] li`,
		`[class*="why"] h3`, `[class*="why"] li`,
		`[class*="advantage"] li`, `[class*="usp"] li`,
	}, false)
}

// Services collects service names from service sections and from lists
// following a "Services" heading.
func Services(p *Page) []string {
	out := collectPhrases(p, maxServices, []string{
		`[class*="service"] h3`, `[class*="service"] h4`, `[class*="service"] li`,
		`[id*="service"] h3`, `[id*="service"] h4`, `[id*="service"] li`,
		`[itemprop="makesOffer"] [itemprop="name"]`,
	}, true)
	if len(out) > 0 {
		return out
	}

	// Heading-led lists: <h2>Our Services</h2><ul><li>...</li></ul>.
	p.Doc.Find("h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(h.Text()), "service") {
			return true
		}
		h.NextAllFiltered("ul, ol").First().Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
			out = addPhrase(out, collapseSpace(li.Text()), true)
			return len(out) < maxServices
		})
		return len(out) < maxServices
	})
	return out
}

func collectPhrases(p *Page, limit int, selectors []string, titleCase bool) []string {
	out := []string{}
	for _, sel := range selectors {
		p.Doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			out = addPhrase(out, collapseSpace(s.Text()), titleCase)
			return len(out) < limit
		})
		if len(out) >= limit {
			break
		}
	}
	return out
}

// addPhrase appends phrase when it is short, informative and not already
// present (exact match).
func addPhrase(out []string, phrase string, titleCase bool) []string {
	phrase = strings.TrimRight(strings.TrimLeft(phrase, "•-–—✓✔* "), ".:;, ")
	if len(phrase) < 3 || len(phrase) > 80 {
		return out
	}
	if words := len(strings.Fields(phrase)); words > 10 {
		return out
	}
	if boilerplatePhrases[strings.ToLower(phrase)] {
		return out
	}
	if titleCase && isLower(phrase) {
		phrase = cases.Title(language.English).String(phrase)
	}
	for _, existing := range out {
		if existing == phrase {
			return out
		}
	}
	return append(out, phrase)
}

func isLower(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
