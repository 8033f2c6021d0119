package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxDescriptionLen = 300

// titleSeparators split "<name> | <tagline>" style document titles.
var titleSeparators = []string{" | ", " – ", " — ", " - ", " :: ", " · "}

// Title prefers og:title and twitter:title, then the document <title> with
// any trailing tagline removed, then the first <h1>.
func Title(p *Page) string {
	if v := p.Meta("og:title", "twitter:title"); v != "" {
		return collapseSpace(v)
	}
	if v := collapseSpace(p.Doc.Find("title").First().Text()); v != "" {
		return trimTitleSuffix(v)
	}
	if v := collapseSpace(p.Doc.Find("h1").First().Text()); v != "" {
		return v
	}
	return ""
}

func trimTitleSuffix(title string) string {
	for _, sep := range titleSeparators {
		if i := strings.Index(title, sep); i > 0 {
			return strings.TrimSpace(title[:i])
		}
	}
	return title
}

// SiteName returns og:site_name or the JSON-LD Organization name.
func SiteName(p *Page) string {
	if v := p.Meta("og:site_name", "application-name"); v != "" {
		return collapseSpace(v)
	}
	for _, n := range p.JSONLD() {
		if LDType(n, "Organization", "LocalBusiness", "Restaurant", "Store", "WebSite") {
			if v := strings.TrimSpace(n.Get("name").String()); v != "" {
				return v
			}
		}
	}
	return ""
}

// Description prefers og:description, the meta description and
// twitter:description, then the first substantial paragraph.
func Description(p *Page) string {
	if v := p.Meta("og:description", "description", "twitter:description"); v != "" {
		return Truncate(collapseSpace(v), maxDescriptionLen)
	}
	var out string
	p.Doc.Find("main p, article p, section p, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseSpace(s.Text())
		if len(text) >= 40 {
			out = Truncate(text, maxDescriptionLen)
			return false
		}
		return true
	})
	return out
}

// Truncate shortens s to at most n bytes, preferring a word boundary in the
// second half and never splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	cut := s[:n]
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
