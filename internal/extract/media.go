package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

const maxGalleryImages = 12

var (
	bgImageRe = regexp.MustCompile(`background(?:-image)?\s*:[^;]*url\(\s*['"]?([^'")]+)['"]?\s*\)`)

	// Filenames that indicate chrome, tracking or decoration rather than
	// content imagery.
	nonContentImage = []string{
		"icon", "logo", "sprite", "pixel", "tracking", "spacer", "blank",
		"avatar", "badge", "favicon", "loader", "spinner", "emoji", "placeholder",
	}
)

var logoSelectors = []string{
	`[itemprop="logo"]`,
	`header img[class*="logo"]`,
	`header img[alt*="logo"]`,
	`img[class*="logo"]`,
	`img[id*="logo"]`,
	`img[alt*="logo"]`,
	`img[src*="logo"]`,
	`[class*="logo"] img`,
	`[id*="logo"] img`,
	`header img`,
	`nav img`,
}

// Logo finds the site logo from schema markup, logo-named images and header
// images, falling back to the apple-touch-icon.
func Logo(p *Page) *string {
	for _, n := range p.JSONLD() {
		if LDType(n, "Organization", "LocalBusiness", "Restaurant", "Store") {
			logo := n.Get("logo")
			if u := logo.Get("url").String(); u != "" {
				return ptr(p.Resolve(u))
			}
			if logo.Type == gjson.String {
				return ptr(p.Resolve(logo.String()))
			}
		}
	}
	for _, sel := range logoSelectors {
		if src := ImageSrc(p.Doc.Find(sel).First()); src != "" {
			if u := p.Resolve(src); u != "" {
				return &u
			}
		}
	}
	if href := p.Doc.Find(`link[rel="apple-touch-icon"]`).AttrOr("href", ""); href != "" {
		return ptr(p.Resolve(href))
	}
	return nil
}

var heroSelectors = []string{
	`[class*="hero"] img`,
	`[id*="hero"] img`,
	`[class*="banner"] img`,
	`[class*="jumbotron"] img`,
	`[class*="slider"] img`,
	`[class*="carousel"] img`,
}

// HeroImage prefers og:image and twitter:image, then images or CSS
// background images inside hero/banner sections.
func HeroImage(p *Page) *string {
	if v := p.Meta("og:image", "og:image:url", "twitter:image", "twitter:image:src"); v != "" {
		return ptr(p.Resolve(v))
	}
	for _, sel := range heroSelectors {
		if src := ImageSrc(p.Doc.Find(sel).First()); src != "" {
			if u := p.Resolve(src); u != "" {
				return &u
			}
		}
	}
	var out *string
	p.Doc.Find(`[class*="hero"], [class*="banner"], [id*="hero"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := bgImageRe.FindStringSubmatch(s.AttrOr("style", "")); m != nil {
			out = ptr(p.Resolve(m[1]))
			return out == nil
		}
		return true
	})
	return out
}

// GalleryImages collects content images, skipping icons, tracking pixels,
// tiny images and anything listed in exclude. Results are deduplicated by
// resolved URL.
func GalleryImages(p *Page, exclude ...string) []string {
	seen := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		if e != "" {
			seen[e] = true
		}
	}
	out := []string{}
	p.Doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := ImageSrc(s)
		if src == "" || !isContentImage(s, src) {
			return true
		}
		u := p.Resolve(src)
		if u == "" || seen[u] {
			return true
		}
		seen[u] = true
		out = append(out, u)
		return len(out) < maxGalleryImages
	})
	return out
}

func isContentImage(s *goquery.Selection, src string) bool {
	lower := strings.ToLower(src)
	if strings.HasSuffix(lower, ".svg") || strings.HasSuffix(lower, ".gif") || strings.HasSuffix(lower, ".ico") {
		return false
	}
	name := lower
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	meta := name + " " + strings.ToLower(s.AttrOr("class", "")+" "+s.AttrOr("alt", ""))
	for _, marker := range nonContentImage {
		if strings.Contains(meta, marker) {
			return false
		}
	}
	for _, attr := range []string{"width", "height"} {
		if v, ok := s.Attr(attr); ok {
			if n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px")); err == nil && n < 100 {
				return false
			}
		}
	}
	return true
}

// ImageSrc reads the best available source attribute of an <img>, preferring
// lazy-load attributes over placeholder src values.
func ImageSrc(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	if s.Is("meta") {
		return s.AttrOr("content", "")
	}
	for _, attr := range []string{"data-src", "data-lazy-src", "data-original", "src"} {
		if v := strings.TrimSpace(s.AttrOr(attr, "")); v != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	if set := s.AttrOr("srcset", ""); set != "" {
		if fields := strings.Fields(strings.Split(set, ",")[0]); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
