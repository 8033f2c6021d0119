package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	phoneRe = regexp.MustCompile(`(?:\+\d{1,3}[\s.-]?)?\(?\d{2,4}\)?[\s.-]?\d{3,4}[\s.-]?\d{3,4}\b`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,24}`)

	streetRe = regexp.MustCompile(
		`\b\d{1,5}\s+(?:[A-Z0-9][\w.'-]*\s+){1,4}` +
			`(?i:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Court|Ct|Place|Pl|Parkway|Pkwy|Highway|Hwy|Square|Sq|Terrace|Circle)\b\.?` +
			`(?:,?\s+(?:Suite|Ste|Unit|#)\s*[\w-]+)?` +
			`(?:,\s*[A-Z][a-zA-Z.]*(?:\s[A-Z][a-zA-Z.]*)*)?` +
			`(?:,\s*[A-Z]{2})?` +
			`(?:\s+\d{5}(?:-\d{4})?)?`)
)

// Email hosts and suffixes that show up in markup but are never a business
// contact address.
var ignoredEmail = []string{
	"example.com", "domain.com", "sentry.io", "wixpress.com", "sentry-next.wixpress.com",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg",
}

// Phone prefers tel: links, then phone-shaped text. With several text
// matches, numbers near "call"/"phone" win over ones near "fax"/"support".
func Phone(p *Page) *string {
	var out *string
	p.Doc.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimPrefix(s.AttrOr("href", ""), "tel:")
		if dec, err := url.PathUnescape(raw); err == nil {
			raw = dec
		}
		raw = strings.TrimSpace(raw)
		if n := len(phoneDigits(raw)); n >= 7 && n <= 15 {
			out = &raw
			return false
		}
		return true
	})
	if out != nil {
		return out
	}

	text := p.Text()
	matches := phoneRe.FindAllStringIndex(text, 20)
	best, bestScore := "", -1000
	for _, idx := range matches {
		cand := strings.TrimSpace(text[idx[0]:idx[1]])
		if n := len(phoneDigits(cand)); n < 10 || n > 15 {
			continue
		}
		if looksLikeDateOrID(cand) {
			continue
		}
		score := phoneContextScore(text, idx[0], idx[1])
		if best == "" || score > bestScore {
			best, bestScore = cand, score
		}
	}
	return ptr(best)
}

// phoneContextScore weighs keywords within 60 bytes either side of a match.
func phoneContextScore(text string, start, end int) int {
	lo := max(start-60, 0)
	hi := min(end+60, len(text))
	window := strings.ToLower(text[lo:hi])
	score := 0
	for _, kw := range []string{"phone", "call", "tel", "contact", "mobile"} {
		if strings.Contains(window, kw) {
			score++
		}
	}
	for _, kw := range []string{"fax", "toll-free", "toll free", "support"} {
		if strings.Contains(window, kw) {
			score--
		}
	}
	return score
}

func phoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// looksLikeDateOrID rejects long unbroken digit runs (order numbers,
// timestamps) that the phone pattern would otherwise accept.
func looksLikeDateOrID(s string) bool {
	return !strings.ContainsAny(s, " .-()+") && len(s) > 10
}

// Email prefers mailto: links, then email-shaped text.
func Email(p *Page) *string {
	var out *string
	p.Doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		addr := strings.TrimPrefix(s.AttrOr("href", ""), "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if dec, err := url.PathUnescape(addr); err == nil {
			addr = dec
		}
		addr = strings.TrimSpace(addr)
		if emailRe.MatchString(addr) && !ignoredEmailAddr(addr) {
			out = &addr
			return false
		}
		return true
	})
	if out != nil {
		return out
	}
	for _, m := range emailRe.FindAllString(p.Text(), 20) {
		if !ignoredEmailAddr(m) {
			return &m
		}
	}
	return nil
}

func ignoredEmailAddr(addr string) bool {
	lower := strings.ToLower(addr)
	for _, bad := range ignoredEmail {
		if strings.HasSuffix(lower, bad) {
			return true
		}
	}
	return false
}

// Address checks JSON-LD PostalAddress, then <address> and itemprop markup,
// then a street-address pattern over the page text.
func Address(p *Page) *string {
	for _, n := range p.JSONLD() {
		addr := n.Get("address")
		if addr.IsArray() {
			addr = addr.Get("0")
		}
		if !addr.Exists() {
			continue
		}
		if !addr.IsObject() {
			if v := collapseSpace(addr.String()); v != "" {
				return &v
			}
			continue
		}
		var parts []string
		for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode"} {
			if v := strings.TrimSpace(addr.Get(key).String()); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			return ptr(strings.Join(parts, ", "))
		}
	}

	for _, sel := range []string{`[itemprop="address"]`, "address", `[class*="address"]`} {
		text := nodeText(p.Doc.Find(sel).First())
		if m := streetRe.FindString(text); m != "" {
			return ptr(strings.TrimSpace(m))
		}
		if len(text) >= 10 && len(text) <= 200 && strings.ContainsAny(text, "0123456789") {
			return &text
		}
	}

	return ptr(strings.TrimSpace(streetRe.FindString(p.Text())))
}
