package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/siteforge/internal/model"
)

var (
	hexColorRe     = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	primaryVarRe   = regexp.MustCompile(`--[\w-]*(?:primary|brand|accent|main|theme)[\w-]*\s*:\s*(#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3}))\b`)
	secondaryVarRe = regexp.MustCompile(`--[\w-]*secondary[\w-]*\s*:\s*(#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3}))\b`)
)

// PrimaryColor looks for a brand color in the theme-color meta tag, then
// brand-named CSS custom properties, then the most frequent saturated hex
// color in inline CSS. Falls back to model.DefaultPrimaryColor.
func PrimaryColor(p *Page) string {
	if c := model.NormalizeHex(p.Meta("theme-color", "msapplication-TileColor")); c != "" && !isNeutral(c) {
		return c
	}
	css := inlineCSS(p)
	if m := primaryVarRe.FindStringSubmatch(css); m != nil {
		if c := model.NormalizeHex(m[1]); !isNeutral(c) {
			return c
		}
	}
	if c := dominantColor(css); c != "" {
		return c
	}
	return model.DefaultPrimaryColor
}

// SecondaryColor returns an explicitly declared secondary color when one
// exists and differs from primary; otherwise it derives one from primary.
func SecondaryColor(p *Page, primary string) string {
	if m := secondaryVarRe.FindStringSubmatch(inlineCSS(p)); m != nil {
		if c := model.NormalizeHex(m[1]); c != "" && c != model.NormalizeHex(primary) {
			return c
		}
	}
	return model.DeriveSecondaryColor(primary)
}

func inlineCSS(p *Page) string {
	var b strings.Builder
	p.Doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(s.Text())
		b.WriteByte('\n')
	})
	p.Doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(s.AttrOr("style", ""))
		b.WriteByte('\n')
	})
	return b.String()
}

// dominantColor returns the most frequent non-neutral color in css, ties
// resolved by first appearance.
func dominantColor(css string) string {
	counts := map[string]int{}
	var order []string
	for _, m := range hexColorRe.FindAllString(css, -1) {
		c := model.NormalizeHex(m)
		if c == "" || isNeutral(c) {
			continue
		}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}
	best, bestN := "", 0
	for _, c := range order {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}

// isNeutral reports whether c is close enough to white, black or gray that
// it is unlikely to be a brand color.
func isNeutral(c string) bool {
	_, s, l := model.HSL(c)
	return s < 0.15 || l > 0.95 || l < 0.05
}
