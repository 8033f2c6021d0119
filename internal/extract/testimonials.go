package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/siteforge/internal/model"
)

const (
	maxTestimonials   = 10
	minTestimonialLen = 20
	maxTestimonialLen = 600
)

const testimonialSelector = `[class*="testimonial"], [class*="review"], [class*="quote"], [itemtype*="Review"], blockquote`

var ratingRe = regexp.MustCompile(`(?i)\b([1-5](?:\.\d)?)\s*(?:/\s*5|out of 5|stars?)\b`)

// Testimonials collects quote-like blocks with their attribution. Wrapper
// elements that merely contain several quote blocks are skipped so each
// quote is reported once.
func Testimonials(p *Page) []model.Testimonial {
	out := []model.Testimonial{}
	seen := map[string]bool{}

	candidates := p.Doc.Find(testimonialSelector)
	candidates.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Find(testimonialSelector).Length() >= 2 {
			return true
		}
		if s.Is("body, html, main, section") && s.Find("blockquote, p").Length() > 4 {
			return true
		}

		text := testimonialText(s)
		if len(text) < minTestimonialLen || len(text) > maxTestimonialLen || seen[text] {
			return true
		}
		seen[text] = true

		t := model.Testimonial{
			Name:   testimonialName(s, text),
			Text:   text,
			Rating: testimonialRating(s),
		}
		out = append(out, t)
		return len(out) < maxTestimonials
	})
	return out
}

func testimonialText(s *goquery.Selection) string {
	for _, sel := range []string{`[itemprop="reviewBody"]`, "blockquote", "q", `[class*="text"]`, `[class*="content"]`, `[class*="body"]`, "p"} {
		if t := collapseSpace(s.Find(sel).First().Text()); len(t) >= minTestimonialLen {
			return trimQuotes(t)
		}
	}
	// Fall back to own text minus the attribution line.
	clone := s.Clone()
	clone.Find("cite, footer, figcaption, [class*=author], [class*=name]").Remove()
	return trimQuotes(collapseSpace(clone.Text()))
}

func testimonialName(s *goquery.Selection, text string) string {
	for _, sel := range []string{`[itemprop="author"]`, "cite", `[class*="author"]`, `[class*="name"]`, "figcaption", "footer", "strong", "h4", "h5"} {
		name := collapseSpace(s.Find(sel).First().Text())
		name = strings.TrimLeft(name, "-–— ")
		if name != "" && len(name) <= 80 && name != text {
			return name
		}
	}
	// blockquote inside a figure commonly carries the attribution outside it.
	if s.Is("blockquote") {
		if name := collapseSpace(s.Parent().Find("figcaption, cite").First().Text()); name != "" && len(name) <= 80 {
			return strings.TrimLeft(name, "-–— ")
		}
	}
	return "Anonymous"
}

func testimonialRating(s *goquery.Selection) *int {
	if v, ok := s.Find(`[itemprop="ratingValue"]`).Attr("content"); ok {
		if n := parseRating(v); n != nil {
			return n
		}
	}
	if n := parseRating(s.Find(`[itemprop="ratingValue"]`).Text()); n != nil {
		return n
	}
	if v, ok := s.Attr("data-rating"); ok {
		if n := parseRating(v); n != nil {
			return n
		}
	}

	filled := s.Find(`[class*="star"][class*="full"], [class*="star"][class*="filled"], [class*="star"][class*="active"]`).Length()
	if filled >= 1 && filled <= 5 {
		return &filled
	}
	if stars := strings.Count(s.Text(), "★"); stars >= 1 && stars <= 5 {
		return &stars
	}
	if m := ratingRe.FindStringSubmatch(s.Text()); m != nil {
		return parseRating(m[1])
	}
	return nil
}

func parseRating(v string) *int {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 1 || f > 5 {
		return nil
	}
	n := int(f + 0.5)
	return &n
}

func trimQuotes(s string) string {
	return strings.TrimSpace(strings.Trim(s, `"'“”‘’ `))
}
