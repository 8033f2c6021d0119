// Package extract holds the per-field pattern extractors run over a fetched
// page. Each extractor is independent and returns its zero value on no match.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

// Page is a parsed HTML document plus the URL it was fetched from.
type Page struct {
	Doc  *goquery.Document
	Base *url.URL
	HTML string

	text   string
	ld     []gjson.Result
	parsed bool
}

// Parse builds a Page from raw HTML. Malformed markup is tolerated; Parse
// never returns nil.
func Parse(raw, baseURL string) *Page {
	p := &Page{HTML: raw}
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		p.Base = u
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		doc = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	p.Doc = doc
	return p
}

// Resolve returns href as an absolute URL against the page base. Empty,
// fragment-only, javascript: and data: references resolve to "".
func (p *Page) Resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "data:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		ref.Scheme = "https"
		if p.Base != nil {
			ref.Scheme = p.Base.Scheme
		}
		return ref.String()
	}
	if ref.IsAbs() || p.Base == nil {
		return ref.String()
	}
	return p.Base.ResolveReference(ref).String()
}

// Meta returns the content of the first non-empty meta tag matching any of
// keys, checked against both the property and name attributes.
func (p *Page) Meta(keys ...string) string {
	for _, k := range keys {
		for _, attr := range []string{"property", "name", "itemprop"} {
			sel := p.Doc.Find(`meta[` + attr + `="` + k + `"]`)
			if v := strings.TrimSpace(sel.AttrOr("content", "")); v != "" {
				return v
			}
		}
	}
	return ""
}

// Text returns the visible text of the page body with script, style and
// template content removed and whitespace collapsed.
func (p *Page) Text() string {
	if p.text != "" {
		return p.text
	}
	var b strings.Builder
	for _, n := range p.Doc.Nodes {
		collectText(n, &b)
	}
	p.text = collapseSpace(b.String())
	return p.text
}

// nodeText is Selection.Text with a space between adjacent text nodes, so
// "<p>a</p><p>b</p>" reads as "a b" rather than "ab".
func nodeText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		collectText(n, &b)
	}
	return collapseSpace(b.String())
}

// PlainText returns the readable text of an HTML fragment, such as a
// description field that carries markup.
func PlainText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return collapseSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}
	return nodeText(doc.Selection)
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template", "svg", "head":
			return
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// JSONLD returns every valid JSON-LD node on the page. Top-level arrays and
// @graph containers are flattened; blocks that fail to parse are skipped.
func (p *Page) JSONLD() []gjson.Result {
	if p.parsed {
		return p.ld
	}
	p.parsed = true
	p.Doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" || !gjson.Valid(raw) {
			return
		}
		p.ld = append(p.ld, flattenLD(gjson.Parse(raw))...)
	})
	return p.ld
}

func flattenLD(r gjson.Result) []gjson.Result {
	if r.IsArray() {
		var out []gjson.Result
		for _, item := range r.Array() {
			out = append(out, flattenLD(item)...)
		}
		return out
	}
	if !r.IsObject() {
		return nil
	}
	if g, ok := r.Map()["@graph"]; ok && g.IsArray() {
		out := []gjson.Result{r}
		for _, item := range g.Array() {
			out = append(out, flattenLD(item)...)
		}
		return out
	}
	return []gjson.Result{r}
}

// LDType reports whether a JSON-LD node's @type equals (or contains) any of
// types, compared case-insensitively.
func LDType(r gjson.Result, types ...string) bool {
	t, ok := r.Map()["@type"]
	if !ok {
		return false
	}
	var names []string
	if t.IsArray() {
		for _, v := range t.Array() {
			names = append(names, v.String())
		}
	} else {
		names = append(names, t.String())
	}
	for _, n := range names {
		for _, want := range types {
			if strings.EqualFold(n, want) {
				return true
			}
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
