package scraper

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/siteforge/internal/social"
)

// RouteKind selects the pipeline that handles a URL.
type RouteKind string

const (
	RouteWebsite RouteKind = "website"
	RouteSocial  RouteKind = "social"
)

// Route is the routing decision for a normalized URL.
type Route struct {
	Kind     RouteKind
	Platform string
}

// NormalizeURL trims raw and prepends https:// when no scheme is present.
// It fails only when the result has no usable host.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", eris.New("scraper: empty url")
	}
	if strings.HasPrefix(s, "//") {
		s = "https:" + s
	} else if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", eris.Wrapf(err, "scraper: parse url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", eris.Errorf("scraper: unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", eris.Errorf("scraper: url has no host: %q", raw)
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String(), nil
}

// RouteURL sends supported social profile hosts to the social scraper and
// everything else to the website pipeline.
func RouteURL(normalized string) Route {
	if p := social.Platform(normalized); p != "" {
		return Route{Kind: RouteSocial, Platform: p}
	}
	return Route{Kind: RouteWebsite}
}

// CandidateURLs joins each product-listing path onto the origin of pageURL,
// dropping the page itself and duplicates.
func CandidateURLs(pageURL string, paths []string) []string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return nil
	}
	origin := u.Scheme + "://" + u.Host
	self := strings.TrimRight(u.Path, "/")

	seen := map[string]bool{}
	var out []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if strings.TrimRight(p, "/") == self || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, origin+p)
	}
	return out
}
