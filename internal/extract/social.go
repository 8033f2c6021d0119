package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/siteforge/internal/model"
)

// platformHosts maps registrable hosts to their social platform key.
var platformHosts = map[string]string{
	"instagram.com": model.PlatformInstagram,
	"instagr.am":    model.PlatformInstagram,
	"facebook.com":  model.PlatformFacebook,
	"fb.com":        model.PlatformFacebook,
	"fb.me":         model.PlatformFacebook,
	"twitter.com":   model.PlatformTwitter,
	"x.com":         model.PlatformTwitter,
	"linkedin.com":  model.PlatformLinkedIn,
	"youtube.com":   model.PlatformYouTube,
	"youtu.be":      model.PlatformYouTube,
	"tiktok.com":    model.PlatformTikTok,
}

// Paths that are share/intent widgets rather than a profile.
var shareMarkers = []string{
	"/sharer", "/share", "/intent/", "/dialog/", "/plugins/", "/shareArticle", "/embed/",
}

// PlatformFor returns the social platform key for rawURL, or "" when the
// host is not a known social network.
func PlatformFor(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	for {
		if p, ok := platformHosts[host]; ok {
			return p
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			return ""
		}
		host = host[i+1:]
	}
}

// SocialLinks collects the first profile link per platform from anchors on
// the page and from JSON-LD sameAs lists.
func SocialLinks(p *Page) map[string]string {
	out := map[string]string{}
	add := func(href string) {
		u := p.Resolve(href)
		if u == "" {
			return
		}
		platform := PlatformFor(u)
		if platform == "" {
			return
		}
		if _, ok := out[platform]; ok {
			return
		}
		if isShareLink(u) {
			return
		}
		out[platform] = u
	}

	p.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		add(s.AttrOr("href", ""))
	})
	for _, n := range p.JSONLD() {
		for _, v := range n.Get("sameAs").Array() {
			add(v.String())
		}
	}
	return out
}

func isShareLink(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return true
	}
	path := parsed.Path
	if path == "" || path == "/" {
		return true
	}
	for _, m := range shareMarkers {
		if strings.HasPrefix(strings.ToLower(path), strings.ToLower(m)) {
			return true
		}
	}
	return false
}
