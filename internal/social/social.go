// Package social scrapes public social-network profile pages into the same
// ScrapedData shape as the website pipeline.
package social

import (
	"context"
	"html"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/siteforge/internal/classify"
	"github.com/sells-group/siteforge/internal/extract"
	"github.com/sells-group/siteforge/internal/fetcher"
	"github.com/sells-group/siteforge/internal/model"
)

// Supported lists the platforms with a dedicated profile scraper.
var Supported = []string{
	model.PlatformInstagram,
	model.PlatformFacebook,
	model.PlatformTikTok,
	model.PlatformTwitter,
	model.PlatformLinkedIn,
}

// Platform returns the supported social platform for rawURL, or "" when the
// URL should go through the website pipeline.
func Platform(rawURL string) string {
	p := extract.PlatformFor(rawURL)
	for _, s := range Supported {
		if p == s {
			return p
		}
	}
	return ""
}

// Scraper scrapes social profile pages as a logged-out viewer.
type Scraper struct {
	fetcher fetcher.Fetcher
}

// New creates a Scraper that fetches pages through f.
func New(f fetcher.Fetcher) *Scraper {
	return &Scraper{fetcher: f}
}

// Scrape returns a populated record for the profile at rawURL. It never
// fails: unreachable or login-walled profiles yield a defaulted record with
// the profile link and a handle-derived title.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (d *model.ScrapedData) {
	d = model.NewScrapedData(rawURL)
	d.SourceType = model.SourceSocial

	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("social: scrape panicked", zap.String("url", rawURL), zap.Any("panic", r))
			d = model.NewScrapedData(rawURL)
			d.SourceType = model.SourceSocial
		}
		d.Finalize()
	}()

	platform := Platform(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || platform == "" {
		return d
	}
	handle := Handle(platform, u)
	if handle != "" {
		d.SocialLinks[platform] = profileURL(u)
		d.Title = DisplayName(handle)
	}

	log := zap.L().With(zap.String("url", rawURL), zap.String("platform", platform))

	body, ok := s.fetcher.Fetch(ctx, rawURL)
	if !ok {
		log.Info("social: profile unavailable, using defaults")
		return d
	}
	page := extract.Parse(body, rawURL)
	if wall, kind := loginWall(platform, body, page); wall {
		log.Info("social: login wall, using defaults", zap.String("block", string(kind)))
		return d
	}

	apply(d, platform, page)
	d.Confidence = d.ScoreConfidence()
	log.Debug("social: profile scraped",
		zap.String("title", d.Title),
		zap.String("confidence", string(d.Confidence)),
	)
	return d
}

func apply(d *model.ScrapedData, platform string, p *extract.Page) {
	profile := profileNode(p)

	if t := CleanTitle(p.Meta("og:title", "twitter:title")); t != "" {
		d.Title = t
	} else if n := profile.Get("name").String(); n != "" {
		d.Title = strings.TrimSpace(n)
	}

	bio := CleanBio(p.Meta("og:description", "twitter:description", "description"))
	if bio == "" {
		bio = CleanBio(profile.Get("description").String())
	}
	d.Description = bio

	if img := p.Meta("og:image", "twitter:image"); img != "" {
		d.Logo = model.StringPtr(p.Resolve(img))
	} else if img := profile.Get("image").String(); img != "" {
		d.Logo = model.StringPtr(p.Resolve(img))
	}

	// Contact details only come from the bio, never from page chrome.
	bioPage := extract.Parse("<p>"+html.EscapeString(bio)+"</p>", "")
	d.Email = extract.Email(bioPage)
	d.Phone = extract.Phone(bioPage)
	d.Address = extract.Address(bioPage)

	links := BioLinks(bio)
	for _, v := range profile.Get("sameAs").Array() {
		links = append(links, v.String())
	}
	if w := profile.Get("url").String(); w != "" {
		links = append(links, w)
	}
	for _, l := range links {
		switch other := extract.PlatformFor(l); {
		case other == "":
			if d.Website == nil {
				d.Website = model.StringPtr(l)
			}
		case other != platform:
			if _, ok := d.SocialLinks[other]; !ok {
				d.SocialLinks[other] = l
			}
		}
	}

	d.BusinessType = classify.Classify(d.Title+" "+bio, "")
}

var reservedSegments = map[string]bool{
	"p": true, "reel": true, "reels": true, "explore": true, "watch": true, "home": true,
	"hashtag": true, "i": true, "search": true, "share": true, "video": true, "stories": true,
	"login": true, "accounts": true, "groups": true, "events": true,
}

// Handle extracts the account handle from a profile URL path.
func Handle(platform string, u *url.URL) string {
	segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segs) == 0 {
		return ""
	}
	switch platform {
	case model.PlatformLinkedIn:
		if len(segs) >= 2 {
			switch segs[0] {
			case "company", "in", "school", "showcase":
				return segs[1]
			}
		}
		return ""
	case model.PlatformFacebook:
		if segs[0] == "profile.php" {
			return u.Query().Get("id")
		}
		if segs[0] == "pages" && len(segs) >= 2 {
			return segs[1]
		}
	}
	h := strings.TrimPrefix(segs[0], "@")
	if reservedSegments[strings.ToLower(h)] {
		return ""
	}
	return h
}

var handleSepRe = regexp.MustCompile(`[._\-]+`)

// DisplayName turns a handle into a readable name ("joes_pizza" → "Joes Pizza").
func DisplayName(handle string) string {
	s := strings.TrimSpace(handleSepRe.ReplaceAllString(handle, " "))
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}

var (
	titleSeparators = []string{" • ", " | ", " / ", " - ", " on TikTok", " on X", " on Instagram"}
	handleParenRe   = regexp.MustCompile(`\s*\(@[^)]*\)`)
)

// CleanTitle strips platform suffixes and "(@handle)" from a profile title.
func CleanTitle(t string) string {
	t = strings.TrimSpace(t)
	for _, sep := range titleSeparators {
		if i := strings.Index(t, sep); i > 0 {
			t = t[:i]
		}
	}
	return strings.TrimSpace(handleParenRe.ReplaceAllString(t, ""))
}

var (
	countsRe = regexp.MustCompile(`(?i)\d[\d.,]*\s*[kmb]?\s+(?:followers?|following|posts?|likes?|talking about this|were here|connections?)\b[,·.\s]*`)
	// Platform boilerplate that carries no bio text.
	boilerplateRe = regexp.MustCompile(`(?i)^(?:-\s*)?(?:see instagram photos and videos from|the latest (?:tweets|posts) from|watch the latest videos? from|log into facebook|sign up for facebook|tiktok video from)\b.*$`)
	bioURLRe      = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+|\b[a-z0-9-]+\.(?:com|net|org|co|io|shop|store|biz)(?:/[^\s<>"']*)?\b`)
)

// CleanBio removes follower counts and platform boilerplate from a profile
// description.
func CleanBio(s string) string {
	s = countsRe.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.Trim(strings.TrimSpace(s), "-·|,. ")
	if boilerplateRe.MatchString(s) {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// BioLinks returns URLs mentioned in bio text, normalized to https.
func BioLinks(bio string) []string {
	var out []string
	for _, loc := range bioURLRe.FindAllStringIndex(bio, -1) {
		// Domain part of an email address.
		if loc[0] > 0 && bio[loc[0]-1] == '@' {
			continue
		}
		m := strings.TrimRight(bio[loc[0]:loc[1]], ".,;:!?)")
		if !strings.HasPrefix(strings.ToLower(m), "http") {
			m = "https://" + m
		}
		out = append(out, m)
	}
	return out
}

func profileURL(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	c.Fragment = ""
	if c.Path == "/profile.php" {
		c.RawQuery = "id=" + u.Query().Get("id")
	}
	return c.String()
}
