package social

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sells-group/siteforge/internal/extract"
	"github.com/sells-group/siteforge/internal/fetcher"
	"github.com/sells-group/siteforge/internal/model"
)

// Markers served to logged-out viewers in place of a profile.
var platformWallMarkers = map[string][]string{
	model.PlatformInstagram: {`id="loginform"`, `"loginpage"`, "login • instagram"},
	model.PlatformFacebook:  {"you must log in to continue", `id="login_form"`, "log in or sign up to view"},
	model.PlatformTwitter:   {"javascript is not available", "something went wrong, but don’t fret"},
	model.PlatformLinkedIn:  {"authwall", "sign in to see", "join now to see"},
	model.PlatformTikTok:    {"log in to tiktok", "verify to continue"},
}

// Page titles that mean the platform showed its landing or login page.
var wallTitles = map[string]bool{
	"instagram":                    true,
	"login • instagram":            true,
	"facebook":                     true,
	"facebook - log in or sign up": true,
	"log in or sign up to view":    true,
	"x":                            true,
	"linkedin":                     true,
	"linkedin login, sign in":      true,
	"sign up | linkedin":           true,
	"tiktok - make your day":       true,
	"make your day":                true,
}

// loginWall reports whether a fetched profile page is a login wall or other
// block rather than public profile markup.
func loginWall(platform, body string, p *extract.Page) (bool, fetcher.BlockType) {
	if blocked, kind := fetcher.DetectBlock(0, nil, []byte(body)); blocked {
		return true, kind
	}
	lower := strings.ToLower(body)
	for _, m := range platformWallMarkers[platform] {
		if strings.Contains(lower, m) {
			return true, fetcher.BlockLoginWall
		}
	}
	title := strings.ToLower(strings.TrimSpace(p.Doc.Find("title").First().Text()))
	og := p.Meta("og:title")
	if wallTitles[title] && og == "" {
		return true, fetcher.BlockLoginWall
	}
	return false, fetcher.BlockNone
}

// profileNode returns the JSON-LD entity describing the profile owner, or an
// empty result. ProfilePage.mainEntity is preferred over bare Organization or
// Person nodes.
func profileNode(p *extract.Page) gjson.Result {
	for _, n := range p.JSONLD() {
		if extract.LDType(n, "ProfilePage") {
			if me := n.Get("mainEntity"); me.IsObject() {
				return me
			}
			if a := n.Get("author"); a.IsObject() {
				return a
			}
		}
	}
	for _, n := range p.JSONLD() {
		if extract.LDType(n, "Organization", "LocalBusiness", "Person", "Brand") {
			return n
		}
	}
	return gjson.Result{}
}
