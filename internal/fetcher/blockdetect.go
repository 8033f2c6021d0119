package fetcher

import (
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
	BlockLoginWall  BlockType = "login_wall"
)

// smallPage bounds the body size at which weak markers (captcha widgets,
// login forms) are treated as a block rather than incidental page content.
const smallPage = 64 << 10

var loginWallMarkers = []string{
	"log in to continue",
	"login to continue",
	"sign in to continue",
	"you must log in",
	"log into facebook",
	"join linkedin",
	"authwall",
	"accounts/login",
	"create an account or log in",
}

// DetectBlock checks a response for signs of anti-bot protection or a login
// wall. status and header may be zero values when only the body is known.
func DetectBlock(status int, header http.Header, body []byte) (bool, BlockType) {
	if status == http.StatusForbidden || status == http.StatusServiceUnavailable {
		if header.Get("cf-ray") != "" || header.Get("cf-cache-status") != "" ||
			strings.EqualFold(header.Get("server"), "cloudflare") {
			return true, BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cf-challenge") {
		return true, BlockCloudflare
	}

	if len(body) < smallPage {
		if strings.Contains(lower, "g-recaptcha") ||
			strings.Contains(lower, "h-captcha") ||
			strings.Contains(lower, "captcha-container") {
			return true, BlockCaptcha
		}
		for _, m := range loginWallMarkers {
			if strings.Contains(lower, m) {
				return true, BlockLoginWall
			}
		}
	}

	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, `http-equiv="refresh"`) {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}

// challengePage bounds the body size of a captcha interstitial. Larger pages
// carrying a captcha widget are usually real content with a protected form.
const challengePage = 16 << 10

// rejectChallenge returns an error when body is an anti-bot interstitial
// instead of site content. Login walls and JS shells pass through so the
// social scraper can read what they expose.
func rejectChallenge(rawURL string, status int, header http.Header, body []byte) error {
	blocked, kind := DetectBlock(status, header, body)
	if !blocked {
		return nil
	}
	switch {
	case kind == BlockCloudflare, kind == BlockCaptcha && len(body) < challengePage:
		return eris.Errorf("fetcher: %s challenge from %s", kind, rawURL)
	}
	zap.L().Debug("fetcher: block page detected",
		zap.String("url", rawURL),
		zap.String("block_type", string(kind)),
	)
	return nil
}
