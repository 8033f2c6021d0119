package fetcher

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock_Cloudflare403(t *testing.T) {
	blocked, bt := DetectBlock(403, http.Header{"Cf-Ray": {"abc123"}}, nil)
	assert.True(t, blocked)
	assert.Equal(t, BlockCloudflare, bt)
}

func TestDetectBlock_Cloudflare503Server(t *testing.T) {
	blocked, bt := DetectBlock(503, http.Header{"Server": {"cloudflare"}}, nil)
	assert.True(t, blocked)
	assert.Equal(t, BlockCloudflare, bt)
}

func TestDetectBlock_ChallengeBody(t *testing.T) {
	body := []byte("<html><title>Just a moment...</title>Checking your browser before accessing</html>")
	blocked, bt := DetectBlock(200, nil, body)
	assert.True(t, blocked)
	assert.Equal(t, BlockCloudflare, bt)
}

func TestDetectBlock_Captcha(t *testing.T) {
	body := []byte(`<html><body><div class="g-recaptcha" data-sitekey="x"></div></body></html>`)
	blocked, bt := DetectBlock(200, http.Header{}, body)
	assert.True(t, blocked)
	assert.Equal(t, BlockCaptcha, bt)
}

func TestDetectBlock_CaptchaIgnoredOnLargePage(t *testing.T) {
	body := []byte("<html><body>" + strings.Repeat("<p>content</p>", 10000) +
		`<div class="g-recaptcha"></div></body></html>`)
	blocked, _ := DetectBlock(200, nil, body)
	assert.False(t, blocked)
}

func TestDetectBlock_LoginWall(t *testing.T) {
	body := []byte(`<html><body><form action="/accounts/login/"><h1>Log in to continue</h1></form></body></html>`)
	blocked, bt := DetectBlock(200, nil, body)
	assert.True(t, blocked)
	assert.Equal(t, BlockLoginWall, bt)
}

func TestDetectBlock_JSShell(t *testing.T) {
	body := []byte("<html><noscript>Enable JavaScript to continue</noscript></html>")
	blocked, bt := DetectBlock(200, nil, body)
	assert.True(t, blocked)
	assert.Equal(t, BlockJSShell, bt)
}

func TestDetectBlock_MetaRefresh(t *testing.T) {
	body := []byte(`<html><head><meta http-equiv="refresh" content="0;url=/x"></head></html>`)
	blocked, bt := DetectBlock(200, nil, body)
	assert.True(t, blocked)
	assert.Equal(t, BlockJSShell, bt)
}

func TestDetectBlock_NormalPage(t *testing.T) {
	body := []byte("<html><head><title>Joe's Pizza</title></head><body><h1>Menu</h1></body></html>")
	blocked, bt := DetectBlock(200, http.Header{}, body)
	assert.False(t, blocked)
	assert.Equal(t, BlockNone, bt)
}

func TestRejectChallenge(t *testing.T) {
	assert.Error(t, rejectChallenge("https://x.test", 200, nil, []byte("<div class=\"cf-browser-verification\"></div>")))
	assert.Error(t, rejectChallenge("https://x.test", 200, nil, []byte(`<div class="h-captcha"></div>`)))
	assert.NoError(t, rejectChallenge("https://x.test", 200, nil, []byte(`<h1>Log in to continue</h1>`)))
	assert.NoError(t, rejectChallenge("https://x.test", 200, nil, []byte(`<h1>Welcome</h1>`)))

	big := []byte(strings.Repeat("<p>menu</p>", 2000) + `<div class="g-recaptcha"></div>`)
	assert.NoError(t, rejectChallenge("https://x.test", 200, nil, big))
}
