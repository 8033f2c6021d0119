package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_MalformedHTML(t *testing.T) {
	p := Parse(`<html><body><div><p>unclosed <b>tags<div>still parsed`, "https://joes.test")
	require.NotNil(t, p)
	require.NotNil(t, p.Doc)
	assert.Contains(t, p.Text(), "still parsed")
}

func TestParse_EmptyAndBadBase(t *testing.T) {
	p := Parse("", "::not a url")
	require.NotNil(t, p)
	assert.Nil(t, p.Base)
	assert.Empty(t, p.Text())
	assert.Empty(t, p.JSONLD())
}

func TestPage_Resolve(t *testing.T) {
	p := Parse("", "https://joes.test/menu/")

	tests := []struct {
		href string
		want string
	}{
		{"/img/a.png", "https://joes.test/img/a.png"},
		{"b.png", "https://joes.test/menu/b.png"},
		{"//cdn.test/c.png", "https://cdn.test/c.png"},
		{"https://other.test/d.png", "https://other.test/d.png"},
		{"#top", ""},
		{"javascript:void(0)", ""},
		{"data:image/png;base64,xx", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Resolve(tt.href), tt.href)
	}
}

func TestPage_Meta(t *testing.T) {
	p := Parse(`<html><head>
		<meta property="og:title" content="  OG Title ">
		<meta name="description" content="Desc">
	</head></html>`, "")

	assert.Equal(t, "OG Title", p.Meta("og:title"))
	assert.Equal(t, "Desc", p.Meta("og:description", "description"))
	assert.Empty(t, p.Meta("missing"))
}

func TestPage_TextSkipsScripts(t *testing.T) {
	p := Parse(`<html><head><title>T</title><style>.a{color:red}</style></head>
		<body><h1>Hello</h1><script>var x = "hidden";</script><p>World</p></body></html>`, "")

	assert.Equal(t, "Hello World", p.Text())
}

func TestPage_JSONLD(t *testing.T) {
	p := Parse(`<html><head>
		<script type="application/ld+json">{"@type":"Organization","name":"Joe's"}</script>
		<script type="application/ld+json">{"@type": "Product", "name": broken</script>
		<script type="application/ld+json">[{"@type":"Product","name":"A"},{"@type":"Product","name":"B"}]</script>
		<script type="application/ld+json">{"@context":"https://schema.org","@graph":[{"@type":"WebSite"},{"@type":"LocalBusiness"}]}</script>
	</head></html>`, "")

	nodes := p.JSONLD()
	// Organization, A, B, graph root, WebSite, LocalBusiness.
	require.Len(t, nodes, 6)
	assert.True(t, LDType(nodes[0], "organization"))
	assert.Equal(t, "B", nodes[2].Get("name").String())
	assert.True(t, LDType(nodes[5], "Store", "LocalBusiness"))

	// Cached.
	assert.Len(t, p.JSONLD(), 6)
}

func TestLDType_Array(t *testing.T) {
	p := Parse(`<script type="application/ld+json">{"@type":["Restaurant","LocalBusiness"]}</script>`, "")
	require.Len(t, p.JSONLD(), 1)
	assert.True(t, LDType(p.JSONLD()[0], "LocalBusiness"))
	assert.False(t, LDType(p.JSONLD()[0], "Product"))
}
