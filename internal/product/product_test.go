package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/siteforge/internal/extract"
	"github.com/sells-group/siteforge/internal/model"
)

const base = "https://shop.test"

func fp(f float64) *float64 { return &f }

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"$12.99", fp(12.99)},
		{"USD 1,299.00", fp(1299)},
		{"1.299,50 €", fp(1299.5)},
		{"12,99 €", fp(12.99)},
		{"£1,000", fp(1000)},
		{"1.299", fp(1299)},
		{"0.125", fp(0.125)},
		{"From $45", fp(45)},
		{"$9.", fp(9)},
		{"Sold out", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := ParsePrice(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, tt.in)
			continue
		}
		require.NotNil(t, got, tt.in)
		assert.InDelta(t, *tt.want, *got, 0.0001, tt.in)
	}
}

func TestMerge(t *testing.T) {
	a := []model.ProductData{{Name: "Red Mug"}, {Name: "Blue Mug"}}
	b := []model.ProductData{{Name: "red  MUG", Image: "x"}, {Name: "Green Mug"}, {Name: " "}}

	got := Merge(a, b, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "Red Mug", got[0].Name)
	assert.Empty(t, got[0].Image)
	assert.Equal(t, "Green Mug", got[2].Name)

	capped := Merge(a, b, 2)
	assert.Len(t, capped, 2)
}

func TestFromShopify_ThreeCards(t *testing.T) {
	html := `<html><body><div class="collection">
	<div class="product-card">
		<a href="/products/red-mug"><img src="/cdn/red.jpg" alt=""></a>
		<h3 class="product-card__title">Red Mug</h3>
		<span class="price">$12.00</span>
	</div>
	<div class="product-card">
		<a href="/products/blue-mug"><img src="/cdn/blue.jpg" alt=""></a>
		<h3 class="product-card__title">Blue Mug</h3>
		<span class="price-item--regular">$20.00</span>
		<span class="price-item--sale">$15.50</span>
	</div>
	<div class="product-card">
		<a href="/products/green-mug"><img data-src="//cdn.shop.test/green.jpg" alt=""></a>
		<h3 class="product-card__title">Green Mug</h3>
		<span class="price">$9.99</span>
	</div>
	</div></body></html>`

	got := FromShopify(extract.Parse(html, base))
	require.Len(t, got, 3)
	for _, p := range got {
		assert.NotEmpty(t, p.Name)
		require.NotNil(t, p.Price, p.Name)
	}

	assert.Equal(t, "Red Mug", got[0].Name)
	assert.InDelta(t, 12.0, *got[0].Price, 0.001)
	assert.Nil(t, got[0].SalePrice)
	assert.Equal(t, "https://shop.test/cdn/red.jpg", got[0].Image)
	assert.Equal(t, "https://shop.test/products/red-mug", got[0].URL)

	assert.InDelta(t, 20.0, *got[1].Price, 0.001)
	require.NotNil(t, got[1].SalePrice)
	assert.InDelta(t, 15.5, *got[1].SalePrice, 0.001)

	assert.Equal(t, "https://cdn.shop.test/green.jpg", got[2].Image)
}

func TestFromShopify_UnclassedPrices(t *testing.T) {
	html := `<div class="collection">
	<div class="product-card"><img src="/img/1.jpg"><h3>Mug</h3><p>$12.00</p></div>
	<div class="product-card"><img src="/img/2.jpg"><h3>Pack of 3</h3><p>Now only <b>12,99 €</b></p></div>
	<div class="product-card"><img src="/img/3.jpg"><h3>Teapot</h3><p>Handmade.</p><div>Price: 45 USD</div></div>
	</div>`

	got := FromShopify(extract.Parse(html, base))
	require.Len(t, got, 3)
	require.NotNil(t, got[0].Price)
	assert.InDelta(t, 12.0, *got[0].Price, 0.001)
	require.NotNil(t, got[1].Price)
	assert.InDelta(t, 12.99, *got[1].Price, 0.001)
	require.NotNil(t, got[2].Price)
	assert.InDelta(t, 45.0, *got[2].Price, 0.001)
	assert.Equal(t, "https://shop.test/img/1.jpg", got[0].Image)
}

func TestFromShopify_CardWithoutPriceOrLinkSkipped(t *testing.T) {
	html := `<div class="product-card"><h3>Summer Collection</h3><p>Shop the look.</p></div>`
	assert.Empty(t, FromShopify(extract.Parse(html, base)))
}

func TestFromShopify_UnparsablePrice(t *testing.T) {
	html := `<div class="product-card"><a href="/products/x"><h3>Mystery Box</h3></a><span class="price">Sold out</span></div>`
	got := FromShopify(extract.Parse(html, base))
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Price)
}

func TestFromGeneric_WooCommerce(t *testing.T) {
	html := `<ul class="products">
	<li class="product"><a href="/p/1"><img src="/a.jpg"><h2 class="woocommerce-loop-product__title">Oak Table</h2>
		<span class="price"><del><span class="amount">$300</span></del> <ins><span class="amount">$250</span></ins></span></a></li>
	<li class="product"><a href="/p/2"><h2 class="woocommerce-loop-product__title">Pine Chair</h2>
		<span class="price"><span class="amount">$80</span></span></a></li>
	<li class="product"><a href="/p/3"><h2 class="woocommerce-loop-product__title">Oak Table</h2></a></li>
	</ul>`

	got := FromGeneric(extract.Parse(html, base))
	require.Len(t, got, 2)
	assert.Equal(t, "Oak Table", got[0].Name)
	assert.InDelta(t, 300.0, *got[0].Price, 0.001)
	assert.InDelta(t, 250.0, *got[0].SalePrice, 0.001)
	assert.InDelta(t, 80.0, *got[1].Price, 0.001)
	assert.Equal(t, "https://shop.test/p/2", got[1].URL)
}

func TestFromGeneric_SkipsContainers(t *testing.T) {
	html := `<div class="product-item-list">
		<div class="product-item"><a href="/a">Alpha</a><span class="price">$1</span></div>
		<div class="product-item"><a href="/b">Beta</a><span class="price">$2</span></div>
	</div>`
	got := FromGeneric(extract.Parse(html, base))
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name)
	assert.Equal(t, "Beta", got[1].Name)
}

func TestFromJSONLD_DescriptionMarkup(t *testing.T) {
	html := `<script type="application/ld+json">{"@type":"Product","name":"Linen Shirt",
		"description":"<p>Soft <strong>linen</strong>.</p><p>Machine washable.</p>","offers":{"price":"49.00"}}</script>`

	got := FromJSONLD(extract.Parse(html, base))
	require.Len(t, got, 1)
	assert.Equal(t, "Soft linen . Machine washable.", got[0].Description)
}

func TestFromJSONLD_SkipsMalformedBlock(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">{"@context":"https://schema.org","@type":"Product","name":"Walnut Board",
		"description":"<p>Hand-oiled walnut.</p>","image":["/img/board.jpg"],"category":"Home > Kitchen > Boards",
		"offers":{"@type":"Offer","price":"49.00","priceCurrency":"USD"}}</script>
	<script type="application/ld+json">{"@type":"Product","name": "Broken", </script>
	</head><body></body></html>`

	got := FromJSONLD(extract.Parse(html, base))
	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, "Walnut Board", p.Name)
	assert.Equal(t, "Hand-oiled walnut.", p.Description)
	assert.Equal(t, "https://shop.test/img/board.jpg", p.Image)
	assert.Equal(t, "Boards", p.Category)
	require.NotNil(t, p.Price)
	assert.InDelta(t, 49.0, *p.Price, 0.001)
}

func TestFromJSONLD_ItemListAndGraph(t *testing.T) {
	html := `<script type="application/ld+json">{"@graph":[
		{"@type":"ItemList","itemListElement":[
			{"@type":"ListItem","position":1,"item":{"@type":"Product","name":"One","offers":[{"price":5}]}},
			{"@type":"ListItem","position":2,"item":{"@type":"Product","name":"Two","offers":{"lowPrice":"7.50"}}}
		]},
		{"@type":"Product","name":"Three"}
	]}</script>`

	got := FromJSONLD(extract.Parse(html, base))
	require.Len(t, got, 3)
	assert.Equal(t, "One", got[0].Name)
	assert.InDelta(t, 5.0, *got[0].Price, 0.001)
	assert.InDelta(t, 7.5, *got[1].Price, 0.001)
	assert.Nil(t, got[2].Price)
}

func TestDeepJSONLD_NestedProducts(t *testing.T) {
	html := `<script type="application/ld+json">{"@type":"Bakery","name":"Crumb",
		"hasOfferCatalog":{"@type":"OfferCatalog","itemListElement":[
			{"@type":"Offer","itemOffered":{"@type":"Product","name":"Sourdough","offers":{"price":8}}}
		]},
		"mainEntity":{"@type":"Product","name":"Croissant"}}</script>`
	p := extract.Parse(html, base)

	assert.Empty(t, FromJSONLD(p))
	got := DeepJSONLD(p)
	require.Len(t, got, 2)
	assert.Equal(t, "Sourdough", got[0].Name)
	assert.Equal(t, "Croissant", got[1].Name)
}

func TestExtract_FirstNonEmptyStrategyWins(t *testing.T) {
	html := `<script type="application/ld+json">{"@type":"Product","name":"From LD"}</script>
	<div class="product-card"><a href="/products/x"><h3>From Card</h3></a><span class="price">$3</span></div>`

	got, strategy := Extract(extract.Parse(html, base))
	assert.Equal(t, "jsonld", strategy)
	require.Len(t, got, 1)
	assert.Equal(t, "From LD", got[0].Name)

	none, strategy := Extract(extract.Parse("<p>nothing</p>", base))
	assert.Empty(t, strategy)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
