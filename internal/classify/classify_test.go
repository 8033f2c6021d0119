package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/siteforge/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		url  string
		want model.BusinessType
	}{
		{"restaurant", "See our menu and book reservations online", "https://joes.test", model.BusinessTypeRestaurant},
		{"ecommerce", "Add to cart. Free shipping on orders over $50. Checkout securely.", "", model.BusinessTypeEcommerce},
		{"healthcare", "Our clinic welcomes new patients. Book an appointment.", "", model.BusinessTypeHealthcare},
		{"url counts double", "welcome", "https://bright-dental.test/", model.BusinessTypeHealthcare},
		{"below threshold", "We love what we do", "https://acme.test", model.BusinessTypeOther},
		{"single hit", "Check out the menu", "", model.BusinessTypeOther},
		{"empty", "", "", model.BusinessTypeOther},
		{"bad url ignored", "yoga and pilates classes", "::bad", model.BusinessTypeFitness},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text, tt.url))
		})
	}
}

func TestClassify_TiePrefersEcommerce(t *testing.T) {
	// Two hits each for ecommerce and service.
	text := "Add to cart or checkout. We do repair and cleaning."
	scores := Score(text, "")
	assert.Equal(t, scores[model.BusinessTypeEcommerce], scores[model.BusinessTypeService])
	assert.Equal(t, model.BusinessTypeEcommerce, Classify(text, ""))
}

func TestClassify_WordBoundaries(t *testing.T) {
	// "menus" and "gymnastics" must not count as "menu" or "gym".
	assert.Equal(t, 0, Score("menus gymnastics", "")[model.BusinessTypeRestaurant])
	assert.Equal(t, 0, Score("menus gymnastics", "")[model.BusinessTypeFitness])
}

func TestClassify_AlwaysInClosedSet(t *testing.T) {
	inputs := []string{"", "🍕🍕🍕", "<html>", "spa salon nails", "x"}
	for _, in := range inputs {
		assert.True(t, Classify(in, "https://"+in).Valid(), in)
	}
}

func TestPromote(t *testing.T) {
	assert.Equal(t, model.BusinessTypeEcommerce, Promote(model.BusinessTypeOther, true))
	assert.Equal(t, model.BusinessTypeEcommerce, Promote(model.BusinessTypeService, true))
	assert.Equal(t, model.BusinessTypeRestaurant, Promote(model.BusinessTypeRestaurant, true))
	assert.Equal(t, model.BusinessTypeOther, Promote(model.BusinessTypeOther, false))
}

func TestHasEcommerceSignals(t *testing.T) {
	assert.True(t, HasEcommerceSignals(`<script src="https://cdn.shopify.com/s/x.js"></script>`))
	assert.True(t, HasEcommerceSignals(`<button class="single_add_to_cart_button">Add to Cart</button>`))
	assert.True(t, HasEcommerceSignals(`<body class="woocommerce-page">`))
	assert.False(t, HasEcommerceSignals(`<p>Family dentistry since 1982</p>`))
}
