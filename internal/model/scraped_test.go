package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessTypeValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bt   BusinessType
		want string
	}{
		{BusinessTypeEcommerce, "ecommerce"},
		{BusinessTypeRestaurant, "restaurant"},
		{BusinessTypeService, "service"},
		{BusinessTypePortfolio, "portfolio"},
		{BusinessTypeAgency, "agency"},
		{BusinessTypeHealthcare, "healthcare"},
		{BusinessTypeFitness, "fitness"},
		{BusinessTypeBeauty, "beauty"},
		{BusinessTypeRealEstate, "realestate"},
		{BusinessTypeEducation, "education"},
		{BusinessTypeOther, "other"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(tt.bt))
			assert.True(t, tt.bt.Valid())
		})
	}
	assert.Len(t, AllBusinessTypes(), len(tests))
}

func TestParseBusinessType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want BusinessType
	}{
		{"ecommerce", BusinessTypeEcommerce},
		{"  Restaurant ", BusinessTypeRestaurant},
		{"E-Commerce", BusinessTypeEcommerce},
		{"real estate", BusinessTypeRealEstate},
		{"gym", BusinessTypeFitness},
		{"", BusinessTypeOther},
		{"spaceship dealer", BusinessTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseBusinessType(tt.in))
		})
	}
}

func TestNewScrapedData_Defaults(t *testing.T) {
	t.Parallel()

	d := NewScrapedData("https://example.com")
	assert.Equal(t, DefaultPrimaryColor, d.PrimaryColor)
	assert.Equal(t, DefaultSecondaryColor, d.SecondaryColor)
	assert.Equal(t, BusinessTypeOther, d.BusinessType)
	assert.Equal(t, ConfidenceLow, d.Confidence)
	assert.Equal(t, SourceFallback, d.SourceType)
	assert.Equal(t, "https://example.com", d.SourceURL)
	assert.NotNil(t, d.SocialLinks)
	assert.NotNil(t, d.Products)
	assert.NotNil(t, d.Services)
	assert.NotNil(t, d.Features)
	assert.NotNil(t, d.Testimonials)
	assert.NotNil(t, d.GalleryImages)
	assert.Nil(t, d.OpeningHours)
	assert.Zero(t, d.FoundSignals())
}

func TestScrapedData_JSONShape(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(NewScrapedData("https://example.com"))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	for _, key := range []string{
		"title", "description", "logo", "heroImage", "primaryColor",
		"secondaryColor", "businessType", "phone", "email", "address",
		"socialLinks", "products", "services", "openingHours", "features",
		"testimonials", "galleryImages", "confidence", "sourceType",
	} {
		assert.Contains(t, m, key)
	}
	assert.Nil(t, m["logo"])
	assert.Equal(t, []any{}, m["products"])
	assert.Equal(t, map[string]any{}, m["socialLinks"])
}

func TestScrapedData_Finalize(t *testing.T) {
	t.Parallel()

	d := &ScrapedData{BusinessType: "bakery", OpeningHours: map[string]string{}}
	d.Finalize()

	assert.Equal(t, BusinessTypeOther, d.BusinessType)
	assert.Equal(t, DefaultPrimaryColor, d.PrimaryColor)
	assert.Equal(t, DefaultSecondaryColor, d.SecondaryColor)
	assert.NotNil(t, d.Products)
	assert.NotNil(t, d.SocialLinks)
	assert.Nil(t, d.OpeningHours)
	assert.Equal(t, SourceFallback, d.SourceType)

	// Idempotent.
	before := *d
	d.Finalize()
	assert.Equal(t, before, *d)
}

func TestScrapedData_FinalizeDerivesSecondary(t *testing.T) {
	t.Parallel()

	d := &ScrapedData{PrimaryColor: "#e11d48"}
	d.Finalize()
	assert.Equal(t, "#87112b", d.SecondaryColor)

	d = &ScrapedData{PrimaryColor: "#336699", SecondaryColor: "#336699"}
	d.Finalize()
	assert.Equal(t, "#19334d", d.SecondaryColor)

	d = &ScrapedData{PrimaryColor: "#336699", SecondaryColor: "#ffcc00"}
	d.Finalize()
	assert.Equal(t, "#ffcc00", d.SecondaryColor)
}

func TestScrapedData_ScoreConfidence(t *testing.T) {
	t.Parallel()

	d := NewScrapedData("")
	assert.Equal(t, ConfidenceLow, d.ScoreConfidence())

	d.Title = "Joe's Pizza"
	d.Description = "Wood fired"
	d.Phone = StringPtr("555-123-4567")
	assert.Equal(t, ConfidenceMedium, d.ScoreConfidence())

	d.Email = StringPtr("hi@joes.test")
	d.Logo = StringPtr("https://joes.test/logo.png")
	d.Services = []string{"Catering"}
	d.SocialLinks["instagram"] = "https://instagram.com/joes"
	assert.Equal(t, ConfidenceHigh, d.ScoreConfidence())
}

func TestScrapedData_MissingFields(t *testing.T) {
	t.Parallel()

	d := NewScrapedData("")
	assert.Equal(t, []string{"title", "description", "logo", "contact", "address", "offerings"}, d.MissingFields())

	d.Title = "Acme"
	d.Email = StringPtr("a@acme.test")
	d.Products = []ProductData{{Name: "Widget"}}
	assert.Equal(t, []string{"description", "logo", "address"}, d.MissingFields())
}

func TestStringPtr(t *testing.T) {
	t.Parallel()

	assert.Nil(t, StringPtr(""))
	p := StringPtr("x")
	require.NotNil(t, p)
	assert.Equal(t, "x", *p)
}
