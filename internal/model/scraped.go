// Package model defines the records produced by the scraping pipeline and
// persisted by the onboarding service.
package model

import "strings"

// Default brand colors used when a site exposes no usable color. The
// secondary value is the derived shade of the primary (see DeriveSecondaryColor).
const (
	DefaultPrimaryColor   = "#2563eb"
	DefaultSecondaryColor = "#0e3b9c"
)

// BusinessType is the closed set of business classifications.
type BusinessType string

const (
	BusinessTypeEcommerce  BusinessType = "ecommerce"
	BusinessTypeRestaurant BusinessType = "restaurant"
	BusinessTypeService    BusinessType = "service"
	BusinessTypePortfolio  BusinessType = "portfolio"
	BusinessTypeAgency     BusinessType = "agency"
	BusinessTypeHealthcare BusinessType = "healthcare"
	BusinessTypeFitness    BusinessType = "fitness"
	BusinessTypeBeauty     BusinessType = "beauty"
	BusinessTypeRealEstate BusinessType = "realestate"
	BusinessTypeEducation  BusinessType = "education"
	BusinessTypeOther      BusinessType = "other"
)

// AllBusinessTypes returns every member of the enumeration.
func AllBusinessTypes() []BusinessType {
	return []BusinessType{
		BusinessTypeEcommerce,
		BusinessTypeRestaurant,
		BusinessTypeService,
		BusinessTypePortfolio,
		BusinessTypeAgency,
		BusinessTypeHealthcare,
		BusinessTypeFitness,
		BusinessTypeBeauty,
		BusinessTypeRealEstate,
		BusinessTypeEducation,
		BusinessTypeOther,
	}
}

// Valid reports whether b is a member of the closed set.
func (b BusinessType) Valid() bool {
	for _, t := range AllBusinessTypes() {
		if b == t {
			return true
		}
	}
	return false
}

// businessTypeAliases maps loose spellings (voice/chat input, LLM output)
// onto the closed set.
var businessTypeAliases = map[string]BusinessType{
	"e-commerce":  BusinessTypeEcommerce,
	"ecom":        BusinessTypeEcommerce,
	"shop":        BusinessTypeEcommerce,
	"store":       BusinessTypeEcommerce,
	"retail":      BusinessTypeEcommerce,
	"cafe":        BusinessTypeRestaurant,
	"food":        BusinessTypeRestaurant,
	"services":    BusinessTypeService,
	"real-estate": BusinessTypeRealEstate,
	"real_estate": BusinessTypeRealEstate,
	"real estate": BusinessTypeRealEstate,
	"medical":     BusinessTypeHealthcare,
	"health":      BusinessTypeHealthcare,
	"gym":         BusinessTypeFitness,
	"salon":       BusinessTypeBeauty,
	"spa":         BusinessTypeBeauty,
	"school":      BusinessTypeEducation,
}

// ParseBusinessType normalizes s onto the closed set. Unknown values map to
// BusinessTypeOther.
func ParseBusinessType(s string) BusinessType {
	norm := strings.ToLower(strings.TrimSpace(s))
	if bt := BusinessType(norm); bt.Valid() {
		return bt
	}
	if bt, ok := businessTypeAliases[norm]; ok {
		return bt
	}
	return BusinessTypeOther
}

// Confidence is a coarse signal of how much of a ScrapedData was found
// rather than defaulted.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// SourceType records which pipeline path produced a ScrapedData.
type SourceType string

const (
	SourceWebsite   SourceType = "website"
	SourceEcommerce SourceType = "ecommerce"
	SourceSocial    SourceType = "social"
	SourceFallback  SourceType = "fallback"
)

// Social platform keys used in ScrapedData.SocialLinks.
const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
	PlatformYouTube   = "youtube"
	PlatformTikTok    = "tiktok"
)

// ProductData is a single product found on a storefront.
type ProductData struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" yaml:"price,omitempty"`
	SalePrice   *float64 `json:"salePrice,omitempty" yaml:"salePrice,omitempty"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	URL         string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// Testimonial is a customer quote with attribution.
type Testimonial struct {
	Name   string `json:"name" yaml:"name"`
	Text   string `json:"text" yaml:"text"`
	Rating *int   `json:"rating,omitempty" yaml:"rating,omitempty"`
}

// ScrapedData is the normalized output of one scrape. Every field has a
// defined default; absence is null, "" or an empty collection.
type ScrapedData struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`

	Logo           *string `json:"logo" yaml:"logo"`
	HeroImage      *string `json:"heroImage" yaml:"heroImage"`
	PrimaryColor   string  `json:"primaryColor" yaml:"primaryColor"`
	SecondaryColor string  `json:"secondaryColor" yaml:"secondaryColor"`

	BusinessType BusinessType `json:"businessType" yaml:"businessType"`

	Phone   *string `json:"phone" yaml:"phone"`
	Email   *string `json:"email" yaml:"email"`
	Address *string `json:"address" yaml:"address"`
	Website *string `json:"website" yaml:"website"`

	SocialLinks   map[string]string `json:"socialLinks" yaml:"socialLinks"`
	Products      []ProductData     `json:"products" yaml:"products"`
	Services      []string          `json:"services" yaml:"services"`
	OpeningHours  map[string]string `json:"openingHours" yaml:"openingHours"`
	Features      []string          `json:"features" yaml:"features"`
	Testimonials  []Testimonial     `json:"testimonials" yaml:"testimonials"`
	GalleryImages []string          `json:"galleryImages" yaml:"galleryImages"`

	Confidence Confidence `json:"confidence" yaml:"confidence"`
	SourceType SourceType `json:"sourceType" yaml:"sourceType"`
	SourceURL  string     `json:"sourceUrl" yaml:"sourceUrl"`
}

// NewScrapedData returns a fully-defaulted record for sourceURL.
func NewScrapedData(sourceURL string) *ScrapedData {
	return &ScrapedData{
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
		BusinessType:   BusinessTypeOther,
		SocialLinks:    map[string]string{},
		Products:       []ProductData{},
		Services:       []string{},
		Features:       []string{},
		Testimonials:   []Testimonial{},
		GalleryImages:  []string{},
		Confidence:     ConfidenceLow,
		SourceType:     SourceFallback,
		SourceURL:      sourceURL,
	}
}

// Finalize replaces nil collections and invalid enum values with their
// defaults and derives a secondary color from the primary when the
// secondary is missing or equal to it. It is idempotent.
func (d *ScrapedData) Finalize() {
	if d.PrimaryColor == "" {
		d.PrimaryColor = DefaultPrimaryColor
	}
	if d.SecondaryColor == "" || NormalizeHex(d.SecondaryColor) == NormalizeHex(d.PrimaryColor) {
		d.SecondaryColor = DeriveSecondaryColor(d.PrimaryColor)
	}
	if !d.BusinessType.Valid() {
		d.BusinessType = BusinessTypeOther
	}
	if d.SocialLinks == nil {
		d.SocialLinks = map[string]string{}
	}
	if d.Products == nil {
		d.Products = []ProductData{}
	}
	if d.Services == nil {
		d.Services = []string{}
	}
	if d.Features == nil {
		d.Features = []string{}
	}
	if d.Testimonials == nil {
		d.Testimonials = []Testimonial{}
	}
	if d.GalleryImages == nil {
		d.GalleryImages = []string{}
	}
	if d.OpeningHours != nil && len(d.OpeningHours) == 0 {
		d.OpeningHours = nil
	}
	if d.Confidence == "" {
		d.Confidence = ConfidenceLow
	}
	if d.SourceType == "" {
		d.SourceType = SourceFallback
	}
}

// FoundSignals counts the fields that were actually extracted rather than
// defaulted.
func (d *ScrapedData) FoundSignals() int {
	n := 0
	for _, ok := range []bool{
		d.Title != "",
		d.Description != "",
		d.Logo != nil,
		d.HeroImage != nil,
		d.PrimaryColor != DefaultPrimaryColor,
		d.Phone != nil,
		d.Email != nil,
		d.Address != nil,
		len(d.SocialLinks) > 0,
		len(d.Products) > 0,
		len(d.Services) > 0,
		len(d.Features) > 0,
		len(d.Testimonials) > 0,
		len(d.OpeningHours) > 0,
		len(d.GalleryImages) > 0,
	} {
		if ok {
			n++
		}
	}
	return n
}

// ScoreConfidence maps FoundSignals onto a Confidence level.
func (d *ScrapedData) ScoreConfidence() Confidence {
	switch n := d.FoundSignals(); {
	case n >= 7:
		return ConfidenceHigh
	case n >= 3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// MissingFields lists the user-facing fields an onboarding flow should ask
// the user to fill in.
func (d *ScrapedData) MissingFields() []string {
	var missing []string
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if d.Description == "" {
		missing = append(missing, "description")
	}
	if d.Logo == nil {
		missing = append(missing, "logo")
	}
	if d.Phone == nil && d.Email == nil {
		missing = append(missing, "contact")
	}
	if d.Address == nil {
		missing = append(missing, "address")
	}
	if len(d.Services) == 0 && len(d.Products) == 0 {
		missing = append(missing, "offerings")
	}
	return missing
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
