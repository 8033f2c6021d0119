package model

import "time"

// GeneratedContent is marketing copy produced for a business from its
// scraped data.
type GeneratedContent struct {
	Headline       string `json:"headline" yaml:"headline" validate:"required,max=120"`
	Tagline        string `json:"tagline" yaml:"tagline" validate:"required,max=160"`
	About          string `json:"about" yaml:"about" validate:"required,max=2000"`
	CTAText        string `json:"ctaText" yaml:"ctaText" validate:"required,max=40"`
	ServicesIntro  string `json:"servicesIntro" yaml:"servicesIntro" validate:"max=600"`
	SEOTitle       string `json:"seoTitle" yaml:"seoTitle" validate:"required,max=70"`
	SEODescription string `json:"seoDescription" yaml:"seoDescription" validate:"required,max=170"`
}

// Business is a persisted onboarding record: the scrape result plus the
// generated copy built from it.
type Business struct {
	ID               string            `json:"id" yaml:"id"`
	Name             string            `json:"name" yaml:"name"`
	SourceURL        string            `json:"sourceUrl" yaml:"sourceUrl"`
	BusinessType     BusinessType      `json:"businessType" yaml:"businessType"`
	ScrapedData      *ScrapedData      `json:"scrapedData" yaml:"scrapedData"`
	GeneratedContent *GeneratedContent `json:"generatedContent,omitempty" yaml:"generatedContent,omitempty"`
	NeedsInput       []string          `json:"needsInput" yaml:"needsInput"`
	CreatedAt        time.Time         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt" yaml:"updatedAt"`
}

// BusinessFilter narrows ListBusinesses results.
type BusinessFilter struct {
	BusinessType BusinessType
	Limit        int
	Offset       int
}
