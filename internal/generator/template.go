package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sells-group/siteforge/internal/model"
)

type typeCopy struct {
	noun    string
	cta     string
	tagline string
}

var copyByType = map[model.BusinessType]typeCopy{
	model.BusinessTypeEcommerce:  {"shop", "Shop Now", "Quality products, delivered to your door."},
	model.BusinessTypeRestaurant: {"restaurant", "Book a Table", "Fresh food, friendly faces, every day."},
	model.BusinessTypeService:    {"team", "Get a Quote", "Reliable service you can count on."},
	model.BusinessTypePortfolio:  {"studio", "View My Work", "Thoughtful work, carefully made."},
	model.BusinessTypeAgency:     {"agency", "Start a Project", "Strategy and craft that move the needle."},
	model.BusinessTypeHealthcare: {"practice", "Book an Appointment", "Caring for you and your family."},
	model.BusinessTypeFitness:    {"gym", "Start Training", "Get stronger, one session at a time."},
	model.BusinessTypeBeauty:     {"salon", "Book Now", "Look good. Feel better."},
	model.BusinessTypeRealEstate: {"agency", "View Listings", "Helping you find the right place."},
	model.BusinessTypeEducation:  {"school", "Enroll Today", "Learning that opens doors."},
	model.BusinessTypeOther:      {"business", "Contact Us", "Here to help."},
}

// TemplateGenerator builds deterministic copy from the input alone. It never
// calls out and never fails.
type TemplateGenerator struct{}

// Generate implements Generator.
func (TemplateGenerator) Generate(_ context.Context, in Input) (*model.GeneratedContent, error) {
	return templateContent(in), nil
}

func templateContent(in Input) *model.GeneratedContent {
	c, ok := copyByType[in.BusinessType]
	if !ok {
		c = copyByType[model.BusinessTypeOther]
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Our " + c.noun
	}

	about := strings.TrimSpace(in.Description)
	if about == "" {
		about = fmt.Sprintf("%s is a local %s dedicated to doing great work for every customer.", name, c.noun)
	}

	var intro string
	if len(in.Services) > 0 {
		intro = "What we offer: " + joinList(in.Services, 5) + "."
	}

	tagline := c.tagline
	if len(in.Features) > 0 {
		tagline = clip(in.Features[0], 160)
	}

	return &model.GeneratedContent{
		Headline:       clip("Welcome to "+name, 120),
		Tagline:        tagline,
		About:          clip(about, 2000),
		CTAText:        c.cta,
		ServicesIntro:  clip(intro, 600),
		SEOTitle:       clip(name, 70),
		SEODescription: clip(firstSentence(about), 170),
	}
}

func joinList(items []string, limit int) string {
	if len(items) > limit {
		items = items[:limit]
	}
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i > 0 {
		return s[:i+1]
	}
	return s
}

// clip shortens s to at most n runes on a word boundary where possible.
func clip(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
