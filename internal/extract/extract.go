package extract

import (
	"go.uber.org/zap"

	"github.com/sells-group/siteforge/internal/model"
)

// Apply runs every pattern extractor over p and writes the results into d.
// A panic inside one extractor is recovered and leaves that field at its
// default; the remaining extractors still run.
func Apply(p *Page, d *model.ScrapedData) {
	d.Title = safely("title", "", func() string { return Title(p) })
	if d.Title == "" {
		d.Title = safely("site_name", "", func() string { return SiteName(p) })
	}
	d.Description = safely("description", "", func() string { return Description(p) })

	d.Logo = safely[*string]("logo", nil, func() *string { return Logo(p) })
	d.HeroImage = safely[*string]("hero_image", nil, func() *string { return HeroImage(p) })
	d.PrimaryColor = safely("primary_color", model.DefaultPrimaryColor, func() string { return PrimaryColor(p) })
	d.SecondaryColor = safely("secondary_color", model.DeriveSecondaryColor(d.PrimaryColor), func() string {
		return SecondaryColor(p, d.PrimaryColor)
	})

	d.Phone = safely[*string]("phone", nil, func() *string { return Phone(p) })
	d.Email = safely[*string]("email", nil, func() *string { return Email(p) })
	d.Address = safely[*string]("address", nil, func() *string { return Address(p) })

	d.SocialLinks = safely("social_links", map[string]string{}, func() map[string]string { return SocialLinks(p) })
	d.OpeningHours = safely[map[string]string]("opening_hours", nil, func() map[string]string { return OpeningHours(p) })
	d.Testimonials = safely("testimonials", []model.Testimonial{}, func() []model.Testimonial { return Testimonials(p) })
	d.Features = safely("features", []string{}, func() []string { return Features(p) })
	d.Services = safely("services", []string{}, func() []string { return Services(p) })

	exclude := []string{}
	if d.Logo != nil {
		exclude = append(exclude, *d.Logo)
	}
	if d.HeroImage != nil {
		exclude = append(exclude, *d.HeroImage)
	}
	d.GalleryImages = safely("gallery_images", []string{}, func() []string { return GalleryImages(p, exclude...) })
}

// safely runs fn, returning fallback if it panics.
func safely[T any](field string, fallback T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("extract: extractor panicked",
				zap.String("field", field),
				zap.Any("panic", r),
			)
			out = fallback
		}
	}()
	return fn()
}
