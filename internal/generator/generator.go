// Package generator produces marketing copy for a business from its scraped
// data.
package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/siteforge/internal/model"
)

// Generator turns an Input into website copy.
type Generator interface {
	Generate(ctx context.Context, in Input) (*model.GeneratedContent, error)
}

// Input is the subset of ScrapedData the generator is allowed to see.
type Input struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	BusinessType model.BusinessType `json:"businessType"`
	Services     []string           `json:"services"`
	Features     []string           `json:"features"`
}

// InputFrom maps scraped data onto an Input.
func InputFrom(d *model.ScrapedData) Input {
	if d == nil {
		return Input{BusinessType: model.BusinessTypeOther}
	}
	in := Input{
		Name:         d.Title,
		Description:  d.Description,
		BusinessType: d.BusinessType,
		Services:     d.Services,
		Features:     d.Features,
	}
	if !in.BusinessType.Valid() {
		in.BusinessType = model.BusinessTypeOther
	}
	// Product names stand in for services on storefronts.
	if len(in.Services) == 0 {
		for i, p := range d.Products {
			if i == 6 {
				break
			}
			in.Services = append(in.Services, p.Name)
		}
	}
	return in
}

// Fallback tries Primary and falls back to Secondary on error.
type Fallback struct {
	Primary   Generator
	Secondary Generator
}

// Generate implements Generator.
func (f Fallback) Generate(ctx context.Context, in Input) (*model.GeneratedContent, error) {
	out, err := f.Primary.Generate(ctx, in)
	if err == nil {
		return out, nil
	}
	zap.L().Warn("generator: primary failed, using fallback",
		zap.String("name", in.Name),
		zap.Error(err),
	)
	return f.Secondary.Generate(ctx, in)
}
