// Package store persists onboarded businesses.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/siteforge/internal/model"
)

// ErrNotFound is returned when a business ID does not exist.
var ErrNotFound = eris.New("store: business not found")

// defaultListLimit caps ListBusinesses when the filter sets no limit.
const defaultListLimit = 100

// Store defines the persistence interface for onboarded businesses.
type Store interface {
	// SaveBusiness inserts or replaces b, assigning an ID and timestamps.
	SaveBusiness(ctx context.Context, b *model.Business) error
	// SaveBusinesses writes many businesses in one transaction.
	SaveBusinesses(ctx context.Context, bs []*model.Business) (int64, error)
	GetBusiness(ctx context.Context, id string) (*model.Business, error)
	ListBusinesses(ctx context.Context, filter model.BusinessFilter) ([]model.Business, error)

	Migrate(ctx context.Context) error
	Close() error
}

// PoolConfig holds optional Postgres pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// Open connects to the backend named by driver ("sqlite" or "postgres")
// and runs migrations.
func Open(ctx context.Context, driver, dsn string, pool *PoolConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "", "sqlite":
		if dsn == "" {
			dsn = "siteforge.db"
		}
		s, err = NewSQLite(dsn)
	case "postgres":
		s, err = NewPostgres(ctx, dsn, pool)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

var businessColumns = []string{
	"id", "name", "source_url", "business_type",
	"scraped_data", "generated_content", "needs_input",
	"created_at", "updated_at",
}

// stamp assigns an ID and timestamps before a write.
func stamp(b *model.Business, now time.Time) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	if !b.BusinessType.Valid() {
		b.BusinessType = model.BusinessTypeOther
	}
	if b.NeedsInput == nil {
		b.NeedsInput = []string{}
	}
}

// dedupe keeps the last write for each ID, preserving first-seen order.
func dedupe(bs []*model.Business) []*model.Business {
	idx := make(map[string]int, len(bs))
	out := make([]*model.Business, 0, len(bs))
	for _, b := range bs {
		if b == nil {
			continue
		}
		if i, ok := idx[b.ID]; ok {
			out[i] = b
			continue
		}
		idx[b.ID] = len(out)
		out = append(out, b)
	}
	return out
}

// encoded holds the JSON columns of a business row.
type encoded struct {
	scraped   []byte
	generated []byte // nil when no content was generated
	needs     []byte
}

func encode(b *model.Business) (encoded, error) {
	var e encoded
	var err error
	if e.scraped, err = json.Marshal(b.ScrapedData); err != nil {
		return e, eris.Wrap(err, "store: marshal scraped data")
	}
	if b.GeneratedContent != nil {
		if e.generated, err = json.Marshal(b.GeneratedContent); err != nil {
			return e, eris.Wrap(err, "store: marshal generated content")
		}
	}
	if e.needs, err = json.Marshal(b.NeedsInput); err != nil {
		return e, eris.Wrap(err, "store: marshal needs input")
	}
	return e, nil
}

func decode(b *model.Business, businessType string, scraped, generated, needs []byte) error {
	b.BusinessType = model.ParseBusinessType(businessType)
	if len(scraped) > 0 && string(scraped) != "null" {
		b.ScrapedData = &model.ScrapedData{}
		if err := json.Unmarshal(scraped, b.ScrapedData); err != nil {
			return eris.Wrapf(err, "store: unmarshal scraped data for %s", b.ID)
		}
	}
	if len(generated) > 0 && string(generated) != "null" {
		b.GeneratedContent = &model.GeneratedContent{}
		if err := json.Unmarshal(generated, b.GeneratedContent); err != nil {
			return eris.Wrapf(err, "store: unmarshal generated content for %s", b.ID)
		}
	}
	b.NeedsInput = []string{}
	if len(needs) > 0 {
		if err := json.Unmarshal(needs, &b.NeedsInput); err != nil {
			return eris.Wrapf(err, "store: unmarshal needs input for %s", b.ID)
		}
		if b.NeedsInput == nil {
			b.NeedsInput = []string{}
		}
	}
	return nil
}

func listLimit(f model.BusinessFilter) int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}
