package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/siteforge/internal/db"
	"github.com/sells-group/siteforge/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
	now  func() time.Time
}

const postgresSelect = `SELECT id, name, source_url, business_type, scraped_data, generated_content, needs_input, created_at, updated_at FROM businesses`

var businessUpsert = db.UpsertConfig{
	Table:        "businesses",
	Columns:      businessColumns,
	ConflictKeys: []string{"id"},
	UpdateCols: []string{
		"name", "source_url", "business_type",
		"scraped_data", "generated_content", "needs_input",
		"updated_at",
	},
}

// hotQueries are prepared on each new connection under their own text,
// so plain Query calls with the same SQL reuse them.
var hotQueries = []string{
	postgresSelect + ` WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns, minConns := int32(10), int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for _, q := range hotQueries {
			if _, err := conn.Prepare(ctx, q, q); err != nil {
				return eris.Wrap(err, "postgres: prepare statement")
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return newPostgresWithPool(pool), nil
}

func newPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS businesses (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name              TEXT NOT NULL DEFAULT '',
	source_url        TEXT NOT NULL,
	business_type     TEXT NOT NULL DEFAULT 'other',
	scraped_data      JSONB NOT NULL,
	generated_content JSONB,
	needs_input       JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_businesses_type ON businesses(business_type);
CREATE INDEX IF NOT EXISTS idx_businesses_source_url ON businesses(source_url);
CREATE INDEX IF NOT EXISTS idx_businesses_created_at ON businesses(created_at DESC);
`

// Migrate creates the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) row(b *model.Business) ([]any, error) {
	e, err := encode(b)
	if err != nil {
		return nil, err
	}
	var generated any
	if e.generated != nil {
		generated = e.generated
	}
	return []any{
		b.ID, b.Name, b.SourceURL, string(b.BusinessType),
		e.scraped, generated, e.needs,
		b.CreatedAt, b.UpdatedAt,
	}, nil
}

// SaveBusiness implements Store.
func (s *PostgresStore) SaveBusiness(ctx context.Context, b *model.Business) error {
	if b == nil {
		return eris.New("postgres: save business: nil business")
	}
	stamp(b, s.now())
	row, err := s.row(b)
	if err != nil {
		return err
	}
	return eris.Wrapf(db.Upsert(ctx, s.pool, businessUpsert, row), "postgres: save business %s", b.ID)
}

// SaveBusinesses implements Store using a COPY-based bulk upsert.
func (s *PostgresStore) SaveBusinesses(ctx context.Context, bs []*model.Business) (int64, error) {
	now := s.now()
	for _, b := range bs {
		if b != nil {
			stamp(b, now)
		}
	}
	bs = dedupe(bs)
	rows := make([][]any, 0, len(bs))
	for _, b := range bs {
		row, err := s.row(b)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}
	n, err := db.BulkUpsert(ctx, s.pool, businessUpsert, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save businesses")
	}
	return n, nil
}

// GetBusiness implements Store.
func (s *PostgresStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	b, err := scanPostgresBusiness(s.pool.QueryRow(ctx, hotQueries[0], id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get business %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get business %s", id)
	}
	return b, nil
}

// ListBusinesses implements Store. Results are newest first.
func (s *PostgresStore) ListBusinesses(ctx context.Context, filter model.BusinessFilter) ([]model.Business, error) {
	query := postgresSelect + ` WHERE true`
	args := []any{}
	if filter.BusinessType != "" {
		args = append(args, string(filter.BusinessType))
		query += fmt.Sprintf(` AND business_type = $%d`, len(args))
	}
	args = append(args, listLimit(filter))
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d`, len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list businesses")
	}
	defer rows.Close()

	out := []model.Business{}
	for rows.Next() {
		b, err := scanPostgresBusiness(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan business")
		}
		out = append(out, *b)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list businesses iterate")
}

func scanPostgresBusiness(row pgx.Row) (*model.Business, error) {
	var (
		b                         model.Business
		businessType              string
		scraped, generated, needs []byte
	)
	if err := row.Scan(&b.ID, &b.Name, &b.SourceURL, &businessType,
		&scraped, &generated, &needs, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decode(&b, businessType, scraped, generated, needs); err != nil {
		return nil, err
	}
	return &b, nil
}
