package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/siteforge/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS businesses (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	source_url        TEXT NOT NULL,
	business_type     TEXT NOT NULL DEFAULT 'other',
	scraped_data      TEXT NOT NULL,
	generated_content TEXT,
	needs_input       TEXT NOT NULL DEFAULT '[]',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_businesses_type ON businesses(business_type);
CREATE INDEX IF NOT EXISTS idx_businesses_source_url ON businesses(source_url);
CREATE INDEX IF NOT EXISTS idx_businesses_created_at ON businesses(created_at);
`

const sqliteUpsert = `INSERT INTO businesses (id, name, source_url, business_type, scraped_data, generated_content, needs_input, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	source_url = excluded.source_url,
	business_type = excluded.business_type,
	scraped_data = excluded.scraped_data,
	generated_content = excluded.generated_content,
	needs_input = excluded.needs_input,
	updated_at = excluded.updated_at`

const sqliteSelect = `SELECT id, name, source_url, business_type, scraped_data, generated_content, needs_input, created_at, updated_at FROM businesses`

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) save(ctx context.Context, ex execer, b *model.Business) error {
	stamp(b, s.now())
	e, err := encode(b)
	if err != nil {
		return err
	}
	var generated any
	if e.generated != nil {
		generated = string(e.generated)
	}
	_, err = ex.ExecContext(ctx, sqliteUpsert,
		b.ID, b.Name, b.SourceURL, string(b.BusinessType),
		string(e.scraped), generated, string(e.needs),
		b.CreatedAt, b.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: save business %s", b.ID)
}

// SaveBusiness implements Store.
func (s *SQLiteStore) SaveBusiness(ctx context.Context, b *model.Business) error {
	if b == nil {
		return eris.New("sqlite: save business: nil business")
	}
	return s.save(ctx, s.db, b)
}

// SaveBusinesses implements Store.
func (s *SQLiteStore) SaveBusinesses(ctx context.Context, bs []*model.Business) (int64, error) {
	if len(bs) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, b := range bs {
		if b != nil {
			stamp(b, s.now())
		}
	}
	var n int64
	for _, b := range dedupe(bs) {
		if err := s.save(ctx, tx, b); err != nil {
			return 0, err
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return n, nil
}

// GetBusiness implements Store.
func (s *SQLiteStore) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	b, err := scanBusiness(s.db.QueryRowContext(ctx, sqliteSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get business %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get business %s", id)
	}
	return b, nil
}

// ListBusinesses implements Store. Results are newest first.
func (s *SQLiteStore) ListBusinesses(ctx context.Context, filter model.BusinessFilter) ([]model.Business, error) {
	var (
		where []string
		args  []any
	)
	if filter.BusinessType != "" {
		where = append(where, "business_type = ?")
		args = append(args, string(filter.BusinessType))
	}
	query := sqliteSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, listLimit(filter))
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list businesses")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.Business{}
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan business")
		}
		out = append(out, *b)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list businesses iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBusiness(row scannable) (*model.Business, error) {
	var (
		b                    model.Business
		businessType         string
		scraped, needs       string
		generated            sql.NullString
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&b.ID, &b.Name, &b.SourceURL, &businessType,
		&scraped, &generated, &needs, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	b.CreatedAt, b.UpdatedAt = createdAt.UTC(), updatedAt.UTC()
	var gen []byte
	if generated.Valid {
		gen = []byte(generated.String)
	}
	if err := decode(&b, businessType, []byte(scraped), gen, []byte(needs)); err != nil {
		return nil, err
	}
	return &b, nil
}
