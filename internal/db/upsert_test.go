package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var businessCfg = UpsertConfig{
	Table:        "businesses",
	Columns:      []string{"id", "name", "updated_at"},
	ConflictKeys: []string{"id"},
}

func TestUpsertSQL(t *testing.T) {
	q, err := UpsertSQL(businessCfg)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "businesses" ("id", "name", "updated_at") VALUES ($1, $2, $3) `+
			`ON CONFLICT ("id") DO UPDATE SET "name" = EXCLUDED."name", "updated_at" = EXCLUDED."updated_at"`,
		q)
}

func TestUpsertSQL_KeysOnly(t *testing.T) {
	q, err := UpsertSQL(UpsertConfig{Table: "app.tags", Columns: []string{"id"}, ConflictKeys: []string{"id"}})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "app"."tags" ("id") VALUES ($1) ON CONFLICT ("id") DO NOTHING`, q)
}

func TestUpsertSQL_Invalid(t *testing.T) {
	_, err := UpsertSQL(UpsertConfig{Table: "t", ConflictKeys: []string{"id"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")

	_, err = UpsertSQL(UpsertConfig{Table: "t", Columns: []string{"id"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestUpsert(t *testing.T) {
	m, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer m.Close()

	m.ExpectExec(`INSERT INTO "businesses"`).
		WithArgs("b1", "Joe's Pizza", "now").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, Upsert(context.Background(), m, businessCfg, []any{"b1", "Joe's Pizza", "now"}))
	assert.NoError(t, m.ExpectationsWereMet())
}

func TestUpsert_ArityMismatch(t *testing.T) {
	err := Upsert(context.Background(), nil, businessCfg, []any{"b1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 values for 3 columns")
}

func TestBulkUpsert(t *testing.T) {
	m, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer m.Close()

	rows := [][]any{{"b1", "A", "t"}, {"b2", "B", "t"}}
	m.ExpectBegin()
	m.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	m.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_businesses"}, businessCfg.Columns).WillReturnResult(2)
	m.ExpectExec("INSERT INTO").WillReturnResult(pgxmock.NewResult("INSERT", 2))
	m.ExpectCommit()

	n, err := BulkUpsert(context.Background(), m, businessCfg, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, m.ExpectationsWereMet())
}

func TestBulkUpsert_CopyFails(t *testing.T) {
	m, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer m.Close()

	m.ExpectBegin()
	m.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	m.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_businesses"}, businessCfg.Columns).WillReturnError(errors.New("disk full"))
	m.ExpectRollback()

	_, err = BulkUpsert(context.Background(), m, businessCfg, [][]any{{"b1", "A", "t"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy into temp table")
	assert.NoError(t, m.ExpectationsWereMet())
}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.Background(), nil, businessCfg, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"app.businesses", `"app"."businesses"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTable(tt.input))
		})
	}
}
