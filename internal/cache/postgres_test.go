package cache

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/legis-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresStore{pool: mock}, mock
}

func TestPostgresStore_GetParser_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT value FROM bill_cache WHERE bill_id = \$1 AND kind = \$2`).
		WithArgs("H73", "summary").
		WillReturnError(pgx.ErrNoRows)

	entry, err := s.GetParser(context.Background(), "H73", model.KindSummary)
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetParser_StructuredEntry(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	value := []byte(`{"strategy":"hearing_docs","confirmed":true,"updated_at":"2025-09-05T12:00:00Z"}`)
	mock.ExpectQuery(`SELECT value FROM bill_cache`).
		WithArgs("H73", "summary").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(value))

	entry, err := s.GetParser(context.Background(), "H73", model.KindSummary)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "hearing_docs", entry.StrategyID)
	assert.True(t, entry.Confirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetParser_LegacyString(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT value FROM bill_cache`).
		WithArgs("H73", "votes").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`"bill_embedded"`)))

	entry, err := s.GetParser(context.Background(), "H73", model.KindVotes)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "bill_embedded", entry.StrategyID)
	assert.False(t, entry.Confirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetParser(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO bill_cache`).
		WithArgs("H73", "summary", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SetParser(context.Background(), "H73", model.KindSummary, "hearing_docs", true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS bill_cache`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Search(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs("%h73%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	found, err := s.Search(context.Background(), "H73")
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecodeParserEntry(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *Entry
	}{
		{name: "empty", raw: "", want: nil},
		{name: "legacy empty string", raw: `""`, want: nil},
		{
			name: "legacy bare identifier",
			raw:  `"hearing_docs"`,
			want: &Entry{StrategyID: "hearing_docs"},
		},
		{
			name: "older structured schema with module key",
			raw:  `{"module":"bill_tab","confirmed":true}`,
			want: &Entry{StrategyID: "bill_tab", Confirmed: true},
		},
		{
			name: "current schema",
			raw:  `{"strategy":"hearing_docs","confirmed":false}`,
			want: &Entry{StrategyID: "hearing_docs"},
		},
		{name: "object without identifier", raw: `{"confirmed":true}`, want: nil},
		{name: "foreign shape", raw: `42`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeParserEntry([]byte(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}
