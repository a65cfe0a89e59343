package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/legis-cli/internal/model"
)

var _ Store = (*SQLiteStore)(nil)
var _ Store = (*PostgresStore)(nil)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_ParserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry, err := s.GetParser(ctx, "H73", model.KindSummary)
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, s.SetParser(ctx, "H73", model.KindSummary, "hearing_docs", true))

	entry, err = s.GetParser(ctx, "H73", model.KindSummary)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "hearing_docs", entry.StrategyID)
	assert.True(t, entry.Confirmed)
	assert.False(t, entry.UpdatedAt.IsZero())

	confirmed, err := s.IsConfirmed(ctx, "H73", model.KindSummary)
	require.NoError(t, err)
	assert.True(t, confirmed)
}

func TestSQLiteStore_SetParserOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetParser(ctx, "H73", model.KindVotes, "bill_embedded", false))
	require.NoError(t, s.SetParser(ctx, "H73", model.KindVotes, "hearing_docs", true))

	entry, err := s.GetParser(ctx, "H73", model.KindVotes)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "hearing_docs", entry.StrategyID)
	assert.True(t, entry.Confirmed)
}

func TestSQLiteStore_KindsAreIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetParser(ctx, "H73", model.KindSummary, "hearing_docs", true))

	confirmed, err := s.IsConfirmed(ctx, "H73", model.KindVotes)
	require.NoError(t, err)
	assert.False(t, confirmed)
}

func TestSQLiteStore_LegacyStringEntryIsUnconfirmed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Simulate an entry written by the old schema: bare strategy identifier.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bill_cache (bill_id, kind, value) VALUES (?, ?, ?)`,
		"H104", string(model.KindSummary), `"hearing_docs"`,
	)
	require.NoError(t, err)

	entry, err := s.GetParser(ctx, "H104", model.KindSummary)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "hearing_docs", entry.StrategyID)
	assert.False(t, entry.Confirmed)

	confirmed, err := s.IsConfirmed(ctx, "H104", model.KindSummary)
	require.NoError(t, err)
	assert.False(t, confirmed)
}

func TestSQLiteStore_ForeignShapeTreatedAsAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bill_cache (bill_id, kind, value) VALUES (?, ?, ?)`,
		"H104", string(model.KindSummary), `[1, 2, 3]`,
	)
	require.NoError(t, err)

	entry, err := s.GetParser(ctx, "H104", model.KindSummary)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestSQLiteStore_ExtensionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetExtension(ctx, "H73")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SetExtension(ctx, "H73", ExtensionEntry{
		ExtensionDate: "2025-12-03",
		ExtensionURL:  "https://example.gov/order",
	}))

	got, err = s.GetExtension(ctx, "H73")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2025-12-03", got.ExtensionDate)
	assert.False(t, got.IsFallback)
}

func TestSQLiteStore_ExtensionFallbackEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetExtension(ctx, "H73", ExtensionEntry{IsFallback: true}))

	got, err := s.GetExtension(ctx, "H73")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsFallback)
	assert.Empty(t, got.ExtensionDate)
}

func TestSQLiteStore_AnnouncementRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetAnnouncement(ctx, "H73", AnnouncementEntry{
		AnnouncementDate:     "2025-09-05",
		ScheduledHearingDate: "2025-09-15",
	}))

	got, err := s.GetAnnouncement(ctx, "H73")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2025-09-05", got.AnnouncementDate)
	assert.Equal(t, "2025-09-15", got.ScheduledHearingDate)

	require.NoError(t, s.ClearAnnouncement(ctx, "H73"))
	got, err = s.GetAnnouncement(ctx, "H73")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_TitleRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	title, err := s.GetTitle(ctx, "H73")
	require.NoError(t, err)
	assert.Empty(t, title)

	require.NoError(t, s.SetTitle(ctx, "H73", "An Act relative to utility oversight"))

	title, err = s.GetTitle(ctx, "H73")
	require.NoError(t, err)
	assert.Equal(t, "An Act relative to utility oversight", title)
}

func TestSQLiteStore_LegacyTitleString(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bill_cache (bill_id, kind, value) VALUES (?, ?, ?)`,
		"H73", string(model.KindTitle), `"An Act relative to something"`,
	)
	require.NoError(t, err)

	title, err := s.GetTitle(ctx, "H73")
	require.NoError(t, err)
	assert.Equal(t, "An Act relative to something", title)
}

func TestSQLiteStore_CommitteeContactRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetCommitteeContact(ctx, "J33")
	require.NoError(t, err)
	assert.Nil(t, got)

	contact := model.CommitteeContact{
		CommitteeID:    "J33",
		Name:           "Telecommunications, Utilities, and Energy",
		Chamber:        "Joint",
		HouseChairName: "Jane Roe",
		HousePhone:     "(617) 722-2130",
	}
	require.NoError(t, s.SetCommitteeContact(ctx, contact))

	got, err = s.GetCommitteeContact(ctx, "J33")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, contact, *got)
}

func TestSQLiteStore_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetParser(ctx, "H73", model.KindSummary, "hearing_docs", true))

	found, err := s.Search(ctx, "HEARING_DOCS")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.Search(ctx, "h73")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.Search(ctx, "nowhere")
	require.NoError(t, err)
	assert.False(t, found)
}
