package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/legis-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. This is the default
// backend for local runs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS bill_cache (
	bill_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (bill_id, kind)
);

CREATE TABLE IF NOT EXISTS committee_cache (
	committee_id TEXT PRIMARY KEY,
	value        TEXT NOT NULL,
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_bill_cache_kind ON bill_cache(kind);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "cache: migrate sqlite")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// getRaw returns the stored value for (bill_id, kind), or nil when absent.
func (s *SQLiteStore) getRaw(ctx context.Context, billID string, kind model.DocumentKind) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM bill_cache WHERE bill_id = ? AND kind = ?`,
		billID, string(kind),
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: get %s/%s", billID, kind)
	}
	return []byte(value), nil
}

// setRaw overwrites the value for (bill_id, kind). Each write is a single
// durable statement; there are no partial-write states.
func (s *SQLiteStore) setRaw(ctx context.Context, billID string, kind model.DocumentKind, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return eris.Wrapf(err, "cache: marshal %s/%s", billID, kind)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bill_cache (bill_id, kind, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (bill_id, kind) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		billID, string(kind), string(raw), time.Now().UTC(),
	)
	return eris.Wrapf(err, "cache: set %s/%s", billID, kind)
}

func (s *SQLiteStore) GetParser(ctx context.Context, billID string, kind model.DocumentKind) (*Entry, error) {
	raw, err := s.getRaw(ctx, billID, kind)
	if err != nil {
		return nil, err
	}
	return decodeParserEntry(raw), nil
}

func (s *SQLiteStore) SetParser(ctx context.Context, billID string, kind model.DocumentKind, strategyID string, confirmed bool) error {
	return s.setRaw(ctx, billID, kind, Entry{
		StrategyID: strategyID,
		Confirmed:  confirmed,
		UpdatedAt:  time.Now().UTC(),
	})
}

func (s *SQLiteStore) IsConfirmed(ctx context.Context, billID string, kind model.DocumentKind) (bool, error) {
	entry, err := s.GetParser(ctx, billID, kind)
	if err != nil {
		return false, err
	}
	return entry != nil && entry.Confirmed, nil
}

func (s *SQLiteStore) GetExtension(ctx context.Context, billID string) (*ExtensionEntry, error) {
	raw, err := s.getRaw(ctx, billID, model.KindExtension)
	if err != nil || raw == nil {
		return nil, err
	}
	var entry ExtensionEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, nil // foreign shape, treat as absent
	}
	return &entry, nil
}

func (s *SQLiteStore) SetExtension(ctx context.Context, billID string, entry ExtensionEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	return s.setRaw(ctx, billID, model.KindExtension, entry)
}

func (s *SQLiteStore) GetAnnouncement(ctx context.Context, billID string) (*AnnouncementEntry, error) {
	raw, err := s.getRaw(ctx, billID, model.KindHearingAnnouncement)
	if err != nil || raw == nil {
		return nil, err
	}
	var entry AnnouncementEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, nil
	}
	return &entry, nil
}

func (s *SQLiteStore) SetAnnouncement(ctx context.Context, billID string, entry AnnouncementEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	return s.setRaw(ctx, billID, model.KindHearingAnnouncement, entry)
}

func (s *SQLiteStore) ClearAnnouncement(ctx context.Context, billID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM bill_cache WHERE bill_id = ? AND kind = ?`,
		billID, string(model.KindHearingAnnouncement),
	)
	return eris.Wrapf(err, "cache: clear announcement %s", billID)
}

func (s *SQLiteStore) GetTitle(ctx context.Context, billID string) (string, error) {
	raw, err := s.getRaw(ctx, billID, model.KindTitle)
	if err != nil || raw == nil {
		return "", err
	}
	return decodeTitle(raw), nil
}

func (s *SQLiteStore) SetTitle(ctx context.Context, billID string, title string) error {
	return s.setRaw(ctx, billID, model.KindTitle, titleEntry{
		Value:     title,
		UpdatedAt: time.Now().UTC(),
	})
}

func (s *SQLiteStore) GetCommitteeContact(ctx context.Context, committeeID string) (*model.CommitteeContact, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM committee_cache WHERE committee_id = ?`, committeeID,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: get contact %s", committeeID)
	}
	var contact model.CommitteeContact
	if err := json.Unmarshal([]byte(value), &contact); err != nil {
		return nil, nil
	}
	return &contact, nil
}

func (s *SQLiteStore) SetCommitteeContact(ctx context.Context, contact model.CommitteeContact) error {
	raw, err := json.Marshal(contact)
	if err != nil {
		return eris.Wrap(err, "cache: marshal contact")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO committee_cache (committee_id, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (committee_id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		contact.CommitteeID, string(raw), time.Now().UTC(),
	)
	return eris.Wrapf(err, "cache: set contact %s", contact.CommitteeID)
}

func (s *SQLiteStore) Search(ctx context.Context, keyword string) (bool, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM bill_cache WHERE lower(value) LIKE ? OR lower(bill_id) LIKE ?) +
			(SELECT COUNT(*) FROM committee_cache WHERE lower(value) LIKE ? OR lower(committee_id) LIKE ?)`,
		pattern, pattern, pattern, pattern,
	).Scan(&count)
	if err != nil {
		return false, eris.Wrap(err, "cache: search")
	}
	return count > 0, nil
}

// titleEntry is the stored shape for bill titles.
type titleEntry struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// decodeTitle tolerates both the structured shape and a legacy bare string.
func decodeTitle(raw []byte) string {
	var legacy string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		return legacy
	}
	var entry titleEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return ""
	}
	return entry.Value
}
