package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/legis-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the cache uses; pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool, for shared server
// deployments where several operators read the same cache.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "cache: parse postgres config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "cache: create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "cache: ping postgres")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS bill_cache (
	bill_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (bill_id, kind)
);

CREATE TABLE IF NOT EXISTS committee_cache (
	committee_id TEXT PRIMARY KEY,
	value        JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_bill_cache_kind ON bill_cache(kind);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "cache: migrate postgres")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) getRaw(ctx context.Context, billID string, kind model.DocumentKind) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM bill_cache WHERE bill_id = $1 AND kind = $2`,
		billID, string(kind),
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: get %s/%s", billID, kind)
	}
	return value, nil
}

func (s *PostgresStore) setRaw(ctx context.Context, billID string, kind model.DocumentKind, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return eris.Wrapf(err, "cache: marshal %s/%s", billID, kind)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO bill_cache (bill_id, kind, value, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (bill_id, kind) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		billID, string(kind), raw, time.Now().UTC(),
	)
	return eris.Wrapf(err, "cache: set %s/%s", billID, kind)
}

func (s *PostgresStore) GetParser(ctx context.Context, billID string, kind model.DocumentKind) (*Entry, error) {
	raw, err := s.getRaw(ctx, billID, kind)
	if err != nil {
		return nil, err
	}
	return decodeParserEntry(raw), nil
}

func (s *PostgresStore) SetParser(ctx context.Context, billID string, kind model.DocumentKind, strategyID string, confirmed bool) error {
	return s.setRaw(ctx, billID, kind, Entry{
		StrategyID: strategyID,
		Confirmed:  confirmed,
		UpdatedAt:  time.Now().UTC(),
	})
}

func (s *PostgresStore) IsConfirmed(ctx context.Context, billID string, kind model.DocumentKind) (bool, error) {
	entry, err := s.GetParser(ctx, billID, kind)
	if err != nil {
		return false, err
	}
	return entry != nil && entry.Confirmed, nil
}

func (s *PostgresStore) GetExtension(ctx context.Context, billID string) (*ExtensionEntry, error) {
	raw, err := s.getRaw(ctx, billID, model.KindExtension)
	if err != nil || raw == nil {
		return nil, err
	}
	var entry ExtensionEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, nil
	}
	return &entry, nil
}

func (s *PostgresStore) SetExtension(ctx context.Context, billID string, entry ExtensionEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	return s.setRaw(ctx, billID, model.KindExtension, entry)
}

func (s *PostgresStore) GetAnnouncement(ctx context.Context, billID string) (*AnnouncementEntry, error) {
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

func (s *PostgresStore) SetAnnouncement(ctx context.Context, billID string, entry AnnouncementEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	return s.setRaw(ctx, billID, model.KindHearingAnnouncement, entry)
}

func (s *PostgresStore) ClearAnnouncement(ctx context.Context, billID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM bill_cache WHERE bill_id = $1 AND kind = $2`,
		billID, string(model.KindHearingAnnouncement),
	)
	return eris.Wrapf(err, "cache: clear announcement %s", billID)
}

func (s *PostgresStore) GetTitle(ctx context.Context, billID string) (string, error) {
	raw, err := s.getRaw(ctx, billID, model.KindTitle)
	if err != nil || raw == nil {
		return "", err
	}
	return decodeTitle(raw), nil
}

func (s *PostgresStore) SetTitle(ctx context.Context, billID string, title string) error {
	return s.setRaw(ctx, billID, model.KindTitle, titleEntry{
		Value:     title,
		UpdatedAt: time.Now().UTC(),
	})
}

func (s *PostgresStore) GetCommitteeContact(ctx context.Context, committeeID string) (*model.CommitteeContact, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM committee_cache WHERE committee_id = $1`, committeeID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: get contact %s", committeeID)
	}
	var contact model.CommitteeContact
	if err := json.Unmarshal(raw, &contact); err != nil {
		return nil, nil
	}
	return &contact, nil
}

func (s *PostgresStore) SetCommitteeContact(ctx context.Context, contact model.CommitteeContact) error {
	raw, err := json.Marshal(contact)
	if err != nil {
		return eris.Wrap(err, "cache: marshal contact")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO committee_cache (committee_id, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (committee_id) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		contact.CommitteeID, raw, time.Now().UTC(),
	)
	return eris.Wrapf(err, "cache: set contact %s", contact.CommitteeID)
}

func (s *PostgresStore) Search(ctx context.Context, keyword string) (bool, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM bill_cache WHERE lower(value::text) LIKE $1 OR lower(bill_id) LIKE $1) +
			(SELECT COUNT(*) FROM committee_cache WHERE lower(value::text) LIKE $1 OR lower(committee_id) LIKE $1)`,
		pattern,
	).Scan(&count)
	if err != nil {
		return false, eris.Wrap(err, "cache: search")
	}
	return count > 0, nil
}
