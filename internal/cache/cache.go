// Package cache is the confirmation cache: the only state that survives
// across runs. It maps (bill_id, kind) to the last-used discovery strategy
// and whether a reviewer ever confirmed it, plus extension records, hearing
// announcements, bill titles, and committee contacts.
//
// Every Set is immediately durable. The engine is single-threaded, so no
// cross-process locking is required; a crash mid-batch loses at most the
// in-flight bill's update.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sells-group/legis-cli/internal/model"
)

// DateLayout is the wire format for bare dates in cache values.
const DateLayout = "2006-01-02"

// Entry is the normalized parser-cache record for one (bill_id, kind).
// Confirmed is only ever set by an explicit accept during a
// confirmation-enabled run.
type Entry struct {
	StrategyID string    `json:"strategy"`
	Confirmed  bool      `json:"confirmed"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ExtensionEntry caches the latest discovered extension order for a bill.
// IsFallback marks entries whose exact date could not be parsed; the resolver
// substitutes the maximum permitted extension at read time.
type ExtensionEntry struct {
	ExtensionDate string    `json:"extension_date,omitempty"` // DateLayout, empty for fallback entries
	ExtensionURL  string    `json:"extension_url,omitempty"`
	IsFallback    bool      `json:"is_fallback,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AnnouncementEntry caches hearing-announcement dates for a bill.
type AnnouncementEntry struct {
	AnnouncementDate     string    `json:"announcement_date,omitempty"`      // DateLayout
	ScheduledHearingDate string    `json:"scheduled_hearing_date,omitempty"` // DateLayout
	UpdatedAt            time.Time `json:"updated_at"`
}

// Store is the persistence contract for the confirmation cache. Lookups
// return (nil, nil) on absence; both backends keep the same key/value
// semantics.
type Store interface {
	GetParser(ctx context.Context, billID string, kind model.DocumentKind) (*Entry, error)
	SetParser(ctx context.Context, billID string, kind model.DocumentKind, strategyID string, confirmed bool) error
	IsConfirmed(ctx context.Context, billID string, kind model.DocumentKind) (bool, error)

	GetExtension(ctx context.Context, billID string) (*ExtensionEntry, error)
	SetExtension(ctx context.Context, billID string, entry ExtensionEntry) error

	GetAnnouncement(ctx context.Context, billID string) (*AnnouncementEntry, error)
	SetAnnouncement(ctx context.Context, billID string, entry AnnouncementEntry) error
	ClearAnnouncement(ctx context.Context, billID string) error

	GetTitle(ctx context.Context, billID string) (string, error)
	SetTitle(ctx context.Context, billID string, title string) error

	GetCommitteeContact(ctx context.Context, committeeID string) (*model.CommitteeContact, error)
	SetCommitteeContact(ctx context.Context, contact model.CommitteeContact) error

	// Search reports whether the keyword appears anywhere in stored values.
	Search(ctx context.Context, keyword string) (bool, error)

	Migrate(ctx context.Context) error
	Close() error
}

// decodeParserEntry normalizes both value shapes found in the wild: the
// current structured record and the legacy bare strategy identifier. Legacy
// entries are always unconfirmed. Unrecognized shapes decode to nil rather
// than erroring, so foreign schema versions never break a run.
func decodeParserEntry(raw []byte) *Entry {
	if len(raw) == 0 {
		return nil
	}

	var legacy string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		if legacy == "" {
			return nil
		}
		return &Entry{StrategyID: legacy, Confirmed: false}
	}

	var current struct {
		Strategy  string    `json:"strategy"`
		Module    string    `json:"module"` // older structured schema
		Confirmed bool      `json:"confirmed"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(raw, &current); err != nil {
		return nil
	}
	id := current.Strategy
	if id == "" {
		id = current.Module
	}
	if id == "" {
		return nil
	}
	return &Entry{StrategyID: id, Confirmed: current.Confirmed, UpdatedAt: current.UpdatedAt}
}
