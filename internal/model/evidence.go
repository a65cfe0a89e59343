package model

import "time"

// DocumentKind identifies one kind of cacheable evidence or fact per bill.
type DocumentKind string

const (
	KindSummary              DocumentKind = "summary"
	KindVotes                DocumentKind = "votes"
	KindExtension            DocumentKind = "extension"
	KindHearingAnnouncement  DocumentKind = "hearing_announcement"
	KindTitle                DocumentKind = "title"
	KindCommitteeContact     DocumentKind = "committee_contact"
)

// Label returns the human-facing name used in confirmation prompts.
func (k DocumentKind) Label() string {
	switch k {
	case KindSummary:
		return "summary"
	case KindVotes:
		return "vote record"
	default:
		return string(k)
	}
}

// Evidence is the outcome of resolving one document kind for one bill.
// NeedsReview means the candidate was auto-accepted without an explicit
// confirmation and should be flagged for later human audit.
type Evidence struct {
	Present     bool   `json:"present"`
	Location    string `json:"location"` // coarse provenance tag, e.g. "hearing_pdf"
	SourceURL   string `json:"source_url,omitempty"`
	StrategyID  string `json:"strategy_id,omitempty"` // which strategy landed
	NeedsReview bool   `json:"needs_review"`
}

// VoteTally is a per-member vote line from a parsed vote record.
type VoteTally struct {
	Member string `json:"member"`
	Vote   string `json:"vote"` // "Yea", "Nay", "Present", etc.
}

// VoteDetail carries the optional vote extras a strategy's parse may supply.
type VoteDetail struct {
	Motion  string         `json:"motion,omitempty"`
	Date    string         `json:"date,omitempty"` // ISO/human date when cheaply parseable
	Tallies map[string]int `json:"tallies,omitempty"`
	Records []VoteTally    `json:"records,omitempty"`
}

// ExtensionOrder is an official grant of additional reporting time.
// IsFallback marks orders whose bill id had to be recovered from the order
// URL; IsDateFallback marks orders whose extension date could not be parsed
// and was substituted conservatively at resolution time.
type ExtensionOrder struct {
	BillID         string    `json:"bill_id"`
	CommitteeID    string    `json:"committee_id"`
	ExtensionDate  time.Time `json:"extension_date"`
	SourceURL      string    `json:"source_url"`
	OrderType      string    `json:"order_type"` // "Extension Order", "Committee Extension Order", ...
	DiscoveredAt   time.Time `json:"discovered_at"`
	IsFallback     bool      `json:"is_fallback"`
	IsDateFallback bool      `json:"is_date_fallback"`
}

// CommitteeContact holds chair and office details for one committee.
type CommitteeContact struct {
	CommitteeID string `json:"committee_id"`
	Name        string `json:"name"`
	Chamber     string `json:"chamber"`
	URL         string `json:"url"`

	HouseRoom     string `json:"house_room,omitempty"`
	HouseAddress  string `json:"house_address,omitempty"`
	HousePhone    string `json:"house_phone,omitempty"`
	SenateRoom    string `json:"senate_room,omitempty"`
	SenateAddress string `json:"senate_address,omitempty"`
	SenatePhone   string `json:"senate_phone,omitempty"`

	SenateChairName      string `json:"senate_chair_name,omitempty"`
	SenateChairEmail     string `json:"senate_chair_email,omitempty"`
	SenateViceChairName  string `json:"senate_vice_chair_name,omitempty"`
	SenateViceChairEmail string `json:"senate_vice_chair_email,omitempty"`
	HouseChairName       string `json:"house_chair_name,omitempty"`
	HouseChairEmail      string `json:"house_chair_email,omitempty"`
	HouseViceChairName   string `json:"house_vice_chair_name,omitempty"`
	HouseViceChairEmail  string `json:"house_vice_chair_email,omitempty"`
}
