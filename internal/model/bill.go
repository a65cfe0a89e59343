// Package model defines the domain types shared across the compliance pipeline.
package model

import "time"

// Committee is a legislative committee subject to procedural deadlines.
type Committee struct {
	ID      string `json:"id" yaml:"id"`           // e.g. "J33", "H33"
	Name    string `json:"name" yaml:"name"`       // visible title on the site
	Chamber string `json:"chamber" yaml:"chamber"` // "Joint" or "House"
	URL     string `json:"url" yaml:"url"`         // absolute detail URL
}

// Hearing is a scheduled committee event where bills are heard.
type Hearing struct {
	ID          string    `json:"id"` // e.g. "5114" from /Events/Hearings/Detail/5114
	CommitteeID string    `json:"committee_id"`
	URL         string    `json:"url"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"` // "Completed"/"Confirmed"/etc, best-effort
	Title       string    `json:"title"`
}

// BillAtHearing is one bill referred to a committee at a specific hearing.
// Produced by the collectors, consumed read-only by the engine.
type BillAtHearing struct {
	BillID      string    `json:"bill_id"`    // canonical like "H73", "S197"
	BillLabel   string    `json:"bill_label"` // display label as shown, e.g. "H. 73"
	BillURL     string    `json:"bill_url"`
	HearingID   string    `json:"hearing_id"`
	HearingDate time.Time `json:"hearing_date"`
	CommitteeID string    `json:"committee_id"`
	HearingURL  string    `json:"hearing_url"`
}

// BillStatus captures deadline and notice facts for one bill.
type BillStatus struct {
	BillID                string     `json:"bill_id"`
	CommitteeID           string     `json:"committee_id"`
	HearingDate           time.Time  `json:"hearing_date"`
	Deadline60            time.Time  `json:"deadline_60"`
	Deadline90            time.Time  `json:"deadline_90"`
	ReportedOut           bool       `json:"reported_out"`
	ReportedDate          *time.Time `json:"reported_date,omitempty"`
	ExtensionUntil        *time.Time `json:"extension_until,omitempty"`
	EffectiveDeadline     time.Time  `json:"effective_deadline"`
	AnnouncementDate      *time.Time `json:"announcement_date,omitempty"`
	ScheduledHearingDate  *time.Time `json:"scheduled_hearing_date,omitempty"`
}

// SenateChamberPrefix marks bills exempt from reporting-deadline enforcement.
const SenateChamberPrefix = "S"
