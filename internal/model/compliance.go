package model

import "time"

// ComplianceState is the overall regulatory classification for a bill.
type ComplianceState string

const (
	StateCompliant    ComplianceState = "compliant"
	StateNonCompliant ComplianceState = "non-compliant"
	StateIncomplete   ComplianceState = "incomplete"
	StateUnknown      ComplianceState = "unknown"
)

// NoticeStatus says whether the hearing announcement gave adequate notice.
type NoticeStatus string

const (
	NoticeInRange    NoticeStatus = "in_range"     // gap >= minimum notice days
	NoticeOutOfRange NoticeStatus = "out_of_range" // gap < minimum notice days
	NoticeMissing    NoticeStatus = "missing"      // no announcement found
)

// BillCompliance is the per-bill classification result. Constructed once per
// run and never mutated afterwards.
type BillCompliance struct {
	BillID      string          `json:"bill_id"`
	CommitteeID string          `json:"committee_id"`
	HearingDate time.Time       `json:"hearing_date"`
	Summary     Evidence        `json:"summary"`
	Votes       Evidence        `json:"votes"`
	Status      BillStatus      `json:"status"`
	State       ComplianceState `json:"state"`
	Reason      string          `json:"reason"`
}

// BillResult is the flattened per-bill artifact row consumed by downstream
// reporting. Field names are stable: renderers address them by key.
type BillResult struct {
	BillID               string  `json:"bill_id"`
	BillTitle            string  `json:"bill_title,omitempty"`
	BillURL              string  `json:"bill_url"`
	HearingDate          string  `json:"hearing_date"`
	Deadline60           string  `json:"deadline_60"`
	EffectiveDeadline    string  `json:"effective_deadline"`
	ExtensionOrderURL    string  `json:"extension_order_url,omitempty"`
	ExtensionDate        string  `json:"extension_date,omitempty"`
	ReportedOut          bool    `json:"reported_out"`
	SummaryPresent       bool    `json:"summary_present"`
	SummaryURL           string  `json:"summary_url,omitempty"`
	VotesPresent         bool    `json:"votes_present"`
	VotesURL             string  `json:"votes_url,omitempty"`
	State                string  `json:"state"`
	Reason               string  `json:"reason"`
	NoticeStatus         string  `json:"notice_status"`
	NoticeGapDays        *int    `json:"notice_gap_days"`
	AnnouncementDate     string  `json:"announcement_date,omitempty"`
	ScheduledHearingDate string  `json:"scheduled_hearing_date,omitempty"`
}
