// Package deadline implements the statutory deadline and hearing-notice
// arithmetic. Everything here is pure: callers inject dates, including "today".
package deadline

import (
	"time"

	"github.com/sells-group/legis-cli/internal/model"
)

const (
	// ReportingDays is the default committee reporting window after a hearing.
	ReportingDays = 60
	// MaxReportingDays caps the window even under an extension order.
	MaxReportingDays = 90
	// DefaultMinNoticeDays is the minimum adequate hearing notice.
	DefaultMinNoticeDays = 10
)

// Deadlines holds the derived reporting deadlines for one hearing.
type Deadlines struct {
	Deadline60 time.Time
	Deadline90 time.Time
	Effective  time.Time
}

// Compute derives the 60-day, 90-day, and effective deadlines from a hearing
// date and an optional extension. An extension can never move the effective
// deadline earlier than the 60-day mark nor later than the 90-day mark.
func Compute(hearingDate time.Time, extensionUntil *time.Time) Deadlines {
	d60 := hearingDate.AddDate(0, 0, ReportingDays)
	d90 := hearingDate.AddDate(0, 0, MaxReportingDays)
	if extensionUntil == nil {
		return Deadlines{Deadline60: d60, Deadline90: d90, Effective: d60}
	}
	effective := *extensionUntil
	if effective.After(d90) {
		effective = d90
	}
	if effective.Before(d60) {
		effective = d60
	}
	return Deadlines{Deadline60: d60, Deadline90: d90, Effective: effective}
}

// FallbackExtension is the conservative substitute used when an extension
// order exists but its date could not be parsed: the maximum permitted
// extension, hearing date plus 90 days.
func FallbackExtension(hearingDate time.Time) time.Time {
	return hearingDate.AddDate(0, 0, MaxReportingDays)
}

// NoticeStatus computes the notice classification and the gap in days between
// announcement and scheduled hearing. The gap pointer is nil when either date
// is missing.
func NoticeStatus(status model.BillStatus, minNoticeDays int) (model.NoticeStatus, *int) {
	if status.AnnouncementDate == nil || status.ScheduledHearingDate == nil {
		return model.NoticeMissing, nil
	}
	gap := daysBetween(*status.AnnouncementDate, *status.ScheduledHearingDate)
	if gap >= minNoticeDays {
		return model.NoticeInRange, &gap
	}
	return model.NoticeOutOfRange, &gap
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
