// Package classify turns deadline facts and discovered evidence into a
// compliance classification.
//
// Rule precedence:
//  1. Notice out of range is a deal-breaker: non-compliant regardless of
//     anything else.
//  2. Notice missing: unknown when there is no other evidence at all,
//     otherwise non-compliant.
//  3. Notice in range: Senate bills are exempt from deadline enforcement and
//     are judged on summaries and votes alone; House and other bills are
//     unknown until the effective deadline passes, then judged on how many of
//     {reported out, votes, summaries} are satisfied.
package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/legis-cli/internal/deadline"
	"github.com/sells-group/legis-cli/internal/model"
)

// Classifier applies the compliance rule table. The clock is injectable so
// deadline-relative branches are testable.
type Classifier struct {
	minNoticeDays int
	now           func() time.Time
}

// New creates a classifier with the given minimum notice requirement.
func New(minNoticeDays int) *Classifier {
	if minNoticeDays <= 0 {
		minNoticeDays = deadline.DefaultMinNoticeDays
	}
	return &Classifier{minNoticeDays: minNoticeDays, now: time.Now}
}

// WithNow sets a fixed clock for testing.
func (c *Classifier) WithNow(t time.Time) *Classifier {
	c.now = func() time.Time { return t }
	return c
}

// Classify produces the BillCompliance record for one bill. The reason is
// always a human-readable sentence naming the deciding factors; downstream
// reporting depends on it.
func (c *Classifier) Classify(billID, committeeID string, status model.BillStatus, summary, votes model.Evidence) model.BillCompliance {
	out := model.BillCompliance{
		BillID:      billID,
		CommitteeID: committeeID,
		HearingDate: status.HearingDate,
		Summary:     summary,
		Votes:       votes,
		Status:      status,
	}

	noticeStatus, gapDays := deadline.NoticeStatus(status, c.minNoticeDays)

	switch noticeStatus {
	case model.NoticeOutOfRange:
		out.State = model.StateNonCompliant
		out.Reason = fmt.Sprintf("Insufficient notice: %d days (minimum %d)", *gapDays, c.minNoticeDays)
		return out

	case model.NoticeMissing:
		hasEvidence := status.ReportedOut || votes.Present || summary.Present
		if !hasEvidence {
			out.State = model.StateUnknown
			out.Reason = "No hearing announcement found and no other evidence"
		} else {
			out.State = model.StateNonCompliant
			out.Reason = "No hearing announcement found"
		}
		return out
	}

	// Notice is adequate.
	gap := *gapDays

	if strings.HasPrefix(strings.ToUpper(billID), model.SenateChamberPrefix) {
		out.State, out.Reason = c.classifySenate(summary, votes, gap)
		return out
	}

	if !c.now().After(status.EffectiveDeadline) {
		out.State = model.StateUnknown
		out.Reason = fmt.Sprintf("Before deadline, adequate notice (%d days)", gap)
		return out
	}

	out.State, out.Reason = c.classifyPastDeadline(status.ReportedOut, summary.Present, votes.Present, gap)
	return out
}

// classifySenate judges Senate bills on document presence alone: reporting
// deadlines are not enforced for that chamber.
func (c *Classifier) classifySenate(summary, votes model.Evidence, gap int) (model.ComplianceState, string) {
	switch {
	case votes.Present && summary.Present:
		return model.StateCompliant,
			fmt.Sprintf("Senate bill: summaries and votes posted, adequate notice (%d days)", gap)
	case votes.Present || summary.Present:
		missing := "summaries"
		if summary.Present {
			missing = "votes"
		}
		return model.StateIncomplete,
			fmt.Sprintf("Senate bill: %s missing, adequate notice (%d days)", missing, gap)
	default:
		return model.StateNonCompliant,
			fmt.Sprintf("Senate bill: no votes or summaries posted, adequate notice (%d days)", gap)
	}
}

func (c *Classifier) classifyPastDeadline(reportedOut, summaryPresent, votesPresent bool, gap int) (model.ComplianceState, string) {
	presentCount := 0
	for _, ok := range []bool{reportedOut, votesPresent, summaryPresent} {
		if ok {
			presentCount++
		}
	}

	switch presentCount {
	case 3:
		return model.StateCompliant,
			fmt.Sprintf("All requirements met: reported out, votes posted, summaries posted, adequate notice (%d days)", gap)
	case 2:
		return model.StateIncomplete,
			fmt.Sprintf("One requirement missing: %s, adequate notice (%d days)",
				missingRequirements(reportedOut, votesPresent, summaryPresent), gap)
	default:
		return model.StateNonCompliant,
			fmt.Sprintf("Factors: %s, adequate notice (%d days)",
				missingRequirements(reportedOut, votesPresent, summaryPresent), gap)
	}
}

// missingRequirements lists the unmet factors in a fixed, readable order.
func missingRequirements(reportedOut, votesPresent, summaryPresent bool) string {
	var missing []string
	if !reportedOut {
		missing = append(missing, "not reported out")
	}
	if !votesPresent {
		missing = append(missing, "no votes posted")
	}
	if !summaryPresent {
		missing = append(missing, "no summaries posted")
	}
	return strings.Join(missing, ", ")
}
