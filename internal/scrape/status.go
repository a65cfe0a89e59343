package scrape

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Phrases on a bill's history page that indicate the committee moved it.
var reportedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\breported favorably\b`),
	regexp.MustCompile(`(?i)\breported adversely\b`),
	regexp.MustCompile(`(?i)\breported, rules suspended\b`),
	regexp.MustCompile(`(?i)\breported from the committee\b`),
	regexp.MustCompile(`(?i)\breported, referred to\b`),
	regexp.MustCompile(`(?i)\bstudy\b`),
	regexp.MustCompile(`(?i)\baccompan\b`),
}

// Dates appear like "8/11/2025" or "June 4, 2025" in history notes.
var datePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`), "1/2/2006"},
	{regexp.MustCompile(`\b([A-Za-z]+ \d{1,2}, \d{4})\b`), "January 2, 2006"},
}

var hearingScheduledRe = regexp.MustCompile(`(?i)hearing scheduled for (\d{2}/\d{2}/\d{4})`)

// ReportedOut scans the bill page for reporting phrases. The second return is
// the last date printed on the page, an approximation of the action date.
func (f *Fetcher) ReportedOut(ctx context.Context, billURL string) (bool, *time.Time, error) {
	doc, err := f.Document(ctx, billURL)
	if err != nil {
		return false, nil, err
	}
	return reportedFromPage(doc)
}

func reportedFromPage(doc *goquery.Document) (bool, *time.Time, error) {
	text := collapseSpace(doc.Text())
	reported := false
	for _, re := range reportedPatterns {
		if re.MatchString(text) {
			reported = true
			break
		}
	}
	if !reported {
		return false, nil, nil
	}

	var last *time.Time
	for _, p := range datePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			if t, err := time.Parse(p.layout, m[1]); err == nil {
				parsed := t
				last = &parsed
			}
		}
	}
	return true, last, nil
}

// Announcement is a "Hearing scheduled for ..." entry from a bill's history.
type Announcement struct {
	AnnouncementDate *time.Time
	HearingDate      *time.Time
}

// HearingAnnouncement walks the bill history table for hearing announcements.
// When target is non-zero the announcement for that hearing date is returned;
// otherwise the earliest scheduled hearing wins.
func (f *Fetcher) HearingAnnouncement(ctx context.Context, billURL string, target time.Time) (*Announcement, error) {
	doc, err := f.Document(ctx, billURL)
	if err != nil {
		return nil, err
	}
	return announcementFromPage(doc, target), nil
}

func announcementFromPage(doc *goquery.Document, target time.Time) *Announcement {
	var earliest *Announcement
	var found *Announcement

	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td, th")
		if cells.Length() < 3 {
			return true
		}
		dateCell := strings.TrimSpace(cells.Eq(0).Text())
		actionCell := strings.TrimSpace(cells.Eq(2).Text())

		m := hearingScheduledRe.FindStringSubmatch(actionCell)
		if m == nil {
			return true
		}
		hearingDate, err := time.Parse("01/02/2006", m[1])
		if err != nil {
			return true
		}

		var announced *time.Time
		for _, p := range datePatterns {
			if dm := p.re.FindStringSubmatch(dateCell); dm != nil {
				if t, err := time.Parse(p.layout, dm[1]); err == nil {
					announced = &t
					break
				}
			}
		}

		if !target.IsZero() && sameDay(hearingDate, target) {
			found = &Announcement{AnnouncementDate: announced, HearingDate: &hearingDate}
			return false
		}
		if announced != nil &&
			(earliest == nil || hearingDate.Before(*earliest.HearingDate)) {
			earliest = &Announcement{AnnouncementDate: announced, HearingDate: &hearingDate}
		}
		return true
	})

	if found != nil {
		return found
	}
	return earliest
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

var actTitleRe = regexp.MustCompile(`(?i)\b(an|a)\s+(act|resolve)\b`)

// titleStops is boilerplate that sometimes trails the title text.
var titleStops = []string{"Bill History", "Displaying", "Tabs", "Sponsor:"}

// BillTitle extracts the long title of a bill ("An Act ...") from its detail
// page, or "" when no plausible title is found.
func (f *Fetcher) BillTitle(ctx context.Context, billURL string) (string, error) {
	doc, err := f.Document(ctx, billURL)
	if err != nil {
		return "", err
	}
	return titleFromPage(doc), nil
}

func titleFromPage(doc *goquery.Document) string {
	// The title sits in an H2 inside the main content column.
	title := ""
	doc.Find("h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if parentClass, _ := sel.Parent().Attr("class"); strings.Contains(parentClass, "col-md-8") {
			title = collapseSpace(sel.Text())
			return false
		}
		return true
	})
	if title != "" {
		return title
	}

	// Fallback: scan top-of-page text blocks for the shortest plausible line.
	var candidates []string
	doc.Find("h1, h2, h3, p, div").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= 40 {
			return false
		}
		txt := collapseSpace(sel.Text())
		if !actTitleRe.MatchString(txt) {
			return true
		}
		for _, stop := range titleStops {
			if idx := strings.Index(txt, stop); idx >= 0 {
				txt = strings.TrimSpace(txt[:idx])
			}
		}
		if len(txt) > 5 && len(txt) < 200 {
			candidates = append(candidates, txt)
		}
		return true
	})
	for _, c := range candidates {
		if title == "" || len(c) < len(title) {
			title = c
		}
	}
	return title
}
