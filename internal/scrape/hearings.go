package scrape

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/legis-cli/internal/model"
)

var (
	hearingHrefRe = regexp.MustCompile(`(?i)/Events/Hearings/Detail/(\d+)$`)
	billHrefRe    = regexp.MustCompile(`(?i)/Bills/\d+/(H|S)\d+`)

	// "Wednesday, April 9, 2025" somewhere on the hearing detail page.
	eventDateRe = regexp.MustCompile(
		`(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday),\s+[A-Za-z]+\s+\d{1,2},\s+\d{4}`)

	billIDCleanRe  = regexp.MustCompile(`[.\s]`)
	billIDSuffixRe = regexp.MustCompile(`(H|S)(\d+)[A-Z]*$`)
)

const eventDateLayout = "Monday, January 2, 2006"

// NormalizeBillID canonicalizes a bill label: "H. 73" becomes "H73",
// "S.197 C" becomes "S197".
func NormalizeBillID(label string) string {
	s := strings.ToUpper(strings.ReplaceAll(label, " ", " "))
	s = billIDCleanRe.ReplaceAllString(s, "")
	return billIDSuffixRe.ReplaceAllString(s, "$1$2")
}

// CommitteeHearings scrapes the committee's Hearings tab and returns its
// hearings sorted oldest first. Each listed hearing's detail page is visited
// for the canonical event date.
func (f *Fetcher) CommitteeHearings(ctx context.Context, committeeID string) ([]model.Hearing, error) {
	doc, err := f.Document(ctx, "/Committees/Detail/"+committeeID+"/Hearings")
	if err != nil {
		return nil, err
	}

	var hearings []model.Hearing
	var visitErr error
	doc.Find(`a[href*="/Events/Hearings/Detail/"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		m := hearingHrefRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}
		id := m[1]
		detailURL := f.URL("/Events/Hearings/Detail/" + id)

		detail, err := f.Document(ctx, detailURL)
		if err != nil {
			visitErr = err
			return false
		}

		// The surrounding row carries the status flag on the listing page.
		rowText := collapseSpace(sel.Parent().Text())
		hearings = append(hearings, model.Hearing{
			ID:          id,
			CommitteeID: committeeID,
			URL:         detailURL,
			Date:        parseEventDate(detail),
			Status:      hearingStatus(rowText),
			Title:       collapseSpace(sel.Text()),
		})
		return true
	})
	if visitErr != nil {
		return nil, visitErr
	}

	sort.Slice(hearings, func(i, j int) bool {
		if !hearings[i].Date.Equal(hearings[j].Date) {
			return hearings[i].Date.Before(hearings[j].Date)
		}
		return hearings[i].ID < hearings[j].ID
	})
	return hearings, nil
}

func hearingStatus(rowText string) string {
	switch {
	case strings.Contains(strings.ToLower(rowText), "confirmed"):
		return "Confirmed"
	case strings.Contains(strings.ToLower(rowText), "completed"):
		return "Completed"
	default:
		return ""
	}
}

// parseEventDate finds the hearing date on a detail page. The page carries an
// "Event Date:" field; when absent the first long-form date anywhere wins.
func parseEventDate(doc *goquery.Document) time.Time {
	text := collapseSpace(doc.Text())
	if m := eventDateRe.FindString(text); m != "" {
		if t, err := time.Parse(eventDateLayout, m); err == nil {
			return t
		}
	}
	return time.Time{}
}

// HearingBills parses a hearing's docket and returns the bills heard there,
// deduplicated within the hearing.
func (f *Fetcher) HearingBills(ctx context.Context, hearing model.Hearing) ([]model.BillAtHearing, error) {
	doc, err := f.Document(ctx, hearing.URL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var bills []model.BillAtHearing
	doc.Find(`a[href*="/Bills/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !billHrefRe.MatchString(href) {
			return
		}
		label := collapseSpace(sel.Text())
		billID := NormalizeBillID(label)
		if billID == "" || seen[billID] {
			return
		}
		seen[billID] = true
		bills = append(bills, model.BillAtHearing{
			BillID:      billID,
			BillLabel:   label,
			BillURL:     f.URL(href),
			HearingID:   hearing.ID,
			HearingDate: hearing.Date,
			CommitteeID: hearing.CommitteeID,
			HearingURL:  hearing.URL,
		})
	})
	return bills, nil
}

// CommitteeBills returns all bills across the committee's hearings, oldest
// hearing first. limit caps the number of hearings visited; zero means all.
func (f *Fetcher) CommitteeBills(ctx context.Context, committeeID string, limit int) ([]model.BillAtHearing, error) {
	hearings, err := f.CommitteeHearings(ctx, committeeID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(hearings) > limit {
		hearings = hearings[:limit]
	}

	var out []model.BillAtHearing
	for _, h := range hearings {
		bills, err := f.HearingBills(ctx, h)
		if err != nil {
			return nil, err
		}
		out = append(out, bills...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.HearingDate.Equal(b.HearingDate) {
			return a.HearingDate.Before(b.HearingDate)
		}
		if a.HearingID != b.HearingID {
			return a.HearingID < b.HearingID
		}
		return a.BillID < b.BillID
	})
	return out, nil
}
