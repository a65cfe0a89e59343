package scrape

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/legis-cli/internal/model"
)

// extensionDatePatterns covers the date spellings seen in order texts, most
// specific first.
var extensionDatePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	// "Wednesday, December 3, 2025"
	{regexp.MustCompile(`\b([A-Za-z]+day,\s+[A-Za-z]+\s+\d{1,2},\s+\d{4})\b`), "Monday, January 2, 2006"},
	{regexp.MustCompile(`\b([A-Za-z]+day\s+[A-Za-z]+\s+\d{1,2}\s+\d{4})\b`), "Monday January 2 2006"},
	// "December 3, 2025"
	{regexp.MustCompile(`\b([A-Za-z]+\s+\d{1,2},\s+\d{4})\b`), "January 2, 2006"},
	{regexp.MustCompile(`\b([A-Za-z]+\s+\d{1,2}\s+\d{4})\b`), "January 2 2006"},
	// "12/3/2025"
	{regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`), "1/2/2006"},
	// "2025-12-03"
	{regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`), "2006-01-02"},
}

// billDocPatterns matches "House document numbered 357" style references,
// including comma-separated lists.
var billDocPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(House|Senate|Joint)\s+document\s+numbered\s+(\d+)`),
	regexp.MustCompile(`(?i)(House|Senate|Joint)\s+document\s+No\.?\s*(\d+)`),
	regexp.MustCompile(`(?i)(House|Senate|Joint)\s+document\s+#(\d+)`),
	regexp.MustCompile(`(?i)current\s+(House|Senate|Joint)\s+documents\s+numbered\s+([\d,\s]+(?:and\s+\d+)?)`),
}

var (
	orderURLBillRe   = regexp.MustCompile(`/Bills/\d+/([HS]\d+)/(?:House|Senate)/Order/Text`)
	searchBillHrefRe = regexp.MustCompile(`/Bills/\d+/([HS]\d+)`)
	docListSplitRe   = regexp.MustCompile(`,\s*|\s+and\s+`)
)

// committeeNames maps order-text committee names to committee ids. Extend as
// new committees show up in orders.
var committeeNames = map[string]string{
	"Telecommunications, Utilities, and Energy":      "J33",
	"Environment and Natural Resources":              "J16",
	"Education":                                      "J37",
	"Housing":                                        "J39",
	"Transportation":                                 "J40",
	"Economic Development and Emerging Technologies": "J41",
	"Public Health":                                  "J42",
}

// extractExtensionDate pulls the granted deadline out of order text.
func extractExtensionDate(text string) (time.Time, bool) {
	for _, p := range extensionDatePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			if t, err := time.Parse(p.layout, m[1]); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// extractCommitteeID maps a "committee on X" mention to a committee id, or ""
// when the committee is not recognized. Known names are matched as substrings
// because several contain commas.
func extractCommitteeID(text string) string {
	for name, id := range committeeNames {
		if strings.Contains(text, "ommittee on "+name) {
			return id
		}
	}
	return ""
}

// extractBillIDsFromText finds every bill the order covers, e.g. "House
// document numbered 357" yields "H357".
func extractBillIDsFromText(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, re := range billDocPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			prefix := chamberPrefix(m[1])
			if prefix == "" {
				continue
			}
			for _, num := range docListSplitRe.Split(m[2], -1) {
				num = strings.TrimSpace(num)
				if num == "" || !isDigits(num) {
					continue
				}
				id := prefix + num
				if !seen[id] {
					seen[id] = true
					out = append(out, id)
				}
			}
		}
	}
	return out
}

func chamberPrefix(chamber string) string {
	switch strings.ToLower(chamber) {
	case "house":
		return "H"
	case "senate":
		return "S"
	case "joint":
		return "J"
	default:
		return ""
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// extractBillIDFromOrderURL recovers the bill id from an order URL like
// /Bills/2025/H1234/House/Order/Text when the text names no documents.
func extractBillIDFromOrderURL(orderURL string) string {
	m := orderURLBillRe.FindStringSubmatch(orderURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParseExtensionOrderPage extracts one ExtensionOrder per bill the order
// mentions. Orders with an unparseable date get a placeholder date and
// IsDateFallback; orders naming no bills fall back to the bill id embedded in
// the URL and get IsFallback.
func (f *Fetcher) ParseExtensionOrderPage(ctx context.Context, orderURL string) ([]model.ExtensionOrder, error) {
	doc, err := f.Document(ctx, orderURL)
	if err != nil {
		return nil, err
	}
	text := collapseSpace(doc.Text())

	extensionDate, ok := extractExtensionDate(text)
	isDateFallback := !ok

	committeeID := extractCommitteeID(text)
	if committeeID == "" {
		committeeID = "UNKNOWN"
	}

	orderType := "Extension Order"
	switch {
	case strings.Contains(text, "Committee Extension Order"):
		orderType = "Committee Extension Order"
	case strings.Contains(text, "Joint Committee"):
		orderType = "Joint Committee Extension Order"
	}

	billIDs := extractBillIDsFromText(text)
	isFallback := false
	if len(billIDs) == 0 {
		id := extractBillIDFromOrderURL(orderURL)
		if id == "" {
			zap.L().Warn("extension order names no bills", zap.String("url", orderURL))
			return nil, nil
		}
		billIDs = []string{id}
		isFallback = true
	}

	orders := make([]model.ExtensionOrder, 0, len(billIDs))
	for _, id := range billIDs {
		orders = append(orders, model.ExtensionOrder{
			BillID:         id,
			CommitteeID:    committeeID,
			ExtensionDate:  extensionDate,
			SourceURL:      orderURL,
			OrderType:      orderType,
			DiscoveredAt:   time.Now(),
			IsFallback:     isFallback,
			IsDateFallback: isDateFallback,
		})
	}
	return orders, nil
}

// maxExtensionSearchPages caps search pagination.
const maxExtensionSearchPages = 10

// ExtensionOrders walks the bill search for extension orders and parses every
// per-bill order page that exists. Pagination stops on the first page whose
// leading links repeat the previous page, which is how the search behaves
// past its last page.
func (f *Fetcher) ExtensionOrders(ctx context.Context) ([]model.ExtensionOrder, error) {
	var all []model.ExtensionOrder
	var prevLead []string

	for page := 1; page <= maxExtensionSearchPages; page++ {
		searchURL := f.URL("/Bills/Search") + "?searchTerms=extension+order&page=" + strconv.Itoa(page)
		doc, err := f.Document(ctx, searchURL)
		if err != nil {
			return all, err
		}

		var hrefs []string
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if searchBillHrefRe.MatchString(href) {
				hrefs = append(hrefs, href)
			}
		})
		if len(hrefs) == 0 {
			break
		}

		lead := hrefs
		if len(lead) > 10 {
			lead = lead[:10]
		}
		if page > 1 && equalStrings(lead, prevLead) {
			zap.L().Debug("duplicate search page, stopping pagination", zap.Int("page", page))
			break
		}
		prevLead = lead

		for _, href := range hrefs {
			m := searchBillHrefRe.FindStringSubmatch(href)
			if m == nil {
				continue
			}
			billID := m[1]
			chamber := "Senate"
			if strings.HasPrefix(billID, "H") {
				chamber = "House"
			}
			orderURL := f.URL(href) + "/" + chamber + "/Order/Text"
			if !f.Exists(ctx, orderURL) {
				continue
			}
			orders, err := f.ParseExtensionOrderPage(ctx, orderURL)
			if err != nil {
				zap.L().Warn("extension order parse failed", zap.String("url", orderURL), zap.Error(err))
				continue
			}
			all = append(all, orders...)
		}
	}

	zap.L().Info("collected extension orders", zap.Int("count", len(all)))
	return all, nil
}

// LatestExtensionDate returns the latest extension granted to a bill, or
// false when the bill has none.
func LatestExtensionDate(orders []model.ExtensionOrder, billID string) (model.ExtensionOrder, bool) {
	var latest model.ExtensionOrder
	found := false
	for _, o := range orders {
		if o.BillID != billID {
			continue
		}
		if !found || o.ExtensionDate.After(latest.ExtensionDate) {
			latest = o
			found = true
		}
	}
	return latest, found
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
