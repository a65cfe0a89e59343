package scrape

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/legis-cli/internal/model"
)

// listingPaths maps chamber names to their committee listing pages. Senate
// committees are exempt from the reporting deadlines and are not listed.
var listingPaths = map[string]string{
	"Joint": "/Committees/Joint",
	"House": "/Committees/House",
}

// detailHrefRe matches both link styles seen on the site:
// /Committees/Detail/J33 and /Committees/Joint/J14. Detail pages resolve to
// /Committees/Detail/<id>, so collected links are normalized to that form.
var detailHrefRe = regexp.MustCompile(`(?i)/Committees/(?:Detail|Joint|House)/([JH]\d+)`)

// Committees returns all committees for the given chambers (Joint and House
// only), sorted by chamber, name, then id.
func (f *Fetcher) Committees(ctx context.Context, chambers []string) ([]model.Committee, error) {
	var committees []model.Committee
	for _, chamber := range chambers {
		path, ok := listingPaths[chamber]
		if !ok {
			continue
		}
		doc, err := f.Document(ctx, path)
		if err != nil {
			return nil, err
		}
		committees = append(committees, extractCommittees(doc, f, chamber)...)
	}
	sort.Slice(committees, func(i, j int) bool {
		a, b := committees[i], committees[j]
		if a.Chamber != b.Chamber {
			return a.Chamber < b.Chamber
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return committees, nil
}

func extractCommittees(doc *goquery.Document, f *Fetcher, chamber string) []model.Committee {
	seen := make(map[string]bool)
	var out []model.Committee
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		m := detailHrefRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id := strings.ToUpper(m[1])
		if strings.HasPrefix(id, "S") || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, model.Committee{
			ID:      id,
			Name:    collapseSpace(sel.Text()),
			Chamber: chamber,
			URL:     f.URL("/Committees/Detail/" + id),
		})
	})
	return out
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
