package scrape

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/legis-cli/internal/model"
)

var (
	phoneRe   = regexp.MustCompile(`\(\d{3}\)\s*\d{3}-\d{4}`)
	roomRe    = regexp.MustCompile(`(?i)\bRoom\s+[A-Za-z0-9\-]+`)
	emailRe   = regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+@(?:masenate|mahouse)\.gov`)
	addressRe = regexp.MustCompile(`24 Beacon St\..+Boston,\s*MA\s*\d{5}`)
)

// validEmailDomain restricts contact emails to the legislature's domains.
func validEmailDomain(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	return strings.HasSuffix(email, "@masenate.gov") || strings.HasSuffix(email, "@mahouse.gov")
}

// CommitteeContact scrapes the committee detail page for both chambers'
// contact blocks and chair information. Chair emails require a visit to each
// legislator's profile page.
func (f *Fetcher) CommitteeContact(ctx context.Context, committee model.Committee) (*model.CommitteeContact, error) {
	doc, err := f.Document(ctx, "/Committees/Detail/"+committee.ID)
	if err != nil {
		return nil, err
	}

	contact := &model.CommitteeContact{
		CommitteeID: committee.ID,
		Name:        committee.Name,
		Chamber:     committee.Chamber,
		URL:         committee.URL,
	}

	contact.SenateRoom, contact.SenateAddress, contact.SenatePhone = contactBlock(doc, "Senate Contact")
	contact.HouseRoom, contact.HouseAddress, contact.HousePhone = contactBlock(doc, "House Contact")

	senateChair, senateVice := chairLinks(doc, "Senate Members")
	houseChair, houseVice := chairLinks(doc, "House Members")

	contact.SenateChairName = senateChair.name
	contact.SenateViceChairName = senateVice.name
	contact.HouseChairName = houseChair.name
	contact.HouseViceChairName = houseVice.name

	contact.SenateChairEmail = f.legislatorEmail(ctx, senateChair.href)
	contact.SenateViceChairEmail = f.legislatorEmail(ctx, senateVice.href)
	contact.HouseChairEmail = f.legislatorEmail(ctx, houseChair.href)
	contact.HouseViceChairEmail = f.legislatorEmail(ctx, houseVice.href)

	return contact, nil
}

// contactBlock extracts room, address, and phone from the section headed by
// the given label.
func contactBlock(doc *goquery.Document, heading string) (room, address, phone string) {
	doc.Find("h3, h4, strong").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(sel.Text(), heading) {
			return true
		}
		text := collapseSpace(sel.Parent().Text())
		if m := roomRe.FindString(text); m != "" {
			room = m
		}
		if m := phoneRe.FindString(text); m != "" {
			phone = m
		}
		if strings.Contains(text, "Boston") {
			if m := addressRe.FindString(text); m != "" {
				address = m
			} else if room != "" {
				address = "24 Beacon St. " + room + " Boston, MA 02133"
			}
		}
		return false
	})
	return room, address, phone
}

type memberLink struct {
	name string
	href string
}

// chairLinks finds the chair and vice chair in the member list under the
// given section heading.
func chairLinks(doc *goquery.Document, heading string) (chair, vice memberLink) {
	var section *goquery.Selection
	doc.Find("h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.TrimSpace(sel.Text()) == heading {
			section = sel
			return false
		}
		return true
	})
	if section == nil {
		return chair, vice
	}

	container := section.NextAllFiltered("ul.committeeMemberList").First()
	if container.Length() == 0 {
		container = section.NextAllFiltered("div").First()
	}

	container.Find("div, p, span, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		isVice := strings.Contains(text, "Vice") && strings.Contains(text, "Chair")
		isChair := strings.Contains(text, "Chair") && !strings.Contains(text, "Vice")
		if !isVice && !isChair {
			return
		}
		link := nearestLink(sel)
		if link == nil {
			return
		}
		m := memberLink{name: strings.TrimSpace(link.Text())}
		m.href, _ = link.Attr("href")
		if isChair && chair.name == "" {
			chair = m
		} else if isVice && vice.name == "" {
			vice = m
		}
	})
	return chair, vice
}

// nearestLink looks for an anchor in the element, then its parent.
func nearestLink(sel *goquery.Selection) *goquery.Selection {
	if link := sel.Find("a").First(); link.Length() > 0 {
		return link
	}
	if link := sel.Parent().Find("a").First(); link.Length() > 0 {
		return link
	}
	return nil
}

// legislatorEmail pulls a validated email off a legislator profile page.
// Failures degrade to an empty string; contacts are best-effort.
func (f *Fetcher) legislatorEmail(ctx context.Context, href string) string {
	if href == "" {
		return ""
	}
	doc, err := f.Document(ctx, href)
	if err != nil {
		zap.L().Debug("legislator page fetch failed", zap.String("url", href), zap.Error(err))
		return ""
	}

	email := ""
	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		mailto, _ := sel.Attr("href")
		candidate := strings.TrimSpace(strings.TrimPrefix(mailto, "mailto:"))
		if emailRe.MatchString(candidate) && validEmailDomain(candidate) {
			email = candidate
			return false
		}
		return true
	})
	if email != "" {
		return email
	}

	if m := emailRe.FindString(doc.Text()); m != "" && validEmailDomain(m) {
		return m
	}
	return ""
}
