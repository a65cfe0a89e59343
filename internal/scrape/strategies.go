package scrape

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/legis-cli/internal/model"
	"github.com/sells-group/legis-cli/internal/strategy"
)

// RegisterStrategies adds every site strategy to the registry. Names here
// must match the resolver catalogs in configuration.
func RegisterStrategies(reg *strategy.Registry, f *Fetcher) {
	reg.Register(&summaryEmbedded{f})
	reg.Register(&summaryBillDocuments{f})
	reg.Register(&summaryHearingDocs{f})
	reg.Register(&summaryCommitteeDocs{f})
	reg.Register(&votesBillTab{f})
	reg.Register(&votesHearingDocs{f})
	reg.Register(&votesCommitteeDocs{f})
}

const previewLimit = 600

func preview(text string) string {
	text = collapseSpace(text)
	if len(text) > previewLimit {
		return text[:previewLimit]
	}
	return text
}

// docLink finds the first anchor in the document whose visible text matches
// want and, when billID is non-empty, also mentions the bill.
func docLink(doc *goquery.Document, want *regexp.Regexp, billID string) (href, label string) {
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := collapseSpace(sel.Text())
		if !want.MatchString(text) {
			return true
		}
		if billID != "" && !mentionsBill(text, billID) {
			return true
		}
		href, _ = sel.Attr("href")
		label = text
		return false
	})
	return href, label
}

var billMentionRe = regexp.MustCompile(`(?i)\b(H|S)\.?\s*(\d+)\b`)

// mentionsBill matches both canonical ("H73") and display ("H. 73") forms,
// comparing whole bill numbers so H73 never matches H731.
func mentionsBill(text, billID string) bool {
	for _, m := range billMentionRe.FindAllStringSubmatch(text, -1) {
		if strings.ToUpper(m[1])+m[2] == billID {
			return true
		}
	}
	return false
}

var (
	summaryLinkRe = regexp.MustCompile(`(?i)summary`)
	votesLinkRe   = regexp.MustCompile(`(?i)vote`)
)

// summaryEmbedded reads the summary printed directly on the bill detail page,
// when the filer supplied one.
type summaryEmbedded struct {
	f *Fetcher
}

func (s *summaryEmbedded) Name() string { return "summary_bill_embedded" }

func (s *summaryEmbedded) Discover(ctx context.Context, bill model.BillAtHearing) (*strategy.Candidate, error) {
	doc, err := s.f.Document(ctx, bill.BillURL)
	if err != nil {
		return nil, err
	}

	text := ""
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(sel.Text()), "summary") {
			return true
		}
		text = collapseSpace(sel.NextAllFiltered("p, div").First().Text())
		return false
	})
	if len(text) < 40 {
		return nil, nil
	}
	return &strategy.Candidate{
		SourceURL: bill.BillURL,
		Preview:   preview(text),
		FullText:  text,
	}, nil
}

func (s *summaryEmbedded) Parse(_ context.Context, bill model.BillAtHearing, _ strategy.Candidate) (*strategy.Parsed, error) {
	return &strategy.Parsed{SourceURL: bill.BillURL, Location: "bill_embedded"}, nil
}

// summaryBillDocuments looks for a summary document linked from the bill page.
type summaryBillDocuments struct {
	f *Fetcher
}

func (s *summaryBillDocuments) Name() string { return "summary_bill_documents" }

func (s *summaryBillDocuments) Discover(ctx context.Context, bill model.BillAtHearing) (*strategy.Candidate, error) {
	doc, err := s.f.Document(ctx, bill.BillURL)
	if err != nil {
		return nil, err
	}
	href, label := docLink(doc, summaryLinkRe, "")
	if href == "" {
		return nil, nil
	}
	return &strategy.Candidate{
		SourceURL: s.f.URL(href),
		Preview:   label,
	}, nil
}

func (s *summaryBillDocuments) Parse(_ context.Context, _ model.BillAtHearing, c strategy.Candidate) (*strategy.Parsed, error) {
	return &strategy.Parsed{SourceURL: c.SourceURL, Location: "bill_pdf"}, nil
}

// summaryHearingDocs looks for a summary for this bill among the hearing's
// posted documents.
type summaryHearingDocs struct {
	f *Fetcher
}

func (s *summaryHearingDocs) Name() string { return "summary_hearing_docs" }

func (s *summaryHearingDocs) Discover(ctx context.Context, bill model.BillAtHearing) (*strategy.Candidate, error) {
	doc, err := s.f.Document(ctx, bill.HearingURL)
	if err != nil {
		return nil, err
	}
	href, label := docLink(doc, summaryLinkRe, bill.BillID)
	if href == "" {
		return nil, nil
	}
	return &strategy.Candidate{
		SourceURL: s.f.URL(href),
		Preview:   label,
	}, nil
}

func (s *summaryHearingDocs) Parse(_ context.Context, _ model.BillAtHearing, c strategy.Candidate) (*strategy.Parsed, error) {
	return &strategy.Parsed{SourceURL: c.SourceURL, Location: "hearing_docs"}, nil
}

// summaryCommitteeDocs checks the committee's Documents tab for a summary
// naming this bill.
type summaryCommitteeDocs struct {
	f *Fetcher
}

func (s *summaryCommitteeDocs) Name() string { return "summary_committee_docs" }

func (s *summaryCommitteeDocs) Discover(ctx context.Context, bill model.BillAtHearing) (*strategy.Candidate, error) {
	doc, err := s.f.Document(ctx, "/Committees/Detail/"+bill.CommitteeID+"/Documents")
	if err != nil {
		return nil, err
	}
	href, label := docLink(doc, summaryLinkRe, bill.BillID)
	if href == "" {
		return nil, nil
	}
	return &strategy.Candidate{
		SourceURL: s.f.URL(href),
		Preview:   label,
	}, nil
}

func (s *summaryCommitteeDocs) Parse(_ context.Context, _ model.BillAtHearing, c strategy.Candidate) (*strategy.Parsed, error) {
	return &strategy.Parsed{SourceURL: c.SourceURL, Location: "committee_docs"}, nil
}

// votesBillTab reads the Committee Votes tab of the bill page and extracts
// per-member tallies when the table is present.
type votesBillTab struct {
	f *Fetcher
}

func (v *votesBillTab) Name() string { return "votes_bill_tab" }

func (v *votesBillTab) votesURL(bill model.BillAtHearing) string {
	return strings.TrimRight(bill.BillURL, "/") + "/CommitteeVotes"
}

func (v *votesBillTab) Discover(ctx context.Context, bill model.BillAtHearing) (*strategy.Candidate, error) {
	votesURL := v.votesURL(bill)
	doc, err := v.f.Document(ctx, votesURL)
	if err != nil {
		return nil, nil //nolint:nilerr // a missing tab is a miss, not a failure
	}
	text := collapseSpace(doc.Find("table").Text())
	if text == "" || !votesLinkRe.MatchString(collapseSpace(doc.Text())) {
		return nil, nil
	}
	return &strategy.Candidate{
		SourceURL: votesURL,
		Preview:   preview(text),
	}, nil
}

func (v *votesBillTab) Parse(ctx context.Context, bill model.BillAtHearing, c strategy.Candidate) (*strategy.Parsed, error) {
	doc, err := v.f.Document(ctx, c.SourceURL)
	if err != nil {
		return nil, err
	}
	return &strategy.Parsed{
		SourceURL: c.SourceURL,
		Location:  "bill_tab",
		Votes:     parseVoteTable(doc),
	}, nil
}

// parseVoteTable reads member/vote rows and aggregates the tallies.
func parseVoteTable(doc *goquery.Document) *model.VoteDetail {
	detail := &model.VoteDetail{Tallies: make(map[string]int)}
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		member := collapseSpace(cells.Eq(0).Text())
		vote := collapseSpace(cells.Eq(1).Text())
		if member == "" || vote == "" {
			return
		}
		detail.Records = append(detail.Records, model.VoteTally{Member: member, Vote: vote})
		detail.Tallies[vote]++
	})
	if len(detail.Records) == 0 {
		return nil
	}
	return detail
}

// votesHearingDocs looks for a posted vote record among the hearing documents.
type votesHearingDocs struct {
	f *Fetcher
}

func (v *votesHearingDocs) Name() string { return "votes_hearing_docs" }

func (v *votesHearingDocs) Discover(ctx context.Context, bill model.BillAtHearing) (*strategy.Candidate, error) {
	doc, err := v.f.Document(ctx, bill.HearingURL)
	if err != nil {
		return nil, err
	}
	href, label := docLink(doc, votesLinkRe, bill.BillID)
	if href == "" {
		return nil, nil
	}
	return &strategy.Candidate{
		SourceURL: v.f.URL(href),
		Preview:   label,
	}, nil
}

func (v *votesHearingDocs) Parse(_ context.Context, _ model.BillAtHearing, c strategy.Candidate) (*strategy.Parsed, error) {
	return &strategy.Parsed{SourceURL: c.SourceURL, Location: "hearing_docs"}, nil
}

// votesCommitteeDocs checks the committee's Documents tab for a vote record
// naming this bill.
type votesCommitteeDocs struct {
	f *Fetcher
}

func (v *votesCommitteeDocs) Name() string { return "votes_committee_docs" }

func (v *votesCommitteeDocs) Discover(ctx context.Context, bill model.BillAtHearing) (*strategy.Candidate, error) {
	doc, err := v.f.Document(ctx, "/Committees/Detail/"+bill.CommitteeID+"/Documents")
	if err != nil {
		return nil, err
	}
	href, label := docLink(doc, votesLinkRe, bill.BillID)
	if href == "" {
		return nil, nil
	}
	return &strategy.Candidate{
		SourceURL: v.f.URL(href),
		Preview:   label,
	}, nil
}

func (v *votesCommitteeDocs) Parse(_ context.Context, _ model.BillAtHearing, c strategy.Candidate) (*strategy.Parsed, error) {
	return &strategy.Parsed{SourceURL: c.SourceURL, Location: "committee_docs"}, nil
}
