// Package runner orchestrates a compliance run: collect bills, resolve
// deadlines and evidence, classify, and write artifacts. Bills are processed
// strictly sequentially so confirmation prompts arrive one at a time.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/legis-cli/internal/cache"
	"github.com/sells-group/legis-cli/internal/classify"
	"github.com/sells-group/legis-cli/internal/deadline"
	"github.com/sells-group/legis-cli/internal/model"
	"github.com/sells-group/legis-cli/internal/report"
	"github.com/sells-group/legis-cli/internal/resolve"
	"github.com/sells-group/legis-cli/internal/scrape"
)

// Site is the subset of the scraper the runner depends on.
type Site interface {
	Committees(ctx context.Context, chambers []string) ([]model.Committee, error)
	CommitteeBills(ctx context.Context, committeeID string, limit int) ([]model.BillAtHearing, error)
	CommitteeContact(ctx context.Context, committee model.Committee) (*model.CommitteeContact, error)
	ExtensionOrders(ctx context.Context) ([]model.ExtensionOrder, error)
	ReportedOut(ctx context.Context, billURL string) (bool, *time.Time, error)
	HearingAnnouncement(ctx context.Context, billURL string, target time.Time) (*scrape.Announcement, error)
	BillTitle(ctx context.Context, billURL string) (string, error)
}

// EvidenceResolver resolves one document kind for one bill.
type EvidenceResolver interface {
	Resolve(ctx context.Context, kind model.DocumentKind, bill model.BillAtHearing) model.Evidence
}

var _ Site = (*scrape.Fetcher)(nil)
var _ EvidenceResolver = (*resolve.Resolver)(nil)

// Options configures a run.
type Options struct {
	Chambers        []string // defaults to Joint and House
	LimitHearings   int      // 0 means all hearings
	CheckExtensions bool     // when false, only cached extensions are used
	MinNoticeDays   int
	OutputDir       string
	WriteXLSX       bool
}

// Runner drives compliance runs over one shared cache and resolver.
type Runner struct {
	site       Site
	store      cache.Store
	resolver   EvidenceResolver
	classifier *classify.Classifier
	opts       Options
}

// New creates a runner.
func New(site Site, store cache.Store, resolver EvidenceResolver, classifier *classify.Classifier, opts Options) *Runner {
	if len(opts.Chambers) == 0 {
		opts.Chambers = []string{"Joint", "House"}
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "out"
	}
	if opts.MinNoticeDays <= 0 {
		opts.MinNoticeDays = deadline.DefaultMinNoticeDays
	}
	return &Runner{
		site:       site,
		store:      store,
		resolver:   resolver,
		classifier: classifier,
		opts:       opts,
	}
}

// RunCommittee executes the full pipeline for one committee and writes its
// artifacts. Per-bill failures degrade to absent evidence; only failures that
// prevent the run from producing anything are returned.
func (r *Runner) RunCommittee(ctx context.Context, committeeID string) ([]model.BillResult, error) {
	committees, err := r.site.Committees(ctx, r.opts.Chambers)
	if err != nil {
		return nil, eris.Wrap(err, "runner: list committees")
	}
	committee, ok := findCommittee(committees, committeeID)
	if !ok {
		return nil, eris.Errorf("runner: committee %s not found among %d committees", committeeID, len(committees))
	}

	log := zap.L().With(
		zap.String("committee_id", committee.ID),
		zap.String("committee", committee.Name),
	)
	log.Info("starting compliance run")

	r.ensureContact(ctx, committee, log)

	bills, err := r.site.CommitteeBills(ctx, committee.ID, r.opts.LimitHearings)
	if err != nil {
		return nil, eris.Wrap(err, "runner: collect bills")
	}
	if len(bills) == 0 {
		log.Warn("no bill-hearing rows found")
		return nil, nil
	}
	log.Info("collected bills", zap.Int("count", len(bills)))

	extensions := r.collectExtensions(ctx, log)

	results := make([]model.BillResult, 0, len(bills))
	start := time.Now()
	for i, bill := range bills {
		results = append(results, r.processBill(ctx, bill, extensions))
		log.Info("processed bill",
			zap.String("bill_id", bill.BillID),
			zap.Int("done", i+1),
			zap.Int("total", len(bills)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	jsonPath := report.JSONPath(r.opts.OutputDir, committee.ID)
	if err := report.WriteJSON(jsonPath, results); err != nil {
		return results, err
	}
	log.Info("wrote artifact", zap.String("path", jsonPath))

	if r.opts.WriteXLSX {
		xlsxPath := report.XLSXPath(r.opts.OutputDir, committee.ID)
		if err := report.WriteXLSX(xlsxPath, committee.ID, results); err != nil {
			return results, err
		}
		log.Info("wrote artifact", zap.String("path", xlsxPath))
	}
	return results, nil
}

// RunBatch runs several committees sequentially. A failing committee is
// logged and skipped; the batch only fails when every committee fails.
func (r *Runner) RunBatch(ctx context.Context, committeeIDs []string) error {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))
	log.Info("starting batch", zap.Int("committees", len(committeeIDs)))

	failures := 0
	for _, id := range committeeIDs {
		if _, err := r.RunCommittee(ctx, id); err != nil {
			failures++
			log.Error("committee run failed", zap.String("committee_id", id), zap.Error(err))
		}
	}

	log.Info("batch complete",
		zap.Int("committees", len(committeeIDs)),
		zap.Int("failures", failures),
	)
	if failures == len(committeeIDs) && len(committeeIDs) > 0 {
		return eris.Errorf("runner: all %d committee runs failed", failures)
	}
	return nil
}

// ensureContact loads the committee contact from cache or scrapes and caches
// it. Contacts are informational; failures never abort the run.
func (r *Runner) ensureContact(ctx context.Context, committee model.Committee, log *zap.Logger) {
	cached, err := r.store.GetCommitteeContact(ctx, committee.ID)
	if err == nil && cached != nil {
		return
	}
	contact, err := r.site.CommitteeContact(ctx, committee)
	if err != nil || contact == nil {
		log.Warn("contact collection failed", zap.Error(err))
		return
	}
	if err := r.store.SetCommitteeContact(ctx, *contact); err != nil {
		log.Warn("contact cache write failed", zap.Error(err))
	}
}

// collectExtensions gathers extension orders for the run and caches each one.
// With extension checking disabled an empty map is returned and per-bill
// lookups fall back to the cache.
func (r *Runner) collectExtensions(ctx context.Context, log *zap.Logger) map[string][]model.ExtensionOrder {
	lookup := make(map[string][]model.ExtensionOrder)
	if !r.opts.CheckExtensions {
		log.Info("extension checking disabled, using cached extensions only")
		return lookup
	}

	orders, err := r.site.ExtensionOrders(ctx)
	if err != nil {
		log.Warn("extension collection failed, continuing without", zap.Error(err))
	}
	for _, o := range orders {
		lookup[o.BillID] = append(lookup[o.BillID], o)

		entry := cache.ExtensionEntry{
			ExtensionURL: o.SourceURL,
			IsFallback:   o.IsDateFallback,
		}
		if !o.IsDateFallback {
			entry.ExtensionDate = o.ExtensionDate.Format(cache.DateLayout)
		}
		if err := r.store.SetExtension(ctx, o.BillID, entry); err != nil {
			log.Warn("extension cache write failed", zap.String("bill_id", o.BillID), zap.Error(err))
		}
	}
	return lookup
}

// extensionFor resolves the extension deadline for a bill, preferring this
// run's collected orders and falling back to the cache. Orders without a
// parseable date yield the maximum permitted extension.
func (r *Runner) extensionFor(ctx context.Context, bill model.BillAtHearing, lookup map[string][]model.ExtensionOrder) (*time.Time, string) {
	if orders := lookup[bill.BillID]; len(orders) > 0 {
		latest, _ := scrape.LatestExtensionDate(orders, bill.BillID)
		if latest.IsDateFallback {
			fallback := deadline.FallbackExtension(bill.HearingDate)
			return &fallback, latest.SourceURL
		}
		extensionDate := latest.ExtensionDate
		return &extensionDate, latest.SourceURL
	}
	if r.opts.CheckExtensions {
		return nil, ""
	}

	cached, err := r.store.GetExtension(ctx, bill.BillID)
	if err != nil || cached == nil {
		return nil, ""
	}
	if cached.IsFallback || cached.ExtensionDate == "" {
		fallback := deadline.FallbackExtension(bill.HearingDate)
		return &fallback, cached.ExtensionURL
	}
	parsed, err := time.Parse(cache.DateLayout, cached.ExtensionDate)
	if err != nil {
		return nil, cached.ExtensionURL
	}
	return &parsed, cached.ExtensionURL
}

// buildStatus assembles the deadline and notice facts for one bill. The
// hearing announcement is cached; reported-out status is always fetched.
func (r *Runner) buildStatus(ctx context.Context, bill model.BillAtHearing, extensionUntil *time.Time) model.BillStatus {
	d := deadline.Compute(bill.HearingDate, extensionUntil)
	status := model.BillStatus{
		BillID:            bill.BillID,
		CommitteeID:       bill.CommitteeID,
		HearingDate:       bill.HearingDate,
		Deadline60:        d.Deadline60,
		Deadline90:        d.Deadline90,
		ExtensionUntil:    extensionUntil,
		EffectiveDeadline: d.Effective,
	}

	announced, scheduled := r.announcement(ctx, bill)
	status.AnnouncementDate = announced
	status.ScheduledHearingDate = scheduled

	reported, reportedDate, err := r.site.ReportedOut(ctx, bill.BillURL)
	if err != nil {
		zap.L().Warn("reported-out check failed",
			zap.String("bill_id", bill.BillID), zap.Error(err))
	} else {
		status.ReportedOut = reported
		status.ReportedDate = reportedDate
	}
	return status
}

// announcement returns the cached hearing announcement or scrapes and caches
// it.
func (r *Runner) announcement(ctx context.Context, bill model.BillAtHearing) (announced, scheduled *time.Time) {
	cached, err := r.store.GetAnnouncement(ctx, bill.BillID)
	if err == nil && cached != nil {
		return parseCachedDate(cached.AnnouncementDate), parseCachedDate(cached.ScheduledHearingDate)
	}

	found, err := r.site.HearingAnnouncement(ctx, bill.BillURL, bill.HearingDate)
	if err != nil {
		zap.L().Warn("announcement lookup failed",
			zap.String("bill_id", bill.BillID), zap.Error(err))
		return nil, nil
	}

	entry := cache.AnnouncementEntry{}
	if found != nil {
		if found.AnnouncementDate != nil {
			entry.AnnouncementDate = found.AnnouncementDate.Format(cache.DateLayout)
			announced = found.AnnouncementDate
		}
		if found.HearingDate != nil {
			entry.ScheduledHearingDate = found.HearingDate.Format(cache.DateLayout)
			scheduled = found.HearingDate
		}
	}
	if err := r.store.SetAnnouncement(ctx, bill.BillID, entry); err != nil {
		zap.L().Warn("announcement cache write failed",
			zap.String("bill_id", bill.BillID), zap.Error(err))
	}
	return announced, scheduled
}

// title returns the cached bill title or fetches and caches it. Best-effort.
func (r *Runner) title(ctx context.Context, bill model.BillAtHearing) string {
	cached, err := r.store.GetTitle(ctx, bill.BillID)
	if err == nil && cached != "" {
		return cached
	}
	title, err := r.site.BillTitle(ctx, bill.BillURL)
	if err != nil || title == "" {
		return ""
	}
	if err := r.store.SetTitle(ctx, bill.BillID, title); err != nil {
		zap.L().Warn("title cache write failed",
			zap.String("bill_id", bill.BillID), zap.Error(err))
	}
	return title
}

// processBill runs the per-bill pipeline: status, evidence, classification,
// artifact row.
func (r *Runner) processBill(ctx context.Context, bill model.BillAtHearing, extensions map[string][]model.ExtensionOrder) model.BillResult {
	extensionUntil, extensionURL := r.extensionFor(ctx, bill, extensions)
	status := r.buildStatus(ctx, bill, extensionUntil)

	summary := r.resolver.Resolve(ctx, model.KindSummary, bill)
	votes := r.resolver.Resolve(ctx, model.KindVotes, bill)
	compliance := r.classifier.Classify(bill.BillID, bill.CommitteeID, status, summary, votes)
	noticeStatus, gapDays := deadline.NoticeStatus(status, r.opts.MinNoticeDays)

	result := model.BillResult{
		BillID:            bill.BillID,
		BillTitle:         r.title(ctx, bill),
		BillURL:           bill.BillURL,
		HearingDate:       status.HearingDate.Format(cache.DateLayout),
		Deadline60:        status.Deadline60.Format(cache.DateLayout),
		EffectiveDeadline: status.EffectiveDeadline.Format(cache.DateLayout),
		ExtensionOrderURL: extensionURL,
		ReportedOut:       status.ReportedOut,
		SummaryPresent:    summary.Present,
		SummaryURL:        summary.SourceURL,
		VotesPresent:      votes.Present,
		VotesURL:          votes.SourceURL,
		State:             string(compliance.State),
		Reason:            compliance.Reason,
		NoticeStatus:      string(noticeStatus),
		NoticeGapDays:     gapDays,
	}
	if extensionUntil != nil {
		result.ExtensionDate = extensionUntil.Format(cache.DateLayout)
	}
	if status.AnnouncementDate != nil {
		result.AnnouncementDate = status.AnnouncementDate.Format(cache.DateLayout)
	}
	if status.ScheduledHearingDate != nil {
		result.ScheduledHearingDate = status.ScheduledHearingDate.Format(cache.DateLayout)
	}
	return result
}

func findCommittee(committees []model.Committee, id string) (model.Committee, bool) {
	for _, c := range committees {
		if c.ID == id {
			return c, true
		}
	}
	return model.Committee{}, false
}

func parseCachedDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(cache.DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
