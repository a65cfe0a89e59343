package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/legis-cli/internal/cache"
	"github.com/sells-group/legis-cli/internal/confirm"
	"github.com/sells-group/legis-cli/internal/model"
	"github.com/sells-group/legis-cli/internal/strategy"
)

// fakeStrategy records calls and yields scripted results.
type fakeStrategy struct {
	name        string
	candidate   *strategy.Candidate
	discoverErr error
	parsed      *strategy.Parsed
	parseErr    error

	discoverCalls int
	parseCalls    int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Discover(context.Context, model.BillAtHearing) (*strategy.Candidate, error) {
	f.discoverCalls++
	return f.candidate, f.discoverErr
}

func (f *fakeStrategy) Parse(context.Context, model.BillAtHearing, strategy.Candidate) (*strategy.Parsed, error) {
	f.parseCalls++
	return f.parsed, f.parseErr
}

func hit(name, url string) *fakeStrategy {
	return &fakeStrategy{
		name:      name,
		candidate: &strategy.Candidate{SourceURL: url, Preview: "Summary of the bill."},
		parsed:    &strategy.Parsed{SourceURL: url},
	}
}

func miss(name string) *fakeStrategy {
	return &fakeStrategy{name: name}
}

// memStore is an in-memory cache.Store for resolver tests.
type memStore struct {
	parsers   map[string]cache.Entry
	setCalls  int
	getErr    error
	setErr    error
	lastSet   string
	lastState bool
}

func newMemStore() *memStore {
	return &memStore{parsers: make(map[string]cache.Entry)}
}

func parserKey(billID string, kind model.DocumentKind) string {
	return billID + "|" + string(kind)
}

func (m *memStore) GetParser(_ context.Context, billID string, kind model.DocumentKind) (*cache.Entry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	entry, ok := m.parsers[parserKey(billID, kind)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (m *memStore) SetParser(_ context.Context, billID string, kind model.DocumentKind, strategyID string, confirmed bool) error {
	m.setCalls++
	m.lastSet = strategyID
	m.lastState = confirmed
	if m.setErr != nil {
		return m.setErr
	}
	m.parsers[parserKey(billID, kind)] = cache.Entry{StrategyID: strategyID, Confirmed: confirmed}
	return nil
}

func (m *memStore) IsConfirmed(ctx context.Context, billID string, kind model.DocumentKind) (bool, error) {
	entry, err := m.GetParser(ctx, billID, kind)
	if err != nil || entry == nil {
		return false, err
	}
	return entry.Confirmed, nil
}

func (m *memStore) GetExtension(context.Context, string) (*cache.ExtensionEntry, error) {
	return nil, nil
}
func (m *memStore) SetExtension(context.Context, string, cache.ExtensionEntry) error { return nil }
func (m *memStore) GetAnnouncement(context.Context, string) (*cache.AnnouncementEntry, error) {
	return nil, nil
}
func (m *memStore) SetAnnouncement(context.Context, string, cache.AnnouncementEntry) error {
	return nil
}
func (m *memStore) ClearAnnouncement(context.Context, string) error         { return nil }
func (m *memStore) GetTitle(context.Context, string) (string, error)        { return "", nil }
func (m *memStore) SetTitle(context.Context, string, string) error          { return nil }
func (m *memStore) GetCommitteeContact(context.Context, string) (*model.CommitteeContact, error) {
	return nil, nil
}
func (m *memStore) SetCommitteeContact(context.Context, model.CommitteeContact) error { return nil }
func (m *memStore) Search(context.Context, string) (bool, error)                      { return false, nil }
func (m *memStore) Migrate(context.Context) error                                     { return nil }
func (m *memStore) Close() error                                                      { return nil }

var _ cache.Store = (*memStore)(nil)

// scriptedPrompter answers from a fixed queue.
type scriptedPrompter struct {
	answers []bool
	err     error
	calls   int
}

func (s *scriptedPrompter) Interactive() bool { return true }

func (s *scriptedPrompter) Confirm(context.Context, confirm.Request) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	answer := s.answers[0]
	if len(s.answers) > 1 {
		s.answers = s.answers[1:]
	}
	return answer, nil
}

func disabledJudge() *confirm.Judge {
	return confirm.NewJudge(confirm.JudgeConfig{Enabled: false}, nil, nil)
}

func testBill() model.BillAtHearing {
	return model.BillAtHearing{BillID: "H104", CommitteeID: "J33"}
}

func newResolver(store cache.Store, prompter confirm.Prompter, enabled bool, refs []strategy.Ref, strategies ...strategy.Strategy) *Resolver {
	registry := strategy.NewRegistry()
	for _, s := range strategies {
		registry.Register(s)
	}
	catalogs := map[model.DocumentKind][]strategy.Ref{model.KindSummary: refs}
	return New(registry, catalogs, store, confirm.NewProcedure(disabledJudge(), prompter), enabled)
}

func TestResolveCostOrder(t *testing.T) {
	var attempted []string
	first := miss("expensive")
	second := miss("cheap")
	third := hit("middle", "https://example.org/mid")

	// Wrap Discover ordering via discoverCalls plus a shared trace.
	trace := func(f *fakeStrategy) strategy.Strategy { return &tracing{f, &attempted} }

	refs := []strategy.Ref{
		{Name: "expensive", Cost: 5},
		{Name: "cheap", Cost: 1},
		{Name: "middle", Cost: 3},
	}
	r := newResolver(newMemStore(), &scriptedPrompter{answers: []bool{true}}, true, refs,
		trace(first), trace(second), trace(third))

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.True(t, ev.Present)
	assert.Equal(t, "middle", ev.StrategyID)
	assert.Equal(t, []string{"cheap", "middle"}, attempted)
	assert.Zero(t, first.discoverCalls, "higher-cost strategy should not run once evidence is found")
}

type tracing struct {
	*fakeStrategy
	trace *[]string
}

func (tr *tracing) Discover(ctx context.Context, bill model.BillAtHearing) (*strategy.Candidate, error) {
	*tr.trace = append(*tr.trace, tr.name)
	return tr.fakeStrategy.Discover(ctx, bill)
}

func TestResolveConfirmedFastPath(t *testing.T) {
	store := newMemStore()
	store.parsers[parserKey("H104", model.KindSummary)] = cache.Entry{StrategyID: "trusted", Confirmed: true}

	trusted := hit("trusted", "https://example.org/doc")
	other := hit("other", "https://example.org/other")
	prompter := &scriptedPrompter{answers: []bool{true}}

	refs := []strategy.Ref{{Name: "other", Cost: 1}, {Name: "trusted", Cost: 9}}
	r := newResolver(store, prompter, true, refs, trusted, other)

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.True(t, ev.Present)
	assert.Equal(t, "trusted", ev.StrategyID)
	assert.False(t, ev.NeedsReview)
	assert.Equal(t, 1, trusted.discoverCalls)
	assert.Zero(t, other.discoverCalls)
	assert.Zero(t, prompter.calls, "confirmed evidence must not re-prompt")
	assert.Zero(t, store.setCalls, "fast path does not rewrite the cache")
}

func TestResolveStaleConfirmedFallsThrough(t *testing.T) {
	store := newMemStore()
	store.parsers[parserKey("H104", model.KindSummary)] = cache.Entry{StrategyID: "trusted", Confirmed: true}

	trusted := miss("trusted") // source vanished
	backup := hit("backup", "https://example.org/backup")
	prompter := &scriptedPrompter{answers: []bool{true}}

	refs := []strategy.Ref{{Name: "backup", Cost: 2}, {Name: "trusted", Cost: 1}}
	r := newResolver(store, prompter, true, refs, trusted, backup)

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.True(t, ev.Present)
	assert.Equal(t, "backup", ev.StrategyID)
	// Fast path once, then again at the front of the promoted sequence.
	assert.Equal(t, 2, trusted.discoverCalls)
	assert.Equal(t, 1, prompter.calls)
}

func TestResolveUnconfirmedCachedPromoted(t *testing.T) {
	store := newMemStore()
	store.parsers[parserKey("H104", model.KindSummary)] = cache.Entry{StrategyID: "remembered", Confirmed: false}

	remembered := hit("remembered", "https://example.org/r")
	cheap := hit("cheap", "https://example.org/c")
	prompter := &scriptedPrompter{answers: []bool{true}}

	refs := []strategy.Ref{{Name: "cheap", Cost: 1}, {Name: "remembered", Cost: 8}}
	r := newResolver(store, prompter, true, refs, remembered, cheap)

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.Equal(t, "remembered", ev.StrategyID)
	assert.Zero(t, cheap.discoverCalls, "promoted cached strategy runs before the catalog")
	assert.Equal(t, 1, prompter.calls, "unconfirmed cache entries still require confirmation")
}

func TestResolveRejectionContinues(t *testing.T) {
	store := newMemStore()
	first := hit("first", "https://example.org/1")
	second := hit("second", "https://example.org/2")
	prompter := &scriptedPrompter{answers: []bool{false, true}}

	refs := []strategy.Ref{{Name: "first", Cost: 1}, {Name: "second", Cost: 2}}
	r := newResolver(store, prompter, true, refs, first, second)

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.Equal(t, "second", ev.StrategyID)
	assert.Equal(t, 2, prompter.calls)
	assert.Equal(t, 1, store.setCalls, "rejected candidates are never cached")
	assert.Equal(t, "second", store.lastSet)
	assert.True(t, store.lastState)
	assert.False(t, ev.NeedsReview)
}

func TestResolveConfirmationDisabled(t *testing.T) {
	store := newMemStore()
	s := hit("only", "https://example.org/only")
	prompter := &scriptedPrompter{answers: []bool{true}}

	refs := []strategy.Ref{{Name: "only", Cost: 1}}
	r := newResolver(store, prompter, false, refs, s)

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.True(t, ev.Present)
	assert.True(t, ev.NeedsReview)
	assert.Zero(t, prompter.calls)
	require.Equal(t, 1, store.setCalls)
	assert.False(t, store.lastState, "auto-accepted evidence is cached unconfirmed")
}

func TestResolveHeadlessPrompterUnconfirmed(t *testing.T) {
	store := newMemStore()
	s := hit("only", "https://example.org/only")

	refs := []strategy.Ref{{Name: "only", Cost: 1}}
	r := newResolver(store, confirm.AutoAcceptPrompter{}, true, refs, s)

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.True(t, ev.Present)
	assert.True(t, ev.NeedsReview)
	assert.False(t, store.lastState)
}

func TestResolveExhaustion(t *testing.T) {
	refs := []strategy.Ref{{Name: "a", Cost: 1}, {Name: "b", Cost: 2}}
	r := newResolver(newMemStore(), &scriptedPrompter{answers: []bool{true}}, true, refs, miss("a"), miss("b"))

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.False(t, ev.Present)
	assert.Equal(t, "unknown", ev.Location)
	assert.Empty(t, ev.StrategyID)
}

func TestResolveDiscoverErrorSkips(t *testing.T) {
	broken := &fakeStrategy{name: "broken", discoverErr: errors.New("fetch failed")}
	good := hit("good", "https://example.org/good")

	refs := []strategy.Ref{{Name: "broken", Cost: 1}, {Name: "good", Cost: 2}}
	r := newResolver(newMemStore(), &scriptedPrompter{answers: []bool{true}}, true, refs, broken, good)

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.Equal(t, "good", ev.StrategyID)
}

func TestResolveParseErrorSkips(t *testing.T) {
	bad := &fakeStrategy{
		name:      "bad",
		candidate: &strategy.Candidate{SourceURL: "https://example.org/bad", Preview: "x"},
		parseErr:  errors.New("malformed document"),
	}
	good := hit("good", "https://example.org/good")

	refs := []strategy.Ref{{Name: "bad", Cost: 1}, {Name: "good", Cost: 2}}
	r := newResolver(newMemStore(), &scriptedPrompter{answers: []bool{true, true}}, true, refs, bad, good)

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.Equal(t, "good", ev.StrategyID)
}

func TestResolveCacheReadFailureDegrades(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("disk error")
	s := hit("only", "https://example.org/only")

	refs := []strategy.Ref{{Name: "only", Cost: 1}}
	r := newResolver(store, &scriptedPrompter{answers: []bool{true}}, true, refs, s)

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.True(t, ev.Present, "cache failure must not abort resolution")
}

func TestResolveUnregisteredStrategySkipped(t *testing.T) {
	good := hit("good", "https://example.org/good")
	refs := []strategy.Ref{{Name: "ghost", Cost: 1}, {Name: "good", Cost: 2}}
	r := newResolver(newMemStore(), &scriptedPrompter{answers: []bool{true}}, true, refs, good)

	ev := r.Resolve(context.Background(), model.KindSummary, testBill())
	assert.Equal(t, "good", ev.StrategyID)
}

func TestResolveDeterministicWhenDisabled(t *testing.T) {
	refs := []strategy.Ref{{Name: "b", Cost: 2}, {Name: "a", Cost: 1}}
	for range 3 {
		store := newMemStore()
		r := newResolver(store, confirm.AutoAcceptPrompter{}, false, refs,
			hit("a", "https://example.org/a"), hit("b", "https://example.org/b"))
		ev := r.Resolve(context.Background(), model.KindSummary, testBill())
		assert.Equal(t, "a", ev.StrategyID)
	}
}

func TestLocationInference(t *testing.T) {
	cases := []struct {
		strategyID string
		parsed     strategy.Parsed
		want       string
	}{
		{"summary_embedded", strategy.Parsed{}, "bill_embedded"},
		{"summary_bill_pdf", strategy.Parsed{}, "bill_pdf"},
		{"summary_hearing_docs", strategy.Parsed{}, "hearing_docs"},
		{"votes_committee_page", strategy.Parsed{}, "committee_docs"},
		{"votes_bill_tab", strategy.Parsed{}, "bill_tab"},
		{"mystery", strategy.Parsed{}, "unknown"},
		{"mystery", strategy.Parsed{Location: "hearing_pdf"}, "hearing_pdf"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, location(&tc.parsed, tc.strategyID), tc.strategyID)
	}
}
