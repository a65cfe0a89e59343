// Package resolve orchestrates evidence resolution for a single
// (bill, document kind) pair: cache lookup, cost-ordered strategy search,
// confirmation, and cache update. The same algorithm serves summaries and
// vote records; only the strategy catalog differs.
package resolve

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/legis-cli/internal/cache"
	"github.com/sells-group/legis-cli/internal/confirm"
	"github.com/sells-group/legis-cli/internal/model"
	"github.com/sells-group/legis-cli/internal/strategy"
)

// Resolver resolves evidence for bills. One resolver serves a whole run;
// resolution is strictly sequential.
type Resolver struct {
	registry  *strategy.Registry
	catalogs  map[model.DocumentKind][]strategy.Ref
	store     cache.Store
	procedure *confirm.Procedure

	// confirmationEnabled gates the prompt chain. When off, candidates are
	// auto-accepted with NeedsReview set and cached unconfirmed, so a later
	// interactive run still prompts once.
	confirmationEnabled bool
}

// New creates a resolver over the given strategy catalogs.
func New(registry *strategy.Registry, catalogs map[model.DocumentKind][]strategy.Ref, store cache.Store, procedure *confirm.Procedure, confirmationEnabled bool) *Resolver {
	return &Resolver{
		registry:            registry,
		catalogs:            catalogs,
		store:               store,
		procedure:           procedure,
		confirmationEnabled: confirmationEnabled,
	}
}

// Resolve runs the resolution state machine for one bill and kind. It never
// returns an error: every failure degrades to absent evidence.
func (r *Resolver) Resolve(ctx context.Context, kind model.DocumentKind, bill model.BillAtHearing) model.Evidence {
	cached := r.cachedEntry(ctx, bill.BillID, kind)

	// Confirmed fast path: run the trusted strategy silently. If its source
	// vanished, the cache is stale; fall through to the full search.
	if cached != nil && cached.Confirmed {
		if ev, ok := r.runConfirmed(ctx, kind, bill, cached.StrategyID); ok {
			return ev
		}
	}

	sequence := strategy.Order(r.catalogs[kind])
	if cached != nil {
		sequence = strategy.PromoteCached(sequence, cached.StrategyID)
	}

	for _, ref := range sequence {
		s := r.registry.Get(ref.Name)
		if s == nil {
			zap.L().Warn("configured strategy not registered",
				zap.String("strategy", ref.Name), zap.String("kind", string(kind)))
			continue
		}

		candidate, err := s.Discover(ctx, bill)
		if err != nil || candidate == nil {
			if err != nil {
				zap.L().Debug("discover failed",
					zap.String("strategy", ref.Name), zap.String("bill_id", bill.BillID), zap.Error(err))
			}
			continue
		}

		needsReview := false
		confirmed := false
		if r.confirmationEnabled {
			outcome := r.procedure.Confirm(ctx, confirm.Request{
				BillID:  bill.BillID,
				DocType: kind.Label(),
				Content: candidate.ConfirmationText(),
				URL:     candidate.SourceURL,
			})
			if !outcome.Accepted {
				// Rejections are not cached; the next strategy gets its turn.
				continue
			}
			confirmed = outcome.Confirmed
			needsReview = !outcome.Confirmed
		} else {
			needsReview = true
		}

		parsed, err := s.Parse(ctx, bill, *candidate)
		if err != nil || parsed == nil {
			zap.L().Debug("parse failed",
				zap.String("strategy", ref.Name), zap.String("bill_id", bill.BillID), zap.Error(err))
			continue
		}

		if err := r.store.SetParser(ctx, bill.BillID, kind, ref.Name, confirmed); err != nil {
			zap.L().Warn("cache write failed",
				zap.String("bill_id", bill.BillID), zap.String("kind", string(kind)), zap.Error(err))
		}

		return model.Evidence{
			Present:     true,
			Location:    location(parsed, ref.Name),
			SourceURL:   parsed.SourceURL,
			StrategyID:  ref.Name,
			NeedsReview: needsReview,
		}
	}

	return model.Evidence{Present: false, Location: "unknown"}
}

// runConfirmed executes the trusted strategy without prompting. The second
// return is false when the cached strategy no longer lands and the caller
// should continue with the full search.
func (r *Resolver) runConfirmed(ctx context.Context, kind model.DocumentKind, bill model.BillAtHearing, name string) (model.Evidence, bool) {
	s := r.registry.Get(name)
	if s == nil {
		return model.Evidence{}, false
	}
	candidate, err := s.Discover(ctx, bill)
	if err != nil || candidate == nil {
		return model.Evidence{}, false
	}
	parsed, err := s.Parse(ctx, bill, *candidate)
	if err != nil || parsed == nil {
		return model.Evidence{}, false
	}
	return model.Evidence{
		Present:     true,
		Location:    location(parsed, name),
		SourceURL:   parsed.SourceURL,
		StrategyID:  name,
		NeedsReview: false,
	}, true
}

// cachedEntry is a lookup that degrades to nil on any cache failure.
func (r *Resolver) cachedEntry(ctx context.Context, billID string, kind model.DocumentKind) *cache.Entry {
	entry, err := r.store.GetParser(ctx, billID, kind)
	if err != nil {
		zap.L().Warn("cache read failed",
			zap.String("bill_id", billID), zap.String("kind", string(kind)), zap.Error(err))
		return nil
	}
	return entry
}

// location prefers what the parse extracted and falls back to a coarse tag
// inferred from the strategy identifier.
func location(parsed *strategy.Parsed, strategyID string) string {
	if parsed.Location != "" {
		return parsed.Location
	}
	switch {
	case strings.Contains(strategyID, "embedded"):
		return "bill_embedded"
	case strings.Contains(strategyID, "bill_pdf"):
		return "bill_pdf"
	case strings.Contains(strategyID, "hearing"):
		return "hearing_docs"
	case strings.Contains(strategyID, "committee"):
		return "committee_docs"
	case strings.Contains(strategyID, "bill"):
		return "bill_tab"
	default:
		return "unknown"
	}
}
