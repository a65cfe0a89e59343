// Package strategy defines the pluggable discovery-strategy contract and the
// registry that binds configured strategy names to implementations.
package strategy

import (
	"context"
	"sync"

	"github.com/sells-group/legis-cli/internal/model"
)

// Candidate is an ephemeral, strategy-produced lead: a document that might be
// the evidence we are looking for. Candidates are never persisted; they are
// discarded after the confirmation decision.
type Candidate struct {
	SourceURL string
	Preview   string
	FullText  string // optional; preferred over Preview when present
}

// ConfirmationText returns the richest text available for a confirmation
// decision.
func (c Candidate) ConfirmationText() string {
	if c.FullText != "" {
		return c.FullText
	}
	return c.Preview
}

// Parsed is what a strategy's Parse extracts from an accepted candidate.
type Parsed struct {
	SourceURL string
	Location  string            // coarse provenance tag; may be empty
	Votes     *model.VoteDetail // vote strategies only
}

// Strategy is one pluggable unit that attempts to locate and extract a single
// kind of evidence from a specific source location. Discover returns nil when
// the strategy finds nothing; errors are treated the same as an empty result.
type Strategy interface {
	// Name identifies the strategy inside the registry and the cache.
	Name() string
	Discover(ctx context.Context, bill model.BillAtHearing) (*Candidate, error)
	Parse(ctx context.Context, bill model.BillAtHearing, c Candidate) (*Parsed, error)
}

// Ref pairs a configured strategy name with its declared relative cost.
type Ref struct {
	Name string  `yaml:"name" mapstructure:"name"`
	Cost float64 `yaml:"cost" mapstructure:"cost"`
}

// Registry maps strategy names to implementations. Strategies register at
// startup; there is no dynamic loading.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds a strategy, overwriting any previous one with the same name.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Name()] = s
}

// Get returns a strategy by name, or nil if not registered.
func (r *Registry) Get(name string) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strategies[name]
}

// List returns all registered strategy names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	return names
}
