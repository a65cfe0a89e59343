package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/legis-cli/internal/model"
)

type stubStrategy struct {
	name string
}

func (s *stubStrategy) Name() string { return s.name }
func (s *stubStrategy) Discover(_ context.Context, _ model.BillAtHearing) (*Candidate, error) {
	return &Candidate{SourceURL: "https://example.gov/doc", Preview: "preview"}, nil
}
func (s *stubStrategy) Parse(_ context.Context, _ model.BillAtHearing, c Candidate) (*Parsed, error) {
	return &Parsed{SourceURL: c.SourceURL}, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubStrategy{name: "hearing_docs"})

	got := r.Get("hearing_docs")
	assert.NotNil(t, got)
	assert.Equal(t, "hearing_docs", got.Name())
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubStrategy{name: "hearing_docs"})
	r.Register(&stubStrategy{name: "bill_tab"})

	names := r.List()
	assert.Len(t, names, 2)
	assert.Contains(t, names, "hearing_docs")
	assert.Contains(t, names, "bill_tab")
}

func TestOrder_AscendingByCost(t *testing.T) {
	refs := []Ref{
		{Name: "expensive", Cost: 5},
		{Name: "cheap", Cost: 1},
		{Name: "middle", Cost: 3},
	}

	ordered := Order(refs)

	assert.Equal(t, []string{"cheap", "middle", "expensive"}, names(ordered))
	// Input is untouched.
	assert.Equal(t, "expensive", refs[0].Name)
}

func TestOrder_EqualCostRetainsCatalogOrder(t *testing.T) {
	refs := []Ref{
		{Name: "first", Cost: 2},
		{Name: "second", Cost: 2},
		{Name: "cheapest", Cost: 1},
	}

	ordered := Order(refs)
	assert.Equal(t, []string{"cheapest", "first", "second"}, names(ordered))
}

func TestPromoteCached(t *testing.T) {
	ordered := []Ref{
		{Name: "cheap", Cost: 1},
		{Name: "middle", Cost: 3},
		{Name: "expensive", Cost: 5},
	}

	promoted := PromoteCached(ordered, "middle")

	assert.Equal(t, []string{"middle", "cheap", "expensive"}, names(promoted))
	assert.Equal(t, float64(0), promoted[0].Cost)
	// Every strategy is still in the sequence.
	assert.Len(t, promoted, 3)
}

func TestPromoteCached_UnknownNameStillPrepended(t *testing.T) {
	ordered := []Ref{{Name: "cheap", Cost: 1}}
	promoted := PromoteCached(ordered, "gone")
	assert.Equal(t, []string{"gone", "cheap"}, names(promoted))
}

func TestPromoteCached_EmptyCachedIsNoop(t *testing.T) {
	ordered := []Ref{{Name: "cheap", Cost: 1}}
	assert.Equal(t, ordered, PromoteCached(ordered, ""))
}

func names(refs []Ref) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Name
	}
	return out
}
