package strategy

import "sort"

// Order returns the refs sorted ascending by declared cost. Equal-cost
// strategies retain catalog order.
func Order(refs []Ref) []Ref {
	out := make([]Ref, len(refs))
	copy(out, refs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost < out[j].Cost })
	return out
}

// PromoteCached moves the cached strategy name to the front of an ordered
// sequence at cost zero, de-duplicated. This reorders only; it never removes
// any other strategy from the search.
func PromoteCached(ordered []Ref, cached string) []Ref {
	if cached == "" {
		return ordered
	}
	out := make([]Ref, 0, len(ordered)+1)
	out = append(out, Ref{Name: cached, Cost: 0})
	for _, ref := range ordered {
		if ref.Name == cached {
			continue
		}
		out = append(out, ref)
	}
	return out
}
