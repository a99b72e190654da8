package economy

import "sort"

// CommodityRegistry tracks the universe of commodity names and which of them
// are producible (the output of at least one producer)
type CommodityRegistry struct {
	names      map[string]struct{}
	producible map[string]struct{}
}

// NewCommodityRegistry creates an empty registry
func NewCommodityRegistry() *CommodityRegistry {
	return &CommodityRegistry{
		names:      make(map[string]struct{}),
		producible: make(map[string]struct{}),
	}
}

// Register adds a commodity to the universe. Registering twice is a no-op.
func (r *CommodityRegistry) Register(name string) {
	r.names[name] = struct{}{}
}

// MarkProducible registers the commodity and flags it as some producer's output
func (r *CommodityRegistry) MarkProducible(name string) {
	r.Register(name)
	r.producible[name] = struct{}{}
}

// Contains reports whether the commodity is part of the universe
func (r *CommodityRegistry) Contains(name string) bool {
	_, ok := r.names[name]
	return ok
}

// IsProducible reports whether any producer outputs the commodity
func (r *CommodityRegistry) IsProducible(name string) bool {
	_, ok := r.producible[name]
	return ok
}

// Len returns the number of registered commodities
func (r *CommodityRegistry) Len() int {
	return len(r.names)
}

// Names returns every commodity sorted by name. This is the canonical
// commodity ordering used for constraint rows.
func (r *CommodityRegistry) Names() []string {
	return sortedKeys(r.names)
}

// ProducibleCommodities returns the producible commodities sorted by name
func (r *CommodityRegistry) ProducibleCommodities() []string {
	return sortedKeys(r.producible)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
