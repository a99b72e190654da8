package economy

import (
	"fmt"
	"sort"
)

// ProducerRegistry consolidates recipe rows into one Producer per name
type ProducerRegistry struct {
	producers map[string]*Producer
}

// NewProducerRegistry creates an empty registry
func NewProducerRegistry() *ProducerRegistry {
	return &ProducerRegistry{producers: make(map[string]*Producer)}
}

// AddRecipe registers the row's commodities and creates or merges its producer.
// Input amounts in (-AmountTolerance, 0) are treated as 0.
func (r *ProducerRegistry) AddRecipe(commodities *CommodityRegistry, row RecipeRow) error {
	if row.InputAmount <= -amountTolerance {
		return NewValidationError(ErrorKindNegativeAmount, TableRecipes, row.Row, "input_amount",
			fmt.Sprintf("input amount %g for producer %s must not be negative", row.InputAmount, row.Producer))
	}
	amount := row.InputAmount
	if amount < 0 {
		amount = 0
	}

	commodities.MarkProducible(row.OutputCommodity)
	commodities.Register(row.InputCommodity)

	capacity := CapacityFromMaxOutput(row.MaxOutput)

	existing, ok := r.producers[row.Producer]
	if !ok {
		producer := NewProducer(row.Producer, row.OutputCommodity, capacity)
		producer.addInput(row.InputCommodity, amount)
		r.producers[row.Producer] = producer
		return nil
	}

	if existing.OutputCommodity() != row.OutputCommodity {
		return NewValidationError(ErrorKindInconsistentProducer, TableRecipes, row.Row, "output_commodity",
			fmt.Sprintf("producer %s outputs %s, row declares %s",
				row.Producer, existing.OutputCommodity(), row.OutputCommodity))
	}
	if !existing.Capacity().Compatible(capacity) {
		return NewValidationError(ErrorKindInconsistentProducer, TableRecipes, row.Row, "max_output",
			fmt.Sprintf("producer %s has capacity %s, row declares %s",
				row.Producer, existing.Capacity(), capacity))
	}
	if !existing.addInput(row.InputCommodity, amount) {
		return NewValidationError(ErrorKindDuplicateInput, TableRecipes, row.Row, "input_commodity",
			fmt.Sprintf("producer %s already consumes %s", row.Producer, row.InputCommodity))
	}
	return nil
}

// Get returns the producer with the given name
func (r *ProducerRegistry) Get(name string) (*Producer, bool) {
	p, ok := r.producers[name]
	return p, ok
}

// Len returns the number of producers
func (r *ProducerRegistry) Len() int {
	return len(r.producers)
}

// Names returns producer names sorted. This is the canonical variable ordering.
func (r *ProducerRegistry) Names() []string {
	names := make([]string, 0, len(r.producers))
	for name := range r.producers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sorted returns the producers in canonical order
func (r *ProducerRegistry) Sorted() []*Producer {
	names := r.Names()
	sorted := make([]*Producer, len(names))
	for i, name := range names {
		sorted[i] = r.producers[name]
	}
	return sorted
}
