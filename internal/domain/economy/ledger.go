package economy

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/production-planner/internal/domain/shared"
)

const amountTolerance = shared.AmountTolerance

// Balance is the ledger entry of one commodity
type Balance struct {
	Supply    float64
	Demand    float64
	Priority  float64
	Materials float64
}

// Ledger holds supply, demand, priority and the running materials balance of every
// registered commodity.
//
// Invariants:
// - Every registered commodity has an entry (zero by default)
// - Materials is initialized exactly once as supply - demand
// - After initialization only ApplyProduction mutates materials
type Ledger struct {
	balances             map[string]*Balance
	explicitPriority     map[string]bool
	materialsInitialized bool
}

// NewLedger creates a zeroed ledger covering every commodity in the registry
func NewLedger(commodities *CommodityRegistry) *Ledger {
	l := &Ledger{
		balances:         make(map[string]*Balance, commodities.Len()),
		explicitPriority: make(map[string]bool),
	}
	for _, name := range commodities.Names() {
		l.balances[name] = &Balance{}
	}
	return l
}

// Contains reports whether the commodity has a ledger entry
func (l *Ledger) Contains(commodity string) bool {
	_, ok := l.balances[commodity]
	return ok
}

// AddSupply accumulates a supply row. Rows for unknown commodities are ignored and
// reported as not applied.
func (l *Ledger) AddSupply(row FlowRow, timePeriod float64) (bool, error) {
	return l.addFlow(TableSupply, row, timePeriod, func(b *Balance, amount float64) { b.Supply += amount })
}

// AddDemand accumulates a demand row. Rows for unknown commodities are ignored and
// reported as not applied.
func (l *Ledger) AddDemand(row FlowRow, timePeriod float64) (bool, error) {
	return l.addFlow(TableDemand, row, timePeriod, func(b *Balance, amount float64) { b.Demand += amount })
}

func (l *Ledger) addFlow(table string, row FlowRow, timePeriod float64, apply func(*Balance, float64)) (bool, error) {
	balance, ok := l.balances[row.Commodity]
	if !ok {
		return false, nil
	}

	amount := row.Amount
	if row.IsFlow {
		amount *= timePeriod
	}
	if amount <= 0 {
		return false, NewValidationError(ErrorKindNegativeAmount, table, row.Row, "amount",
			fmt.Sprintf("amount for %s must be positive, got %g", row.Commodity, amount))
	}

	apply(balance, amount)
	return true, nil
}

// SetPriority records an explicit priority. The commodity must be known and may
// only be given one explicit priority.
func (l *Ledger) SetPriority(row PriorityRow) error {
	balance, ok := l.balances[row.Commodity]
	if !ok {
		return NewValidationError(ErrorKindUnknownCommodity, TablePriorities, row.Row, "commodity",
			fmt.Sprintf("commodity %s is not produced or consumed by any producer", row.Commodity))
	}
	if l.explicitPriority[row.Commodity] {
		return NewValidationError(ErrorKindDuplicatePriority, TablePriorities, row.Row, "commodity",
			fmt.Sprintf("priority for %s already set", row.Commodity))
	}
	balance.Priority = row.Importance
	l.explicitPriority[row.Commodity] = true
	return nil
}

// InitializeMaterials sets materials = supply - demand for every commodity
func (l *Ledger) InitializeMaterials() error {
	if l.materialsInitialized {
		return &ErrMaterialsAlreadyInitialized{}
	}
	for _, b := range l.balances {
		b.Materials = b.Supply - b.Demand
	}
	l.materialsInitialized = true
	return nil
}

// MaterialsInitialized reports whether InitializeMaterials has run
func (l *Ledger) MaterialsInitialized() bool {
	return l.materialsInitialized
}

// ApplyProduction subtracts every cost from materials, then adds amount to the
// output commodity. Nothing is mutated unless every commodity is known.
func (l *Ledger) ApplyProduction(output string, amount float64, costs map[string]float64) error {
	if _, ok := l.balances[output]; !ok {
		return &ErrUnknownCommodity{Commodity: output}
	}
	for c := range costs {
		if _, ok := l.balances[c]; !ok {
			return &ErrUnknownCommodity{Commodity: c}
		}
	}

	for c, cost := range costs {
		l.balances[c].Materials -= cost
	}
	l.balances[output].Materials += amount
	return nil
}

func (l *Ledger) Supply(commodity string) float64    { return l.get(commodity).Supply }
func (l *Ledger) Demand(commodity string) float64    { return l.get(commodity).Demand }
func (l *Ledger) Priority(commodity string) float64  { return l.get(commodity).Priority }
func (l *Ledger) Materials(commodity string) float64 { return l.get(commodity).Materials }

func (l *Ledger) get(commodity string) Balance {
	if b, ok := l.balances[commodity]; ok {
		return *b
	}
	return Balance{}
}

// Balance returns a copy of the commodity's entry
func (l *Ledger) Balance(commodity string) (Balance, bool) {
	b, ok := l.balances[commodity]
	if !ok {
		return Balance{}, false
	}
	return *b, true
}

// Commodities returns the ledger's commodities sorted by name
func (l *Ledger) Commodities() []string {
	names := make([]string, 0, len(l.balances))
	for name := range l.balances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InDemandCommodities returns commodities whose materials balance is negative, sorted
func (l *Ledger) InDemandCommodities() []string {
	var names []string
	for _, name := range l.Commodities() {
		if l.balances[name].Materials < 0 {
			names = append(names, name)
		}
	}
	return names
}

// IsBalanced reports whether every materials balance is non-negative
func (l *Ledger) IsBalanced() bool {
	for _, b := range l.balances {
		if b.Materials < 0 {
			return false
		}
	}
	return true
}

// Snapshot returns an independent deep copy of the ledger
func (l *Ledger) Snapshot() *Ledger {
	clone := &Ledger{
		balances:             make(map[string]*Balance, len(l.balances)),
		explicitPriority:     make(map[string]bool, len(l.explicitPriority)),
		materialsInitialized: l.materialsInitialized,
	}
	for name, b := range l.balances {
		copied := *b
		clone.balances[name] = &copied
	}
	for name, set := range l.explicitPriority {
		clone.explicitPriority[name] = set
	}
	return clone
}
