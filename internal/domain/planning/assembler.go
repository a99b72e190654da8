package planning

import (
	"sort"

	"github.com/andrescamacho/production-planner/internal/domain/economy"
)

// DefaultProductionThreshold suppresses solver noise: smaller amounts are not planned
const DefaultProductionThreshold = 1e-5

// CommodityAmount pairs a commodity with a quantity
type CommodityAmount struct {
	Commodity string  `json:"commodity"`
	Amount    float64 `json:"amount"`
}

// PlanEntry is one production decision
type PlanEntry struct {
	Producer        string
	Amount          float64
	OutputCommodity string
	Costs           map[string]float64
}

// SortedCosts returns the cost breakdown sorted by commodity name
func (e PlanEntry) SortedCosts() []CommodityAmount {
	costs := make([]CommodityAmount, 0, len(e.Costs))
	for c, a := range e.Costs {
		costs = append(costs, CommodityAmount{Commodity: c, Amount: a})
	}
	sort.Slice(costs, func(i, j int) bool { return costs[i].Commodity < costs[j].Commodity })
	return costs
}

// TotalCost returns the summed consumption of the entry
func (e PlanEntry) TotalCost() float64 {
	var total float64
	for _, c := range e.SortedCosts() {
		total += c.Amount
	}
	return total
}

// Plan is the ordered list of production decisions of one run
type Plan struct {
	Entries []PlanEntry
}

// IsEmpty reports whether nothing is produced
func (p *Plan) IsEmpty() bool {
	return p == nil || len(p.Entries) == 0
}

// ProducedBy sums the planned amount of a producer
func (p *Plan) ProducedBy(producer string) float64 {
	if p == nil {
		return 0
	}
	var total float64
	for _, e := range p.Entries {
		if e.Producer == producer {
			total += e.Amount
		}
	}
	return total
}

// AssemblePlan walks the solved vector in canonical producer order and applies
// every amount above threshold to the model's ledger: costs are subtracted from
// materials, then the amount is added to the output commodity.
func AssemblePlan(model *economy.Model, problem *Problem, x []float64, threshold float64) (*Plan, error) {
	if len(x) != problem.NumVariables() {
		return nil, &ErrSolutionShape{Expected: problem.NumVariables(), Actual: len(x)}
	}

	plan := &Plan{}
	ledger := model.Ledger()
	for i, name := range problem.Producers {
		amount := x[i]
		if amount <= threshold {
			continue
		}

		producer, ok := model.Producers().Get(name)
		if !ok {
			return nil, &ErrSolutionShape{Expected: problem.NumVariables(), Actual: len(x)}
		}

		costs := producer.CostAt(amount)
		if err := ledger.ApplyProduction(producer.OutputCommodity(), amount, costs); err != nil {
			return nil, err
		}

		plan.Entries = append(plan.Entries, PlanEntry{
			Producer:        name,
			Amount:          amount,
			OutputCommodity: producer.OutputCommodity(),
			Costs:           costs,
		})
	}

	return plan, nil
}
