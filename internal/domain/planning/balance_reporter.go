package planning

import "github.com/andrescamacho/production-planner/internal/domain/economy"

// CommodityBalance is a commodity's post-plan materials and its external demand
type CommodityBalance struct {
	Commodity string  `json:"commodity"`
	Materials float64 `json:"materials"`
	Demand    float64 `json:"demand"`
}

// FinalState compares a commodity's starting supply with its ending quantity
// (materials with the demand netted out at initialization added back)
type FinalState struct {
	Commodity      string  `json:"commodity"`
	StartingSupply float64 `json:"starting_supply"`
	Ending         float64 `json:"ending"`
}

// BalanceReport classifies every commodity after assembly. All views are sorted by name.
type BalanceReport struct {
	Balanced   []CommodityBalance `json:"balanced"`
	Unbalanced []CommodityBalance `json:"unbalanced"`
	FinalState []FinalState       `json:"final_state"`
}

// NewBalanceReport builds the report from the ledger: a commodity is balanced
// iff its materials balance is non-negative
func NewBalanceReport(ledger *economy.Ledger) *BalanceReport {
	report := &BalanceReport{}
	for _, name := range ledger.Commodities() {
		b, _ := ledger.Balance(name)
		entry := CommodityBalance{Commodity: name, Materials: b.Materials, Demand: b.Demand}
		if b.Materials >= 0 {
			report.Balanced = append(report.Balanced, entry)
		} else {
			report.Unbalanced = append(report.Unbalanced, entry)
		}
		report.FinalState = append(report.FinalState, FinalState{
			Commodity:      name,
			StartingSupply: b.Supply,
			Ending:         b.Materials + b.Demand,
		})
	}
	return report
}

// IsBalanced reports whether no commodity ended with a negative balance
func (r *BalanceReport) IsBalanced() bool {
	return len(r.Unbalanced) == 0
}

// IsCommodityBalanced reports whether the commodity appears in the balanced view
func (r *BalanceReport) IsCommodityBalanced(commodity string) bool {
	for _, b := range r.Balanced {
		if b.Commodity == commodity {
			return true
		}
	}
	return false
}
