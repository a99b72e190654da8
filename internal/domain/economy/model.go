package economy

import "fmt"

// Model is the validated, consolidated economy of one planning run: the
// commodity universe, the producers and the ledger.
type Model struct {
	commodities *CommodityRegistry
	producers   *ProducerRegistry
	ledger      *Ledger
	timePeriod  float64
}

// NewModel validates the parsed tables and builds the registries and ledger.
//
// Recipes are consolidated first because they define the commodity universe;
// supply and demand rows for unknown commodities are then ignored, while a
// priority for an unknown commodity is an error. The first violation aborts the
// whole build, so a partially populated model is never returned.
func NewModel(tables Tables, timePeriod float64) (*Model, error) {
	if timePeriod <= 0 {
		return nil, NewValidationError(ErrorKindInvalidParameter, "", 0, "time_period",
			fmt.Sprintf("time period must be positive, got %g", timePeriod))
	}

	commodities := NewCommodityRegistry()
	producers := NewProducerRegistry()
	for _, row := range tables.Recipes {
		if err := producers.AddRecipe(commodities, row); err != nil {
			return nil, err
		}
	}

	ledger := NewLedger(commodities)
	for _, row := range tables.Supply {
		if _, err := ledger.AddSupply(row, timePeriod); err != nil {
			return nil, err
		}
	}
	for _, row := range tables.Demand {
		if _, err := ledger.AddDemand(row, timePeriod); err != nil {
			return nil, err
		}
	}
	for _, row := range tables.Priorities {
		if err := ledger.SetPriority(row); err != nil {
			return nil, err
		}
	}

	return &Model{
		commodities: commodities,
		producers:   producers,
		ledger:      ledger,
		timePeriod:  timePeriod,
	}, nil
}

func (m *Model) Commodities() *CommodityRegistry { return m.commodities }
func (m *Model) Producers() *ProducerRegistry    { return m.producers }
func (m *Model) Ledger() *Ledger                 { return m.ledger }
func (m *Model) TimePeriod() float64             { return m.timePeriod }

// WithLedger returns a model sharing the registries but using the given ledger.
// Used to re-run planning against a ledger snapshot.
func (m *Model) WithLedger(ledger *Ledger) *Model {
	return &Model{
		commodities: m.commodities,
		producers:   m.producers,
		ledger:      ledger,
		timePeriod:  m.timePeriod,
	}
}
