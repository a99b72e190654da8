package planning

import (
	"gonum.org/v1/gonum/mat"

	"github.com/andrescamacho/production-planner/internal/domain/economy"
)

// Formulate builds the linear program for the model.
//
// Decision variable x_i is the output of producer i. Its value per unit is the
// priority of the output minus the priority-weighted inputs, and the objective
// minimizes the negated value. For every commodity j the row requires that net
// consumption (inputs minus outputs across producers) does not exceed the
// pre-production surplus materials[j] = supply[j] - demand[j]:
//
//	Σ_i -(output[i,j] - input[i,j]) · x_i <= materials[j]
//
// The ledger's materials must already be initialized.
func Formulate(model *economy.Model) (*Problem, error) {
	ledger := model.Ledger()
	if !ledger.MaterialsInitialized() {
		return nil, &ErrMaterialsNotInitialized{}
	}

	producers := model.Producers().Sorted()
	commodities := model.Commodities().Names()

	commodityIndex := make(map[string]int, len(commodities))
	for j, name := range commodities {
		commodityIndex[name] = j
	}

	problem := &Problem{
		Producers:   make([]string, len(producers)),
		Commodities: commodities,
		Objective:   make([]float64, len(producers)),
		RHS:         make([]float64, len(commodities)),
		Bounds:      make([]Bound, len(producers)),
	}

	if len(producers) > 0 && len(commodities) > 0 {
		problem.Constraints = mat.NewDense(len(commodities), len(producers), nil)
	}

	for i, producer := range producers {
		problem.Producers[i] = producer.Name()

		value := ledger.Priority(producer.OutputCommodity())
		for _, input := range producer.Inputs() {
			value -= ledger.Priority(input) * producer.InputAmount(input)
		}
		problem.Objective[i] = -value

		if max, ok := producer.Capacity().Max(); ok {
			problem.Bounds[i] = Bound{Lower: 0, Upper: max}
		} else {
			problem.Bounds[i] = Bound{Lower: 0, Unbounded: true}
		}

		if problem.Constraints == nil {
			continue
		}
		// net coefficient = output - input, stored negated
		out := commodityIndex[producer.OutputCommodity()]
		problem.Constraints.Set(out, i, problem.Constraints.At(out, i)-1)
		for _, input := range producer.Inputs() {
			j := commodityIndex[input]
			problem.Constraints.Set(j, i, problem.Constraints.At(j, i)+producer.InputAmount(input))
		}
	}

	for j, name := range commodities {
		problem.RHS[j] = ledger.Materials(name)
	}

	return problem, nil
}
