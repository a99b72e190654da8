package economy

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/production-planner/internal/domain/shared"
)

// UnboundedCapacitySentinel is the numeric stand-in for "no cap" used only where a
// finite number is unavoidable (reports, enumeration-based solvers). It is not a real bound.
const UnboundedCapacitySentinel = 4294967296.0

// Capacity is a producer's maximum output per period. The zero value is a bounded
// capacity of 0; use UnboundedCapacity for producers without a cap.
type Capacity struct {
	max       float64
	unbounded bool
}

// BoundedCapacity creates a capacity capped at max
func BoundedCapacity(max float64) Capacity {
	return Capacity{max: max}
}

// UnboundedCapacity creates a capacity with no cap
func UnboundedCapacity() Capacity {
	return Capacity{unbounded: true}
}

// CapacityFromMaxOutput interprets a raw recipe maxOutput value: negative means unbounded
func CapacityFromMaxOutput(maxOutput float64) Capacity {
	if maxOutput < 0 {
		return UnboundedCapacity()
	}
	return BoundedCapacity(maxOutput)
}

// IsUnbounded reports whether the capacity has no cap
func (c Capacity) IsUnbounded() bool {
	return c.unbounded
}

// Max returns the cap and true, or 0 and false when unbounded
func (c Capacity) Max() (float64, bool) {
	if c.unbounded {
		return 0, false
	}
	return c.max, true
}

// MaxOrSentinel returns the cap, or UnboundedCapacitySentinel when unbounded
func (c Capacity) MaxOrSentinel() float64 {
	if c.unbounded {
		return UnboundedCapacitySentinel
	}
	return c.max
}

// Allows reports whether amount fits within the capacity (with AmountTolerance slack)
func (c Capacity) Allows(amount float64) bool {
	if c.unbounded {
		return true
	}
	return amount <= c.max+shared.AmountTolerance
}

// Compatible reports whether two capacities describe the same cap
func (c Capacity) Compatible(other Capacity) bool {
	if c.unbounded || other.unbounded {
		return c.unbounded == other.unbounded
	}
	return shared.ApproxEqual(c.max, other.max, shared.AmountTolerance)
}

func (c Capacity) String() string {
	if c.unbounded {
		return "unbounded"
	}
	return fmt.Sprintf("%g", c.max)
}

// Producer converts input commodities into exactly one output commodity
type Producer struct {
	name       string
	output     string
	inputTable map[string]float64
	capacity   Capacity
}

// NewProducer creates a producer with an empty input table
func NewProducer(name, output string, capacity Capacity) *Producer {
	return &Producer{
		name:       name,
		output:     output,
		inputTable: make(map[string]float64),
		capacity:   capacity,
	}
}

func (p *Producer) Name() string            { return p.name }
func (p *Producer) OutputCommodity() string { return p.output }
func (p *Producer) Capacity() Capacity      { return p.capacity }

// InputAmount returns the per-unit requirement of commodity, 0 if not consumed
func (p *Producer) InputAmount(commodity string) float64 {
	return p.inputTable[commodity]
}

// Consumes reports whether the commodity appears in the input table
func (p *Producer) Consumes(commodity string) bool {
	_, ok := p.inputTable[commodity]
	return ok
}

// Inputs returns the consumed commodities sorted by name
func (p *Producer) Inputs() []string {
	names := make([]string, 0, len(p.inputTable))
	for c := range p.inputTable {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

// InputTable returns a copy of the input table
func (p *Producer) InputTable() map[string]float64 {
	table := make(map[string]float64, len(p.inputTable))
	for c, a := range p.inputTable {
		table[c] = a
	}
	return table
}

// CostAt returns the commodities consumed when producing amount units
func (p *Producer) CostAt(amount float64) map[string]float64 {
	cost := make(map[string]float64, len(p.inputTable))
	for c, a := range p.inputTable {
		cost[c] = a * amount
	}
	return cost
}

func (p *Producer) addInput(commodity string, amount float64) bool {
	if _, exists := p.inputTable[commodity]; exists {
		return false
	}
	p.inputTable[commodity] = amount
	return true
}

func (p *Producer) String() string {
	return fmt.Sprintf("Producer[%s -> %s, capacity=%s, inputs=%d]",
		p.name, p.output, p.capacity, len(p.inputTable))
}
