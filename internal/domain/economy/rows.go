package economy

// Table names used in validation errors
const (
	TableRecipes    = "recipes"
	TableSupply     = "supply"
	TableDemand     = "demand"
	TablePriorities = "priorities"
)

// RecipeRow is one parsed line of the recipe table
type RecipeRow struct {
	Row             int
	Producer        string
	OutputCommodity string
	InputCommodity  string
	InputAmount     float64
	MaxOutput       float64 // negative means unbounded
}

// FlowRow is one parsed line of the supply or demand table.
// When IsFlow is set the amount is a rate scaled by the run's time period.
type FlowRow struct {
	Row       int
	Commodity string
	Amount    float64
	IsFlow    bool
}

// PriorityRow is one parsed line of the priority table
type PriorityRow struct {
	Row        int
	Commodity  string
	Importance float64
}

// Tables groups the parsed input tables of one planning run
type Tables struct {
	Recipes    []RecipeRow
	Supply     []FlowRow
	Demand     []FlowRow
	Priorities []PriorityRow
}
