package persistence

import "time"

// PlanningRunModel represents the planning_runs table
type PlanningRunModel struct {
	ID          string                `gorm:"column:id;primaryKey;not null"`
	Status      string                `gorm:"column:status;not null"`
	Solver      string                `gorm:"column:solver"`
	SolveStatus string                `gorm:"column:solve_status;index"`
	Objective   float64               `gorm:"column:objective"`
	Solution    string                `gorm:"column:solution;type:text"`  // JSON array as text
	Producers   string                `gorm:"column:producers;type:text"` // JSON array as text
	Message     string                `gorm:"column:message;type:text"`
	TimePeriod  float64               `gorm:"column:time_period;not null"`
	Balanced    bool                  `gorm:"column:balanced;not null;default:false"`
	CreatedAt   time.Time             `gorm:"column:created_at;not null;index"`
	CompletedAt *time.Time            `gorm:"column:completed_at"`
	Entries     []PlanEntryModel      `gorm:"foreignKey:RunID;references:ID;constraint:OnDelete:CASCADE;"`
	Commodities []CommodityStateModel `gorm:"foreignKey:RunID;references:ID;constraint:OnDelete:CASCADE;"`
}

func (PlanningRunModel) TableName() string {
	return "planning_runs"
}

// PlanEntryModel represents the plan_entries table
type PlanEntryModel struct {
	ID              int     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID           string  `gorm:"column:run_id;not null;index"`
	Position        int     `gorm:"column:position;not null"`
	Producer        string  `gorm:"column:producer;not null"`
	Amount          float64 `gorm:"column:amount;not null"`
	OutputCommodity string  `gorm:"column:output_commodity;not null"`
	Costs           string  `gorm:"column:costs;type:text"` // JSON object as text
}

func (PlanEntryModel) TableName() string {
	return "plan_entries"
}

// CommodityStateModel represents the commodity_states table: one row per
// commodity of a reported run
type CommodityStateModel struct {
	ID             int     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID          string  `gorm:"column:run_id;not null;index"`
	Commodity      string  `gorm:"column:commodity;not null"`
	StartingSupply float64 `gorm:"column:starting_supply;not null"`
	Demand         float64 `gorm:"column:demand;not null"`
	Materials      float64 `gorm:"column:materials;not null"`
	Ending         float64 `gorm:"column:ending;not null"`
	Balanced       bool    `gorm:"column:balanced;not null"`
}

func (CommodityStateModel) TableName() string {
	return "commodity_states"
}

// RunLogModel represents the run_logs table
type RunLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;not null;index"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON as text
}

func (RunLogModel) TableName() string {
	return "run_logs"
}
