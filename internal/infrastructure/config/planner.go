package config

// PlannerConfig holds the settings of the planning pipeline
type PlannerConfig struct {
	// Solver backend: simplex or exhaustive
	Solver string `mapstructure:"solver" yaml:"solver" validate:"required,oneof=simplex exhaustive"`

	// Pivot tolerance of the simplex backend
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance" validate:"gt=0,lt=1"`

	// Solution amounts at or below this value are not planned
	ProductionThreshold float64 `mapstructure:"production_threshold" yaml:"production_threshold" validate:"gte=0"`

	// Time period used when the plan command is not given one
	DefaultTimePeriod float64 `mapstructure:"default_time_period" yaml:"default_time_period" validate:"gt=0"`

	// Upper limit on candidate vertices for the exhaustive backend
	MaxCombinations int `mapstructure:"max_combinations" yaml:"max_combinations" validate:"min=1"`
}
