package config

// MetricsConfig holds planning metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Textfile receives the Prometheus text exposition after each run (node_exporter textfile collector)
	Textfile string `mapstructure:"textfile" yaml:"textfile,omitempty"`

	// Namespace prefixes every metric name
	Namespace string `mapstructure:"namespace" yaml:"namespace" validate:"required"`
}
