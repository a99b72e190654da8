package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

const (
	// DefaultNamespace prefixes every metric when no namespace is configured
	DefaultNamespace = "planner"
	// Subsystem for planning metrics
	subsystem = "planning"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalPlanningCollector is the singleton planning metrics collector
	// Set by SetGlobalPlanningCollector() when metrics are enabled
	globalPlanningCollector PlanningMetricsRecorder
)

// PlanningMetricsRecorder defines the interface for recording planning run events
// This interface is used by application code to record metrics
type PlanningMetricsRecorder interface {
	RecordRunCompletion(record *planning.RunRecord, duration time.Duration)
	RecordValidationFailure(kind string)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// Disable drops the registry and the global collector
func Disable() {
	Registry = nil
	globalPlanningCollector = nil
}

// SetGlobalPlanningCollector sets the global planning metrics collector
func SetGlobalPlanningCollector(collector PlanningMetricsRecorder) {
	globalPlanningCollector = collector
}

// RecordRunCompletion records a reported run globally
func RecordRunCompletion(record *planning.RunRecord, duration time.Duration) {
	if globalPlanningCollector != nil {
		globalPlanningCollector.RecordRunCompletion(record, duration)
	}
}

// RecordValidationFailure records a rejected input table globally
func RecordValidationFailure(kind string) {
	if globalPlanningCollector != nil {
		globalPlanningCollector.RecordValidationFailure(kind)
	}
}

// WriteTextfile writes the registry in the Prometheus text format, for the
// node_exporter textfile collector. A no-op when metrics are disabled.
func WriteTextfile(path string) error {
	if Registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
