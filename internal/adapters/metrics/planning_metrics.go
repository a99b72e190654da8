package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

// PlanningMetricsCollector handles all planning run metrics
type PlanningMetricsCollector struct {
	// Run outcome metrics
	runsTotal          *prometheus.CounterVec
	runDurationSeconds *prometheus.HistogramVec
	validationFailures *prometheus.CounterVec

	// Last run metrics
	objectiveValue        *prometheus.GaugeVec
	planEntries           *prometheus.GaugeVec
	unbalancedCommodities *prometheus.GaugeVec
	producedAmount        *prometheus.GaugeVec
	commodityMaterials    *prometheus.GaugeVec
}

// NewPlanningMetricsCollector creates a new planning metrics collector
func NewPlanningMetricsCollector(namespace string) *PlanningMetricsCollector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &PlanningMetricsCollector{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_total",
				Help:      "Total planning runs by solver and solve status",
			},
			[]string{"solver", "solve_status"},
		),

		runDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "run_duration_seconds",
				Help:      "Planning run duration from formulation to report",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"solver"},
		),

		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validation_failures_total",
				Help:      "Rejected input tables by error kind",
			},
			[]string{"kind"},
		),

		objectiveValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "objective_value",
				Help:      "Objective value of the last optimal run (negated priority-weighted value)",
			},
			[]string{"solver"},
		),

		planEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "plan_entries",
				Help:      "Number of production decisions in the last run",
			},
			[]string{"solver"},
		),

		unbalancedCommodities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "unbalanced_commodities",
				Help:      "Commodities left with a negative balance by the last run",
			},
			[]string{"solver"},
		),

		producedAmount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "produced_amount",
				Help:      "Planned output per producer in the last run",
			},
			[]string{"producer", "commodity"},
		),

		commodityMaterials: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commodity_materials",
				Help:      "Materials balance per commodity after the last run",
			},
			[]string{"commodity"},
		),
	}
}

// Register registers all planning metrics with the Prometheus registry
func (c *PlanningMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.runsTotal,
		c.runDurationSeconds,
		c.validationFailures,
		c.objectiveValue,
		c.planEntries,
		c.unbalancedCommodities,
		c.producedAmount,
		c.commodityMaterials,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordRunCompletion records the outcome of a reported run
func (c *PlanningMetricsCollector) RecordRunCompletion(record *planning.RunRecord, duration time.Duration) {
	c.runsTotal.WithLabelValues(record.Solver, string(record.SolveStatus)).Inc()
	c.runDurationSeconds.WithLabelValues(record.Solver).Observe(duration.Seconds())
	c.planEntries.WithLabelValues(record.Solver).Set(float64(len(record.Entries)))

	if record.IsFeasible() {
		c.objectiveValue.WithLabelValues(record.Solver).Set(record.Objective)
	}

	// Last-run gauges are replaced, not accumulated
	c.producedAmount.Reset()
	for _, entry := range record.Entries {
		c.producedAmount.WithLabelValues(entry.Producer, entry.OutputCommodity).Add(entry.Amount)
	}

	c.commodityMaterials.Reset()
	if record.Report != nil {
		c.unbalancedCommodities.WithLabelValues(record.Solver).Set(float64(len(record.Report.Unbalanced)))
		for _, b := range record.Report.Balanced {
			c.commodityMaterials.WithLabelValues(b.Commodity).Set(b.Materials)
		}
		for _, b := range record.Report.Unbalanced {
			c.commodityMaterials.WithLabelValues(b.Commodity).Set(b.Materials)
		}
	}
}

// RecordValidationFailure records a rejected input table
func (c *PlanningMetricsCollector) RecordValidationFailure(kind string) {
	c.validationFailures.WithLabelValues(kind).Inc()
}
