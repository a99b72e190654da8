package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/production-planner/internal/application/common"
)

// PrometheusMiddleware creates a middleware that records command execution metrics
//
// This middleware wraps all command/query execution and records:
// - Execution duration (histogram)
// - Success/failure counts (counter)
//
// Command names are extracted via reflection and simplified to remove package prefixes.
// For example: "*commands.RunPlanCommand" becomes "RunPlanCommand"
func PrometheusMiddleware(collector *CommandMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		// Skip metrics if collector is nil (metrics disabled)
		if collector == nil {
			return next(ctx, request)
		}

		// Extract command name via reflection
		commandName := extractCommandName(request)

		// Start timer
		start := time.Now()

		// Execute command/query
		response, err := next(ctx, request)

		// Record metrics
		duration := time.Since(start).Seconds()
		success := err == nil
		collector.RecordCommandExecution(commandName, duration, success)

		return response, err
	}
}

// extractCommandName extracts a clean command name from the request using reflection
// Examples:
//   - "*commands.RunPlanCommand" → "RunPlanCommand"
//   - "*queries.ListRunsQuery" → "ListRunsQuery"
//   - "*queries.GetRunQuery" → "GetRunQuery"
func extractCommandName(request common.Request) string {
	if request == nil {
		return "UnknownCommand"
	}

	// Get the full type name (e.g., "*commands.RunPlanCommand")
	fullName := reflect.TypeOf(request).String()

	// Remove pointer prefix if present
	fullName = strings.TrimPrefix(fullName, "*")

	// Split by '.' to separate package from type name
	parts := strings.Split(fullName, ".")

	// Return the last part (the actual command/query name)
	return parts[len(parts)-1]
}
