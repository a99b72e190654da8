package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/production-planner/internal/domain/shared"
)

func TestStdRunLogger_TextFormat(t *testing.T) {
	// Arrange
	var out bytes.Buffer
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	logger := NewStdRunLogger("plan-1", &out, "info", "text", clock)

	// Act
	logger.Log("INFO", "Tables loaded", map[string]interface{}{"producers": 2, "commodities": 3})

	// Assert
	assert.Equal(t, "[2025-06-01T09:00:00Z] [plan-1] INFO: Tables loaded commodities=3 producers=2\n", out.String())
}

func TestStdRunLogger_FiltersBelowMinimumLevel(t *testing.T) {
	var out bytes.Buffer
	logger := NewStdRunLogger("plan-1", &out, "warn", "text", nil)

	logger.Log("DEBUG", "Problem formulated", nil)
	logger.Log("INFO", "Solver finished", nil)
	logger.Log("ERROR", "Plan is infeasible", nil)

	entries := logger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, "plan-1", entries[0].RunID)
	assert.NotContains(t, out.String(), "Solver finished")
}

func TestStdRunLogger_JSONFormat(t *testing.T) {
	// Arrange
	var out bytes.Buffer
	logger := NewStdRunLogger("plan-2", &out, "debug", "json", nil)

	// Act
	logger.Log("debug", "Problem formulated", map[string]interface{}{"variables": 2})

	// Assert
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &line))
	assert.Equal(t, "plan-2", line["run_id"])
	assert.Equal(t, "DEBUG", line["level"])
	assert.Equal(t, "Problem formulated", line["message"])
	assert.Equal(t, map[string]interface{}{"variables": float64(2)}, line["metadata"])
}

func TestStdRunLogger_UnknownLevelsFallBackToInfo(t *testing.T) {
	var out bytes.Buffer
	logger := NewStdRunLogger("plan-3", &out, "verbose", "text", nil)

	logger.Log("DEBUG", "hidden", nil)
	logger.Log("NOTICE", "shown", nil)

	entries := logger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "shown", entries[0].Message)
}
