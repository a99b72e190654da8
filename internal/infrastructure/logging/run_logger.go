package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andrescamacho/production-planner/internal/domain/planning"
	"github.com/andrescamacho/production-planner/internal/domain/shared"
	"github.com/andrescamacho/production-planner/internal/infrastructure/config"
)

// Log levels, lowest first
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

var levelRank = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// StdRunLogger prints log lines for one planning run and keeps every line it
// printed so they can be persisted with the run.
type StdRunLogger struct {
	mu       sync.RWMutex
	runID    string
	out      io.Writer
	minLevel string
	json     bool
	clock    shared.Clock
	entries  []planning.RunLogEntry
}

// NewStdRunLogger creates a logger for a run. Lines below minLevel are neither
// printed nor kept.
// If clock is nil, uses RealClock (production behavior)
func NewStdRunLogger(runID string, out io.Writer, minLevel, format string, clock shared.Clock) *StdRunLogger {
	if out == nil {
		out = os.Stderr
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	minLevel = strings.ToUpper(minLevel)
	if _, ok := levelRank[minLevel]; !ok {
		minLevel = LevelInfo
	}
	return &StdRunLogger{
		runID:    runID,
		out:      out,
		minLevel: minLevel,
		json:     strings.EqualFold(format, "json"),
		clock:    clock,
	}
}

// NewRunLoggerFromConfig creates a logger using the logging section of the configuration
func NewRunLoggerFromConfig(runID string, cfg config.LoggingConfig) *StdRunLogger {
	var out io.Writer = os.Stderr
	if cfg.Output == "stdout" {
		out = os.Stdout
	}
	return NewStdRunLogger(runID, out, cfg.Level, cfg.Format, nil)
}

// Log implements common.RunLogger
func (l *StdRunLogger) Log(level, message string, metadata map[string]interface{}) {
	level = strings.ToUpper(level)
	rank, ok := levelRank[level]
	if !ok {
		level, rank = LevelInfo, levelRank[LevelInfo]
	}
	if rank < levelRank[l.minLevel] {
		return
	}

	entry := planning.RunLogEntry{
		RunID:     l.runID,
		Timestamp: l.clock.Now(),
		Level:     level,
		Message:   message,
		Metadata:  metadata,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	l.write(entry)
}

func (l *StdRunLogger) write(entry planning.RunLogEntry) {
	if l.json {
		line, err := json.Marshal(map[string]interface{}{
			"time":     entry.Timestamp.Format(time.RFC3339),
			"run_id":   entry.RunID,
			"level":    entry.Level,
			"message":  entry.Message,
			"metadata": entry.Metadata,
		})
		if err == nil {
			fmt.Fprintln(l.out, string(line))
			return
		}
	}

	fmt.Fprintf(l.out, "[%s] [%s] %s: %s%s\n",
		entry.Timestamp.Format(time.RFC3339),
		entry.RunID,
		entry.Level,
		entry.Message,
		formatMetadata(entry.Metadata),
	)
}

// Entries returns a copy of the lines logged so far, oldest first
func (l *StdRunLogger) Entries() []planning.RunLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]planning.RunLogEntry(nil), l.entries...)
}

// RunID returns the run the logger belongs to
func (l *StdRunLogger) RunID() string {
	return l.runID
}

func formatMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	return b.String()
}
