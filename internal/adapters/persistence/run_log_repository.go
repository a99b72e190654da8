package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

// GormRunLogRepository is a GORM-based implementation of planning.RunLogRepository
type GormRunLogRepository struct {
	db *gorm.DB
}

// NewGormRunLogRepository creates a new run log repository
func NewGormRunLogRepository(db *gorm.DB) *GormRunLogRepository {
	return &GormRunLogRepository{db: db}
}

// Append writes the entries in one batch
func (r *GormRunLogRepository) Append(ctx context.Context, entries []planning.RunLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	models := make([]RunLogModel, 0, len(entries))
	for _, entry := range entries {
		// Metadata is optional; a value that cannot be marshalled is dropped
		var metadataJSON string
		if len(entry.Metadata) > 0 {
			if jsonBytes, err := json.Marshal(entry.Metadata); err == nil {
				metadataJSON = string(jsonBytes)
			}
		}

		models = append(models, RunLogModel{
			RunID:     entry.RunID,
			Timestamp: entry.Timestamp,
			Level:     entry.Level,
			Message:   entry.Message,
			Metadata:  metadataJSON,
		})
	}

	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("failed to append run logs: %w", err)
	}
	return nil
}

// GetLogs retrieves logs for a run, oldest first, with optional level filtering
func (r *GormRunLogRepository) GetLogs(ctx context.Context, runID string, limit int, level *string) ([]planning.RunLogEntry, error) {
	var models []RunLogModel

	query := r.db.WithContext(ctx).Where("run_id = ?", runID)

	if level != nil {
		query = query.Where("level = ?", *level)
	}

	query = query.Order("timestamp ASC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to get run logs: %w", err)
	}

	entries := make([]planning.RunLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}

		entries[i] = planning.RunLogEntry{
			RunID:     model.RunID,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}

	return entries, nil
}
