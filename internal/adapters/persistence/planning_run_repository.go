package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

// GormPlanningRunRepository implements planning.RunRepository using GORM
type GormPlanningRunRepository struct {
	db *gorm.DB
}

// NewGormPlanningRunRepository creates a new GORM planning run repository
func NewGormPlanningRunRepository(db *gorm.DB) *GormPlanningRunRepository {
	return &GormPlanningRunRepository{db: db}
}

// Save persists a reported run with its plan entries and commodity states
func (r *GormPlanningRunRepository) Save(ctx context.Context, run *planning.Run) error {
	if run.Status() != planning.RunStatusReported {
		return &planning.ErrInvalidRunState{CurrentState: run.Status(), Attempted: "save"}
	}

	model, err := r.recordToModel(run.Record())
	if err != nil {
		return fmt.Errorf("failed to convert planning run to model: %w", err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save planning run: %w", err)
	}

	return nil
}

// FindByID retrieves a planning run with its entries and commodity states
func (r *GormPlanningRunRepository) FindByID(ctx context.Context, id string) (*planning.RunRecord, error) {
	var model PlanningRunModel
	result := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Commodities", func(db *gorm.DB) *gorm.DB { return db.Order("commodity ASC") }).
		Where("id = ?", id).
		First(&model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, &planning.ErrRunNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to find planning run: %w", result.Error)
	}

	return r.modelToRecord(&model)
}

// List returns the most recent runs first, without entries or commodity states.
// A non-positive limit returns every run.
func (r *GormPlanningRunRepository) List(ctx context.Context, limit int) ([]*planning.RunRecord, error) {
	var models []PlanningRunModel
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list planning runs: %w", err)
	}

	records := make([]*planning.RunRecord, 0, len(models))
	for i := range models {
		record, err := r.modelToRecord(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert planning run %s: %w", models[i].ID, err)
		}
		records = append(records, record)
	}

	return records, nil
}

// recordToModel converts a run record to database models
func (r *GormPlanningRunRepository) recordToModel(record *planning.RunRecord) (*PlanningRunModel, error) {
	solutionJSON, err := json.Marshal(record.Solution)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal solution: %w", err)
	}
	producersJSON, err := json.Marshal(record.Producers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal producers: %w", err)
	}

	model := &PlanningRunModel{
		ID:          record.ID,
		Status:      string(record.Status),
		Solver:      record.Solver,
		SolveStatus: string(record.SolveStatus),
		Objective:   record.Objective,
		Solution:    string(solutionJSON),
		Producers:   string(producersJSON),
		Message:     record.Message,
		TimePeriod:  record.TimePeriod,
		CreatedAt:   record.CreatedAt,
		CompletedAt: record.CompletedAt,
	}

	for i, entry := range record.Entries {
		costsJSON, err := json.Marshal(entry.Costs)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal costs of %s: %w", entry.Producer, err)
		}
		model.Entries = append(model.Entries, PlanEntryModel{
			RunID:           record.ID,
			Position:        i,
			Producer:        entry.Producer,
			Amount:          entry.Amount,
			OutputCommodity: entry.OutputCommodity,
			Costs:           string(costsJSON),
		})
	}

	if record.Report != nil {
		model.Balanced = record.Report.IsBalanced()
		materials := make(map[string]planning.CommodityBalance)
		for _, b := range record.Report.Balanced {
			materials[b.Commodity] = b
		}
		for _, b := range record.Report.Unbalanced {
			materials[b.Commodity] = b
		}
		for _, fs := range record.Report.FinalState {
			b := materials[fs.Commodity]
			model.Commodities = append(model.Commodities, CommodityStateModel{
				RunID:          record.ID,
				Commodity:      fs.Commodity,
				StartingSupply: fs.StartingSupply,
				Demand:         b.Demand,
				Materials:      b.Materials,
				Ending:         fs.Ending,
				Balanced:       b.Materials >= 0,
			})
		}
	}

	return model, nil
}

// modelToRecord converts database models to a run record
func (r *GormPlanningRunRepository) modelToRecord(model *PlanningRunModel) (*planning.RunRecord, error) {
	record := &planning.RunRecord{
		ID:          model.ID,
		Status:      planning.RunStatus(model.Status),
		Solver:      model.Solver,
		SolveStatus: planning.SolveStatus(model.SolveStatus),
		Objective:   model.Objective,
		Message:     model.Message,
		TimePeriod:  model.TimePeriod,
		CreatedAt:   model.CreatedAt,
		CompletedAt: model.CompletedAt,
	}

	if model.Solution != "" && model.Solution != "null" {
		if err := json.Unmarshal([]byte(model.Solution), &record.Solution); err != nil {
			return nil, fmt.Errorf("failed to unmarshal solution: %w", err)
		}
	}
	if model.Producers != "" && model.Producers != "null" {
		if err := json.Unmarshal([]byte(model.Producers), &record.Producers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal producers: %w", err)
		}
	}

	for _, e := range model.Entries {
		var costs map[string]float64
		if err := json.Unmarshal([]byte(e.Costs), &costs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal costs of %s: %w", e.Producer, err)
		}
		record.Entries = append(record.Entries, planning.PlanEntry{
			Producer:        e.Producer,
			Amount:          e.Amount,
			OutputCommodity: e.OutputCommodity,
			Costs:           costs,
		})
	}

	if len(model.Commodities) > 0 {
		report := &planning.BalanceReport{}
		for _, c := range model.Commodities {
			balance := planning.CommodityBalance{Commodity: c.Commodity, Materials: c.Materials, Demand: c.Demand}
			if c.Balanced {
				report.Balanced = append(report.Balanced, balance)
			} else {
				report.Unbalanced = append(report.Unbalanced, balance)
			}
			report.FinalState = append(report.FinalState, planning.FinalState{
				Commodity:      c.Commodity,
				StartingSupply: c.StartingSupply,
				Ending:         c.Ending,
			})
		}
		record.Report = report
	}

	return record, nil
}
