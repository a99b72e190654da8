package planning

import "time"

// RunRecord is the flattened, read-only view of a reported run, as stored and
// returned by RunRepository
type RunRecord struct {
	ID          string
	Status      RunStatus
	Solver      string
	SolveStatus SolveStatus
	Objective   float64
	Solution    []float64
	Message     string
	TimePeriod  float64
	Producers   []string
	Entries     []PlanEntry
	Report      *BalanceReport
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// IsFeasible reports whether the recorded run produced an optimal plan
func (r *RunRecord) IsFeasible() bool {
	return r.SolveStatus.IsOptimal()
}

// Record flattens the run. Fields of stages not reached are left empty.
func (r *Run) Record() *RunRecord {
	record := &RunRecord{
		ID:          r.id,
		Status:      r.status,
		Solver:      r.solverName,
		CreatedAt:   r.createdAt,
		CompletedAt: r.completedAt,
		Report:      r.report,
	}
	if r.model != nil {
		record.TimePeriod = r.model.TimePeriod()
	}
	if r.problem != nil {
		record.Producers = append([]string(nil), r.problem.Producers...)
	}
	if r.result != nil {
		record.SolveStatus = r.result.Status
		record.Objective = r.result.Objective
		record.Solution = append([]float64(nil), r.result.X...)
		record.Message = r.result.Message
	}
	if r.plan != nil {
		record.Entries = append([]PlanEntry(nil), r.plan.Entries...)
	}
	return record
}
