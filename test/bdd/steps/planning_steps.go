package steps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/production-planner/internal/adapters/persistence"
	"github.com/andrescamacho/production-planner/internal/adapters/solver"
	"github.com/andrescamacho/production-planner/internal/adapters/tables"
	"github.com/andrescamacho/production-planner/internal/application/common"
	"github.com/andrescamacho/production-planner/internal/application/planning/commands"
	"github.com/andrescamacho/production-planner/internal/application/planning/queries"
	"github.com/andrescamacho/production-planner/internal/application/setup"
	"github.com/andrescamacho/production-planner/internal/domain/economy"
	"github.com/andrescamacho/production-planner/internal/domain/planning"
	"github.com/andrescamacho/production-planner/internal/infrastructure/logging"
	"github.com/andrescamacho/production-planner/test/helpers"
)

const amountTolerance = 1e-6

type planningContext struct {
	recipes    string
	supply     string
	demand     string
	priorities string
	solverName string

	record *planning.RunRecord
	err    error

	mediator common.Mediator
	runRepo  *persistence.GormPlanningRunRepository
	logRepo  *persistence.GormRunLogRepository
}

func (c *planningContext) reset() {
	c.recipes = "producer,output,input,input_amount,max_output\n"
	c.supply = "commodity,amount,is_flow\n"
	c.demand = "commodity,amount,is_flow\n"
	c.priorities = "commodity,importance\n"
	c.solverName = solver.NameSimplex
	c.record = nil
	c.err = nil
	c.mediator = nil
	c.runRepo = nil
	c.logRepo = nil
}

// InitializePlanningScenario registers the planning pipeline steps
func InitializePlanningScenario(sc *godog.ScenarioContext) {
	c := &planningContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		c.reset()
		return ctx, helpers.TruncateAllTables()
	})

	// Given steps
	sc.Step(`^the recipes:$`, c.theRecipes)
	sc.Step(`^the supply:$`, c.theSupply)
	sc.Step(`^the demand:$`, c.theDemand)
	sc.Step(`^the priorities:$`, c.thePriorities)
	sc.Step(`^the "([^"]*)" solver$`, c.theSolver)

	// When steps
	sc.Step(`^I plan for a time period of ([\d.]+)$`, c.iPlanForATimePeriodOf)
	sc.Step(`^I plan and save run "([^"]*)" for a time period of ([\d.]+)$`, c.iPlanAndSaveRun)

	// Then steps
	sc.Step(`^the plan should be feasible$`, c.thePlanShouldBeFeasible)
	sc.Step(`^the plan should be infeasible$`, c.thePlanShouldBeInfeasible)
	sc.Step(`^the plan should be empty$`, c.thePlanShouldBeEmpty)
	sc.Step(`^the solve status should be "([^"]*)"$`, c.theSolveStatusShouldBe)
	sc.Step(`^producer "([^"]*)" should produce ([\d.]+) units? of "([^"]*)"$`, c.producerShouldProduce)
	sc.Step(`^producer "([^"]*)" should not produce$`, c.producerShouldNotProduce)
	sc.Step(`^producer "([^"]*)" should consume ([\d.]+) units? of "([^"]*)"$`, c.producerShouldConsume)
	sc.Step(`^the objective should be (-?[\d.]+)$`, c.theObjectiveShouldBe)
	sc.Step(`^commodity "([^"]*)" should end with materials (-?[\d.]+)$`, c.commodityShouldEndWithMaterials)
	sc.Step(`^commodity "([^"]*)" should be balanced$`, c.commodityShouldBeBalanced)
	sc.Step(`^commodity "([^"]*)" should be unbalanced$`, c.commodityShouldBeUnbalanced)
	sc.Step(`^the final state of "([^"]*)" should be (-?[\d.]+) -> (-?[\d.]+)$`, c.theFinalStateShouldBe)
	sc.Step(`^planning should fail with a ([A-Z_]+) error$`, c.planningShouldFailWith)
	sc.Step(`^the error should mention "([^"]*)"$`, c.theErrorShouldMention)
	sc.Step(`^the run history should list "([^"]*)"$`, c.theRunHistoryShouldList)
	sc.Step(`^saved run "([^"]*)" should have (\d+) plan entr(?:y|ies)$`, c.savedRunShouldHavePlanEntries)
	sc.Step(`^saved run "([^"]*)" should have logged "([^"]*)"$`, c.savedRunShouldHaveLogged)
}

// Given

func (c *planningContext) theRecipes(table *godog.Table) error {
	c.recipes = tableToCSV(table)
	return nil
}

func (c *planningContext) theSupply(table *godog.Table) error {
	c.supply = tableToCSV(table)
	return nil
}

func (c *planningContext) theDemand(table *godog.Table) error {
	c.demand = tableToCSV(table)
	return nil
}

func (c *planningContext) thePriorities(table *godog.Table) error {
	c.priorities = tableToCSV(table)
	return nil
}

func (c *planningContext) theSolver(name string) error {
	c.solverName = name
	return nil
}

// tableToCSV renders a gherkin table, header included, as CSV text
func tableToCSV(table *godog.Table) string {
	var b strings.Builder
	for _, row := range table.Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.Value
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}
	return b.String()
}

// When

func (c *planningContext) iPlanForATimePeriodOf(timePeriod float64) error {
	return c.plan("", timePeriod, false)
}

func (c *planningContext) iPlanAndSaveRun(runID string, timePeriod float64) error {
	return c.plan(runID, timePeriod, true)
}

func (c *planningContext) plan(runID string, timePeriod float64, save bool) error {
	backend, err := solver.New(c.solverName, solver.Options{})
	if err != nil {
		return err
	}

	c.runRepo = persistence.NewGormPlanningRunRepository(helpers.SharedTestDB)
	c.logRepo = persistence.NewGormRunLogRepository(helpers.SharedTestDB)
	c.mediator, err = setup.NewHandlerRegistry(backend, c.runRepo, c.logRepo, nil, 0).CreateConfiguredMediator()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if runID != "" {
		ctx = common.WithLogger(ctx, logging.NewStdRunLogger(runID, io.Discard, "debug", "text", nil))
	}

	resp, err := c.mediator.Send(ctx, &commands.RunPlanCommand{
		RunID: runID,
		Tables: tables.NewReaderSource(
			strings.NewReader(c.recipes),
			strings.NewReader(c.supply),
			strings.NewReader(c.demand),
			strings.NewReader(c.priorities),
		),
		TimePeriod: timePeriod,
		Save:       save,
	})
	c.err = err
	if err == nil {
		c.record = resp.(*commands.RunPlanResponse).Record
	}
	return nil
}

// Then

func (c *planningContext) requireRecord() error {
	if c.err != nil {
		return fmt.Errorf("planning failed: %w", c.err)
	}
	if c.record == nil {
		return fmt.Errorf("no planning run was executed")
	}
	return nil
}

func (c *planningContext) thePlanShouldBeFeasible() error {
	if err := c.requireRecord(); err != nil {
		return err
	}
	if !c.record.IsFeasible() {
		return fmt.Errorf("expected a feasible plan, solver said %s: %s", c.record.SolveStatus, c.record.Message)
	}
	return nil
}

func (c *planningContext) thePlanShouldBeInfeasible() error {
	if err := c.requireRecord(); err != nil {
		return err
	}
	if c.record.IsFeasible() {
		return fmt.Errorf("expected no plan, got objective %g", c.record.Objective)
	}
	return nil
}

func (c *planningContext) thePlanShouldBeEmpty() error {
	if err := c.requireRecord(); err != nil {
		return err
	}
	if len(c.record.Entries) != 0 {
		return fmt.Errorf("expected an empty plan, got %d entries", len(c.record.Entries))
	}
	return nil
}

func (c *planningContext) theSolveStatusShouldBe(status string) error {
	if err := c.requireRecord(); err != nil {
		return err
	}
	if string(c.record.SolveStatus) != status {
		return fmt.Errorf("expected solve status %s, got %s", status, c.record.SolveStatus)
	}
	return nil
}

func (c *planningContext) entryFor(producer string) (*planning.PlanEntry, error) {
	if err := c.requireRecord(); err != nil {
		return nil, err
	}
	for i := range c.record.Entries {
		if c.record.Entries[i].Producer == producer {
			return &c.record.Entries[i], nil
		}
	}
	return nil, nil
}

func (c *planningContext) producerShouldProduce(producer string, amount float64, commodity string) error {
	entry, err := c.entryFor(producer)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("producer %s is not in the plan", producer)
	}
	if entry.OutputCommodity != commodity {
		return fmt.Errorf("producer %s outputs %s, expected %s", producer, entry.OutputCommodity, commodity)
	}
	if math.Abs(entry.Amount-amount) > amountTolerance {
		return fmt.Errorf("producer %s produces %g, expected %g", producer, entry.Amount, amount)
	}
	return nil
}

func (c *planningContext) producerShouldNotProduce(producer string) error {
	entry, err := c.entryFor(producer)
	if err != nil {
		return err
	}
	if entry != nil {
		return fmt.Errorf("producer %s should be idle, plans %g", producer, entry.Amount)
	}
	return nil
}

func (c *planningContext) producerShouldConsume(producer string, amount float64, commodity string) error {
	entry, err := c.entryFor(producer)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("producer %s is not in the plan", producer)
	}
	if math.Abs(entry.Costs[commodity]-amount) > amountTolerance {
		return fmt.Errorf("producer %s consumes %g %s, expected %g", producer, entry.Costs[commodity], commodity, amount)
	}
	return nil
}

func (c *planningContext) theObjectiveShouldBe(objective float64) error {
	if err := c.thePlanShouldBeFeasible(); err != nil {
		return err
	}
	if math.Abs(c.record.Objective-objective) > amountTolerance {
		return fmt.Errorf("objective is %g, expected %g", c.record.Objective, objective)
	}
	return nil
}

func (c *planningContext) balanceOf(commodity string) (planning.CommodityBalance, bool, error) {
	if err := c.requireRecord(); err != nil {
		return planning.CommodityBalance{}, false, err
	}
	for _, b := range c.record.Report.Balanced {
		if b.Commodity == commodity {
			return b, true, nil
		}
	}
	for _, b := range c.record.Report.Unbalanced {
		if b.Commodity == commodity {
			return b, false, nil
		}
	}
	return planning.CommodityBalance{}, false, fmt.Errorf("commodity %s is not in the report", commodity)
}

func (c *planningContext) commodityShouldEndWithMaterials(commodity string, materials float64) error {
	b, _, err := c.balanceOf(commodity)
	if err != nil {
		return err
	}
	if math.Abs(b.Materials-materials) > amountTolerance {
		return fmt.Errorf("commodity %s ends with materials %g, expected %g", commodity, b.Materials, materials)
	}
	return nil
}

func (c *planningContext) commodityShouldBeBalanced(commodity string) error {
	b, balanced, err := c.balanceOf(commodity)
	if err != nil {
		return err
	}
	if !balanced {
		return fmt.Errorf("commodity %s is unbalanced with materials %g", commodity, b.Materials)
	}
	return nil
}

func (c *planningContext) commodityShouldBeUnbalanced(commodity string) error {
	b, balanced, err := c.balanceOf(commodity)
	if err != nil {
		return err
	}
	if balanced {
		return fmt.Errorf("commodity %s is balanced with materials %g", commodity, b.Materials)
	}
	return nil
}

func (c *planningContext) theFinalStateShouldBe(commodity string, start, end float64) error {
	if err := c.requireRecord(); err != nil {
		return err
	}
	for _, fs := range c.record.Report.FinalState {
		if fs.Commodity != commodity {
			continue
		}
		if math.Abs(fs.StartingSupply-start) > amountTolerance || math.Abs(fs.Ending-end) > amountTolerance {
			return fmt.Errorf("final state of %s is %g -> %g, expected %g -> %g",
				commodity, fs.StartingSupply, fs.Ending, start, end)
		}
		return nil
	}
	return fmt.Errorf("commodity %s has no final state", commodity)
}

func (c *planningContext) planningShouldFailWith(kind string) error {
	if c.err == nil {
		return fmt.Errorf("expected a %s error, planning succeeded", kind)
	}
	var validationErr *economy.ValidationError
	if !errors.As(c.err, &validationErr) {
		return fmt.Errorf("expected a validation error, got: %v", c.err)
	}
	if string(validationErr.Kind) != kind {
		return fmt.Errorf("expected a %s error, got %s", kind, validationErr.Kind)
	}
	return nil
}

func (c *planningContext) theErrorShouldMention(text string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error mentioning %q", text)
	}
	if !strings.Contains(c.err.Error(), text) {
		return fmt.Errorf("error %q does not mention %q", c.err.Error(), text)
	}
	return nil
}

func (c *planningContext) theRunHistoryShouldList(runID string) error {
	resp, err := c.mediator.Send(context.Background(), &queries.ListRunsQuery{})
	if err != nil {
		return err
	}
	for _, run := range resp.(*queries.ListRunsResponse).Runs {
		if run.ID == runID {
			return nil
		}
	}
	return fmt.Errorf("run %s is not in the history", runID)
}

func (c *planningContext) getRun(runID string) (*queries.GetRunResponse, error) {
	resp, err := c.mediator.Send(context.Background(), &queries.GetRunQuery{RunID: runID, IncludeLogs: true})
	if err != nil {
		return nil, err
	}
	return resp.(*queries.GetRunResponse), nil
}

func (c *planningContext) savedRunShouldHavePlanEntries(runID string, n int) error {
	run, err := c.getRun(runID)
	if err != nil {
		return err
	}
	if len(run.Run.Entries) != n {
		return fmt.Errorf("saved run %s has %d plan entries, expected %d", runID, len(run.Run.Entries), n)
	}
	return nil
}

func (c *planningContext) savedRunShouldHaveLogged(runID, message string) error {
	run, err := c.getRun(runID)
	if err != nil {
		return err
	}
	for _, entry := range run.Logs {
		if entry.Message == message {
			return nil
		}
	}
	return fmt.Errorf("saved run %s has no log line %q", runID, message)
}
