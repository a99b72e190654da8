package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/andrescamacho/production-planner/internal/domain/planning"
)

// Report output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// WriteReport renders a reported run in the given format
func WriteReport(w io.Writer, record *planning.RunRecord, format string) error {
	switch format {
	case FormatJSON:
		return WriteJSONReport(w, record)
	case FormatText, "":
		return WriteTextReport(w, record)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteTextReport prints the solver verdict, the production plan, the
// feasibility verdict and the commodity balances
func WriteTextReport(w io.Writer, record *planning.RunRecord) error {
	var b strings.Builder

	b.WriteString("Output:\n\n")
	fmt.Fprintf(&b, "Result: %s\n", formatObjective(record))
	fmt.Fprintf(&b, "Output Vector: %s\n", formatVector(record.Solution))
	fmt.Fprintf(&b, "Message: %s\n", record.Message)

	feasible := record.IsFeasible()
	if feasible {
		b.WriteString("\nProduction Plan\n")
		for _, entry := range record.Entries {
			fmt.Fprintf(&b, "    Produce %.3f units of %s at %s using\n", entry.Amount, entry.OutputCommodity, entry.Producer)
			for _, cost := range entry.SortedCosts() {
				if cost.Amount <= 0 {
					continue
				}
				fmt.Fprintf(&b, "        %.3f units of %s\n", cost.Amount, cost.Commodity)
			}
		}
	}

	b.WriteString("\n")
	if feasible {
		b.WriteString("Plan is feasible\n\nCommodities\n")
		if record.Report != nil {
			for _, c := range record.Report.Balanced {
				fmt.Fprintf(&b, "    %s: %.4f surplus - %.4f demanded\n", c.Commodity, c.Materials, c.Demand)
			}
		}
	} else {
		b.WriteString("Plan is infeasible\n")
	}

	if record.Report != nil && len(record.Report.Unbalanced) > 0 {
		b.WriteString("\nUnbalanced Commodities\n")
		for _, c := range record.Report.Unbalanced {
			fmt.Fprintf(&b, "    %s: %.4f shortfall - %.4f demanded\n", c.Commodity, -c.Materials, c.Demand)
		}
	}

	if feasible && record.Report != nil {
		b.WriteString("\nFinal State\n")
		for _, fs := range record.Report.FinalState {
			fmt.Fprintf(&b, "    %s: %.4f -> %.4f\n", fs.Commodity, fs.StartingSupply, fs.Ending)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatObjective(record *planning.RunRecord) string {
	if !record.IsFeasible() {
		return "none"
	}
	return fmt.Sprintf("%g", record.Objective)
}

func formatVector(x []float64) string {
	if len(x) == 0 {
		return "none"
	}
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// jsonReport is the machine-readable form of a reported run
type jsonReport struct {
	RunID       string                      `json:"run_id"`
	Solver      string                      `json:"solver"`
	SolveStatus string                      `json:"solve_status"`
	Message     string                      `json:"message"`
	Feasible    bool                        `json:"feasible"`
	Objective   *float64                    `json:"objective,omitempty"`
	Solution    []float64                   `json:"solution,omitempty"`
	TimePeriod  float64                     `json:"time_period"`
	Plan        []jsonPlanEntry             `json:"plan"`
	Balanced    []planning.CommodityBalance `json:"balanced"`
	Unbalanced  []planning.CommodityBalance `json:"unbalanced"`
	FinalState  []planning.FinalState       `json:"final_state"`
}

type jsonPlanEntry struct {
	Producer        string                     `json:"producer"`
	Amount          float64                    `json:"amount"`
	OutputCommodity string                     `json:"output_commodity"`
	Costs           []planning.CommodityAmount `json:"costs"`
}

// WriteJSONReport prints the same data as the text report as indented JSON
func WriteJSONReport(w io.Writer, record *planning.RunRecord) error {
	report := jsonReport{
		RunID:       record.ID,
		Solver:      record.Solver,
		SolveStatus: string(record.SolveStatus),
		Message:     record.Message,
		Feasible:    record.IsFeasible(),
		TimePeriod:  record.TimePeriod,
		Plan:        []jsonPlanEntry{},
		Balanced:    []planning.CommodityBalance{},
		Unbalanced:  []planning.CommodityBalance{},
		FinalState:  []planning.FinalState{},
	}
	if report.Feasible {
		objective := record.Objective
		report.Objective = &objective
		report.Solution = record.Solution
	}
	for _, entry := range record.Entries {
		report.Plan = append(report.Plan, jsonPlanEntry{
			Producer:        entry.Producer,
			Amount:          entry.Amount,
			OutputCommodity: entry.OutputCommodity,
			Costs:           entry.SortedCosts(),
		})
	}
	if record.Report != nil {
		report.Balanced = append(report.Balanced, record.Report.Balanced...)
		report.Unbalanced = append(report.Unbalanced, record.Report.Unbalanced...)
		report.FinalState = append(report.FinalState, record.Report.FinalState...)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
