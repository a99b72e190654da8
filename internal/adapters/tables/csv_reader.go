package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andrescamacho/production-planner/internal/domain/economy"
)

const (
	recipeFields   = 5
	flowFields     = 3
	priorityFields = 2

	// flowMarker in the third supply/demand column marks a per-period rate
	flowMarker = "1"
)

// ReadRecipes parses a recipe table:
// producer, output commodity, input commodity, input amount, max output
func ReadRecipes(r io.Reader) ([]economy.RecipeRow, error) {
	var rows []economy.RecipeRow
	err := readRecords(r, economy.TableRecipes, recipeFields, func(row int, fields []string) error {
		inputAmount, err := parseNumber(economy.TableRecipes, row, "input_amount", fields[3])
		if err != nil {
			return err
		}
		maxOutput, err := parseNumber(economy.TableRecipes, row, "max_output", fields[4])
		if err != nil {
			return err
		}
		rows = append(rows, economy.RecipeRow{
			Row:             row,
			Producer:        fields[0],
			OutputCommodity: fields[1],
			InputCommodity:  fields[2],
			InputAmount:     inputAmount,
			MaxOutput:       maxOutput,
		})
		return nil
	})
	return rows, err
}

// ReadSupply parses a supply table: commodity, amount, is-inflow flag
func ReadSupply(r io.Reader) ([]economy.FlowRow, error) {
	return readFlows(r, economy.TableSupply)
}

// ReadDemand parses a demand table: commodity, amount, is-outflow flag
func ReadDemand(r io.Reader) ([]economy.FlowRow, error) {
	return readFlows(r, economy.TableDemand)
}

func readFlows(r io.Reader, table string) ([]economy.FlowRow, error) {
	var rows []economy.FlowRow
	err := readRecords(r, table, flowFields, func(row int, fields []string) error {
		amount, err := parseNumber(table, row, "amount", fields[1])
		if err != nil {
			return err
		}
		rows = append(rows, economy.FlowRow{
			Row:       row,
			Commodity: fields[0],
			Amount:    amount,
			IsFlow:    fields[2] == flowMarker,
		})
		return nil
	})
	return rows, err
}

// ReadPriorities parses a priority table: commodity, importance
func ReadPriorities(r io.Reader) ([]economy.PriorityRow, error) {
	var rows []economy.PriorityRow
	err := readRecords(r, economy.TablePriorities, priorityFields, func(row int, fields []string) error {
		importance, err := parseNumber(economy.TablePriorities, row, "importance", fields[1])
		if err != nil {
			return err
		}
		rows = append(rows, economy.PriorityRow{Row: row, Commodity: fields[0], Importance: importance})
		return nil
	})
	return rows, err
}

// readRecords skips the header, trims every field and checks the field count
// before handing each data row to fn. Rows are numbered from 1 after the header.
func readRecords(r io.Reader, table string, fields int, fn func(row int, fields []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return economy.NewValidationError(economy.ErrorKindSchema, table, 0, "", "missing header row")
		}
		return economy.NewValidationError(economy.ErrorKindSchema, table, 0, "", fmt.Sprintf("unreadable header: %v", err))
	}

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return economy.NewValidationError(economy.ErrorKindSchema, table, row, "", fmt.Sprintf("malformed csv: %v", err))
		}
		if len(record) != fields {
			return economy.NewValidationError(economy.ErrorKindSchema, table, row, "",
				fmt.Sprintf("expected %d fields, got %d", fields, len(record)))
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if err := fn(row, record); err != nil {
			return err
		}
	}
}

func parseNumber(table string, row int, field, raw string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, economy.NewValidationError(economy.ErrorKindNonNumeric, table, row, field,
			fmt.Sprintf("%q is not a number", raw))
	}
	return value, nil
}
