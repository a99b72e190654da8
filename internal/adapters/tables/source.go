package tables

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/andrescamacho/production-planner/internal/domain/economy"
)

// Source yields the four input tables of one planning run
type Source interface {
	Load(ctx context.Context) (economy.Tables, error)
}

// ErrInputFile indicates a table file that could not be opened
type ErrInputFile struct {
	Table string
	Path  string
	Err   error
}

func (e *ErrInputFile) Error() string {
	return fmt.Sprintf("cannot open %s table %s: %v", e.Table, e.Path, e.Err)
}

func (e *ErrInputFile) Unwrap() error {
	return e.Err
}

// FileSource reads the tables from CSV files on disk
type FileSource struct {
	Recipes    string
	Supply     string
	Demand     string
	Priorities string
}

// NewFileSource creates a source over the four table paths
func NewFileSource(recipes, supply, demand, priorities string) *FileSource {
	return &FileSource{Recipes: recipes, Supply: supply, Demand: demand, Priorities: priorities}
}

// Load opens and parses every table. Files are opened up front so a missing
// file is reported before any parsing.
func (s *FileSource) Load(ctx context.Context) (economy.Tables, error) {
	paths := []struct {
		table string
		path  string
	}{
		{economy.TableRecipes, s.Recipes},
		{economy.TableSupply, s.Supply},
		{economy.TableDemand, s.Demand},
		{economy.TablePriorities, s.Priorities},
	}

	files := make([]*os.File, 0, len(paths))
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	for _, p := range paths {
		f, err := os.Open(p.path)
		if err != nil {
			return economy.Tables{}, &ErrInputFile{Table: p.table, Path: p.path, Err: err}
		}
		files = append(files, f)
	}

	return NewReaderSource(files[0], files[1], files[2], files[3]).Load(ctx)
}

// ReaderSource parses the tables from arbitrary readers
type ReaderSource struct {
	recipes    io.Reader
	supply     io.Reader
	demand     io.Reader
	priorities io.Reader
}

// NewReaderSource creates a source over already opened tables
func NewReaderSource(recipes, supply, demand, priorities io.Reader) *ReaderSource {
	return &ReaderSource{recipes: recipes, supply: supply, demand: demand, priorities: priorities}
}

// Load parses the tables in recipe, supply, demand, priority order and stops at the first error
func (s *ReaderSource) Load(ctx context.Context) (economy.Tables, error) {
	var (
		tables economy.Tables
		err    error
	)

	if tables.Recipes, err = ReadRecipes(s.recipes); err != nil {
		return economy.Tables{}, err
	}
	if err := ctx.Err(); err != nil {
		return economy.Tables{}, err
	}
	if tables.Supply, err = ReadSupply(s.supply); err != nil {
		return economy.Tables{}, err
	}
	if tables.Demand, err = ReadDemand(s.demand); err != nil {
		return economy.Tables{}, err
	}
	if tables.Priorities, err = ReadPriorities(s.priorities); err != nil {
		return economy.Tables{}, err
	}

	return tables, nil
}
