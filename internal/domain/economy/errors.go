package economy

import "fmt"

// ErrorKind classifies validation failures detected while loading the input tables
type ErrorKind string

const (
	// ErrorKindSchema indicates a row with the wrong number of fields
	ErrorKindSchema ErrorKind = "SCHEMA_ERROR"

	// ErrorKindNonNumeric indicates a numeric field that could not be parsed
	ErrorKindNonNumeric ErrorKind = "NON_NUMERIC_FIELD"

	// ErrorKindNegativeAmount indicates an amount below zero (or not strictly positive where required)
	ErrorKindNegativeAmount ErrorKind = "NEGATIVE_AMOUNT"

	// ErrorKindInconsistentProducer indicates recipe rows for one producer that disagree
	// on output commodity or capacity
	ErrorKindInconsistentProducer ErrorKind = "INCONSISTENT_PRODUCER"

	// ErrorKindDuplicateInput indicates the same input commodity listed twice for one producer
	ErrorKindDuplicateInput ErrorKind = "DUPLICATE_INPUT"

	// ErrorKindDuplicatePriority indicates two priority rows for the same commodity
	ErrorKindDuplicatePriority ErrorKind = "DUPLICATE_PRIORITY"

	// ErrorKindUnknownCommodity indicates a reference to a commodity outside the universe
	ErrorKindUnknownCommodity ErrorKind = "UNKNOWN_COMMODITY"

	// ErrorKindInvalidParameter indicates a bad run-level parameter such as the time period
	ErrorKindInvalidParameter ErrorKind = "INVALID_PARAMETER"
)

// ValidationError reports a fatal problem with the input tables.
// Row is 1-based and counts data rows only (the header is not counted); zero means
// the error is not tied to a row.
type ValidationError struct {
	Kind    ErrorKind
	Table   string
	Row     int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	location := e.Table
	if e.Row > 0 {
		location = fmt.Sprintf("%s row %d", e.Table, e.Row)
	}
	if e.Field != "" {
		location = fmt.Sprintf("%s field '%s'", location, e.Field)
	}
	if location == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, location, e.Message)
}

// NewValidationError creates a validation error
func NewValidationError(kind ErrorKind, table string, row int, field, message string) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Table:   table,
		Row:     row,
		Field:   field,
		Message: message,
	}
}

// ErrUnknownCommodity is returned by ledger operations on commodities outside the universe
type ErrUnknownCommodity struct {
	Commodity string
}

func (e *ErrUnknownCommodity) Error() string {
	return fmt.Sprintf("unknown commodity: %s", e.Commodity)
}

// ErrMaterialsAlreadyInitialized is returned when materials are initialized twice in one run
type ErrMaterialsAlreadyInitialized struct{}

func (e *ErrMaterialsAlreadyInitialized) Error() string {
	return "materials balance already initialized for this run"
}
