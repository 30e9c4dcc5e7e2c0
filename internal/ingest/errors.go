package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoActionColumn means a trade ledger has neither an action nor a type column.
var ErrNoActionColumn = errors.New("trade ledger has no action or type column")

// ColumnError reports required columns missing from an input.
type ColumnError struct {
	Input   string
	Missing []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Input, strings.Join(e.Missing, ", "))
}

// RowError reports one unusable cell. Row is 1-based and counts the header,
// so it matches the line a spreadsheet shows.
type RowError struct {
	Input  string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d, column %s (%q): %v", e.Input, e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
