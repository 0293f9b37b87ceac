package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad wraps every failure to read or parse the dataset file.
	ErrLoad = errors.New("dataset load failed")
	// ErrColumnNotFound is returned when a requested column is absent.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNotNumeric is returned when a plotted column holds text.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrDuplicateColumn marks a header that repeats a column name.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// ColumnError names the column that could not be used.
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Column)
}

func (e *ColumnError) Unwrap() error { return e.Err }

func missingColumn(name string) error {
	return &ColumnError{Column: name, Err: ErrColumnNotFound}
}
