package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSourceUnreadable indicates a workbook could not be opened or parsed.
var ErrSourceUnreadable = errors.New("workbook unreadable")

// ErrTableNotFound indicates no sheet of a workbook holds the requested table.
var ErrTableNotFound = errors.New("table not found")

// SourceError reports a workbook that could not be read.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrSourceUnreadable, e.Path, e.Err)
}

// Is makes errors.Is(err, ErrSourceUnreadable) hold for every SourceError.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnreadable
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// TableError reports a named table missing from a workbook.
type TableError struct {
	Path  string
	Table string
	// Available lists the names the workbook does hold.
	Available []string
}

func (e *TableError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("%v: %q in %s (workbook has no named tables)", ErrTableNotFound, e.Table, e.Path)
	}
	return fmt.Sprintf("%v: %q in %s (available: %s)", ErrTableNotFound, e.Table, e.Path, strings.Join(e.Available, ", "))
}

func (e *TableError) Unwrap() error {
	return ErrTableNotFound
}
