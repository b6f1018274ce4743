package rostermerge

import (
	"errors"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/config"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/module"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/output"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/parser"
)

// Errors reported by a run. Test with errors.Is.
var (
	// ErrSourceUnreadable indicates a workbook could not be opened.
	ErrSourceUnreadable = parser.ErrSourceUnreadable
	// ErrTableNotFound indicates a named table is absent from a workbook.
	ErrTableNotFound = parser.ErrTableNotFound
	// ErrModuleEmpty indicates a module produced no tables.
	ErrModuleEmpty = module.ErrModuleEmpty
	// ErrSinkWrite indicates an output workbook could not be written.
	ErrSinkWrite = output.ErrSinkWrite
	// ErrConfigInvalid indicates invalid settings or run options.
	ErrConfigInvalid = config.ErrConfigInvalid
)

// ErrNoData indicates that no module produced any records.
var ErrNoData = errors.New("no module produced data")
