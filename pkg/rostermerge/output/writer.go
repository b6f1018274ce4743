// Package output writes record sets to Excel workbooks.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
)

// ErrSinkWrite indicates an output workbook could not be written.
var ErrSinkWrite = errors.New("cannot write output")

// WriteError reports the output path that failed.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

// Is matches ErrSinkWrite.
func (e *WriteError) Is(target error) bool { return target == ErrSinkWrite }

func (e *WriteError) Unwrap() error { return e.Err }

// Defaults for the layout of written workbooks.
const (
	DefaultSheet = "Data"
	DefaultTable = "Records"
)

// Writer writes record sets as one-sheet workbooks holding a single Excel
// table, so the output can be read back by name.
type Writer struct {
	Sheet  string
	Table  string
	logger *zap.Logger
}

// NewWriter creates a Writer with the default sheet and table names. A nil
// logger disables logging.
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{Sheet: DefaultSheet, Table: DefaultTable, logger: logger}
}

// Write stores rs at path. The workbook is built in a temporary file next to
// path and renamed into place, so a failed write leaves any previous file
// untouched. Missing parent directories are created.
func (w *Writer) Write(rs *models.RecordSet, path string) error {
	if rs == nil {
		rs = models.NewRecordSet()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := w.build(rs, tmp); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	w.logger.Info("workbook written",
		zap.String("path", path),
		zap.Int("rows", rs.Len()),
		zap.Int("columns", len(rs.Columns)))
	return nil
}

// build streams the header and rows into a new workbook and saves it to dst.
func (w *Writer) build(rs *models.RecordSet, dst *os.File) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), w.Sheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(w.Sheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(rs.Columns))
	for i, c := range rs.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	row := make([]interface{}, len(rs.Columns))
	for i, r := range rs.Rows {
		for j, c := range rs.Columns {
			row[j] = r[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if len(rs.Columns) > 0 {
		end, err := excelize.CoordinatesToCellName(len(rs.Columns), rs.Len()+1)
		if err != nil {
			return err
		}
		if err := sw.AddTable(&excelize.Table{Range: "A1:" + end, Name: w.Table}); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(dst)
}
