// Package parser reads named tables out of Excel workbooks.
package parser

import (
	"path/filepath"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Source extracts named tables from workbooks. Each workbook is opened once
// and kept until Close, so repeated lookups in one file do not reparse it.
// A Source is not safe for concurrent use.
type Source struct {
	books  map[string]*workbook
	failed map[string]error
	logger *zap.Logger
}

// NewSource creates a Source. A nil logger disables logging.
func NewSource(logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		books:  make(map[string]*workbook),
		failed: make(map[string]error),
		logger: logger,
	}
}

// Extract returns the named table as a record set. The table may live on any
// sheet of the workbook.
func (s *Source) Extract(path, table string) (*models.RecordSet, error) {
	wb, err := s.open(path)
	if err != nil {
		return nil, err
	}

	ref, ok := wb.lookup(table)
	if !ok {
		return nil, &TableError{Path: path, Table: table, Available: wb.names()}
	}

	rows, err := wb.sheetRows(ref.Sheet)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}

	rs := sliceRange(rows, ref.Range)
	s.logger.Info("table loaded",
		zap.String("table", ref.Name),
		zap.String("sheet", ref.Sheet),
		zap.String("range", ref.Ref),
		zap.String("file", filepath.Base(path)),
		zap.Int("rows", rs.Len()))
	return rs, nil
}

// Tables lists every named table in the workbook in discovery order: Excel
// tables sheet by sheet, then defined names.
func (s *Source) Tables(path string) ([]models.TableRef, error) {
	wb, err := s.open(path)
	if err != nil {
		return nil, err
	}
	return append([]models.TableRef(nil), wb.refs...), nil
}

// Sheets lists the sheet names of the workbook in tab order.
func (s *Source) Sheets(path string) ([]string, error) {
	wb, err := s.open(path)
	if err != nil {
		return nil, err
	}
	return wb.file.GetSheetList(), nil
}

// Close releases every cached workbook.
func (s *Source) Close() error {
	var firstErr error
	for key, wb := range s.books {
		if err := wb.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.books, key)
	}
	clear(s.failed)
	return firstErr
}

// open returns the cached workbook for path, opening it on first use.
func (s *Source) open(path string) (*workbook, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	if wb, ok := s.books[key]; ok {
		return wb, nil
	}
	if err, ok := s.failed[key]; ok {
		return nil, &SourceError{Path: path, Err: err}
	}

	f, err := excelize.OpenFile(key)
	if err != nil {
		s.failed[key] = err
		return nil, &SourceError{Path: path, Err: err}
	}
	wb := &workbook{
		path: key,
		file: f,
		rows: make(map[string][][]string),
	}
	wb.buildIndex()
	s.books[key] = wb

	s.logger.Debug("workbook opened",
		zap.String("file", key),
		zap.Int("sheets", len(f.GetSheetList())),
		zap.Int("tables", len(wb.refs)))
	return wb, nil
}
