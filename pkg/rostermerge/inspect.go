package rostermerge

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/parser"
)

// WorkbookInfo lists what a workbook offers to the pipeline.
type WorkbookInfo struct {
	BookName string            `json:"book_name"`
	Sheets   []string          `json:"sheets"`
	Tables   []models.TableRef `json:"tables"`
	// Candidates are dense regions on sheets without a named table.
	Candidates []parser.Candidate `json:"candidates,omitempty"`
}

// Inspect lists the named tables of the workbook at path, and candidate
// regions on the sheets that have none.
func Inspect(path string, logger *zap.Logger) (*WorkbookInfo, error) {
	src := parser.NewSource(logger)
	defer src.Close()

	tables, err := src.Tables(path)
	if err != nil {
		return nil, err
	}
	sheets, err := src.Sheets(path)
	if err != nil {
		return nil, err
	}
	candidates, err := src.DetectCandidates(path, parser.DefaultCandidateParams())
	if err != nil {
		return nil, err
	}

	return &WorkbookInfo{
		BookName:   filepath.Base(path),
		Sheets:     sheets,
		Tables:     tables,
		Candidates: candidates,
	}, nil
}
