package parser

import (
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
)

// CandidateParams holds thresholds for spotting an unnamed data region.
type CandidateParams struct {
	DensityMin       float64
	MinNonemptyCells int
}

// DefaultCandidateParams returns default detection thresholds.
func DefaultCandidateParams() CandidateParams {
	return CandidateParams{
		DensityMin:       0.04,
		MinNonemptyCells: 3,
	}
}

// Candidate is a dense data region on a sheet that has no named table.
type Candidate struct {
	Sheet string           `json:"sheet"`
	Range models.CellRange `json:"range"`
	Ref   string           `json:"ref"`
}

// DetectCandidates reports, for every sheet of the workbook that holds no
// named table, the bounding box of its data when it is dense enough to look
// like a table. Operators use it to find ranges worth naming.
func (s *Source) DetectCandidates(path string, params CandidateParams) ([]Candidate, error) {
	wb, err := s.open(path)
	if err != nil {
		return nil, err
	}

	named := make(map[string]bool)
	for _, ref := range wb.refs {
		named[ref.Sheet] = true
	}

	var out []Candidate
	for _, sheet := range wb.file.GetSheetList() {
		if named[sheet] {
			continue
		}
		rows, err := wb.sheetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		area, ok := detectRegion(rows, params)
		if !ok {
			continue
		}
		out = append(out, Candidate{Sheet: sheet, Range: area, Ref: FormatRange(area)})
	}
	return out, nil
}

// detectRegion returns the bounding box of the non-empty cells when it holds
// enough cells and is dense enough. Every non-empty cell lies inside the box,
// so one pass gives both the bounds and the count.
func detectRegion(rows [][]string, params CandidateParams) (models.CellRange, bool) {
	var area models.CellRange
	filled := 0
	for r, row := range rows {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			row1, col1 := r+1, c+1
			if filled == 0 {
				area = models.CellRange{R1: row1, C1: col1, R2: row1, C2: col1}
			} else {
				area.R1 = min(area.R1, row1)
				area.C1 = min(area.C1, col1)
				area.R2 = max(area.R2, row1)
				area.C2 = max(area.C2, col1)
			}
			filled++
		}
	}

	if filled == 0 || filled < params.MinNonemptyCells {
		return models.CellRange{}, false
	}
	density := float64(filled) / float64(area.Rows()*area.Cols())
	return area, density >= params.DensityMin
}
