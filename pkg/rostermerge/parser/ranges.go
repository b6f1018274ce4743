package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
	"github.com/xuri/excelize/v2"
)

// ParseReference parses a range reference into its sheet name and bounds.
// Accepted forms: 'Sheet Name'!$A$1:$D$10, Sheet1!A1:D10, A1:D10 and a single
// cell A1. The sheet is "" when the reference carries none. References made
// of several areas (comma separated) are rejected: a table is one rectangle.
func ParseReference(ref string) (string, models.CellRange, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "=")
	if ref == "" {
		return "", models.CellRange{}, fmt.Errorf("empty reference")
	}

	var sheet string
	rangeStr := ref
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		sheet = unquoteSheet(ref[:idx])
		rangeStr = ref[idx+1:]
	}
	if strings.Contains(rangeStr, ",") {
		return "", models.CellRange{}, fmt.Errorf("multi-area reference %q", ref)
	}

	area, err := parseArea(rangeStr)
	if err != nil {
		return "", models.CellRange{}, fmt.Errorf("reference %q: %w", ref, err)
	}
	return sheet, area, nil
}

// unquoteSheet removes the quotes Excel puts around sheet names containing
// spaces or punctuation; doubled quotes inside stand for one.
func unquoteSheet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		s = strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

// parseArea parses a range string like $A$1:$D$10 to a CellRange.
func parseArea(rangeStr string) (models.CellRange, error) {
	rangeStr = strings.ReplaceAll(rangeStr, "$", "")

	parts := strings.Split(rangeStr, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return models.CellRange{}, fmt.Errorf("malformed range %q", rangeStr)
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return models.CellRange{}, err
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return models.CellRange{}, err
	}

	// Normalize C3:A1 to A1:C3.
	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}
	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}
	return models.CellRange{R1: startRow, C1: startCol, R2: endRow, C2: endCol}, nil
}

// FormatRange renders bounds back to A1 notation.
func FormatRange(r models.CellRange) string {
	start, _ := excelize.CoordinatesToCellName(r.C1, r.R1)
	end, _ := excelize.CoordinatesToCellName(r.C2, r.R2)
	return start + ":" + end
}
