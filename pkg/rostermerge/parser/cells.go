package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
)

// numericRegex matches plain decimal numbers. strconv.ParseFloat alone would
// also accept "NaN", "Inf" and hex floats, which are text in a questionnaire.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// sliceRange materializes the cells of r from a sheet's rows.
// The first row of the range is the header; every following row that has at
// least one non-empty cell becomes a record. Header text is kept as written:
// only blank headers and exact repeats get a ColumnN name, so whitespace
// variants of one header reach the column normalizer intact.
func sliceRange(rows [][]string, r models.CellRange) *models.RecordSet {
	header := make([]string, 0, r.Cols())
	seen := make(map[string]bool, r.Cols())
	for c := r.C1; c <= r.C2; c++ {
		name := cellAt(rows, r.R1, c)
		if strings.TrimSpace(name) == "" || seen[name] {
			name = "Column" + strconv.Itoa(c-r.C1+1)
		}
		seen[name] = true
		header = append(header, name)
	}

	rs := models.NewRecordSet(header...)
	for rowNum := r.R1 + 1; rowNum <= r.R2; rowNum++ {
		rec := make(models.Record, len(header))
		hasData := false
		for i, name := range header {
			v := ParseValue(cellAt(rows, rowNum, r.C1+i))
			if v != nil {
				hasData = true
			}
			rec[name] = v
		}
		if hasData {
			rs.Rows = append(rs.Rows, rec)
		}
	}
	return rs
}

// cellAt returns the value at 1-based row/col, or "" when the sheet row is
// shorter than requested (GetRows skips trailing blanks).
func cellAt(rows [][]string, row, col int) string {
	if row < 1 || row > len(rows) {
		return ""
	}
	cells := rows[row-1]
	if col < 1 || col > len(cells) {
		return ""
	}
	return cells[col-1]
}

// ParseValue converts a cell string into a typed value.
// Returns nil for blank cells, int64 for integers, float64 for decimals, or the
// original string. Numbers written with a leading zero ("0123") stay strings so
// account numbers and phone numbers keep their digits.
func ParseValue(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if hasLeadingZero(s) || !numericRegex.MatchString(s) {
		return s
	}
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}
