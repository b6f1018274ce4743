package parser

import (
	"sort"
	"strings"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
	"github.com/xuri/excelize/v2"
)

// workbook is one opened file plus its lazily built lookup structures.
type workbook struct {
	path  string
	file  *excelize.File
	index map[string]models.TableRef // exact name -> table
	fold  map[string]models.TableRef // lower-cased name -> table
	refs  []models.TableRef          // discovery order
	rows  map[string][][]string      // sheet -> rows
}

// buildIndex collects every Excel table of every sheet, then the workbook's
// defined names. A table shadows a defined name of the same name.
func (wb *workbook) buildIndex() {
	if wb.index != nil {
		return
	}
	wb.index = make(map[string]models.TableRef)
	wb.fold = make(map[string]models.TableRef)

	for _, sheet := range wb.file.GetSheetList() {
		tables, err := wb.file.GetTables(sheet)
		if err != nil {
			// Chart sheets and dialog sheets carry no tables.
			continue
		}
		for _, t := range tables {
			_, area, err := ParseReference(t.Range)
			if err != nil {
				continue
			}
			wb.add(models.TableRef{
				Name:  t.Name,
				Sheet: sheet,
				Ref:   t.Range,
				Range: area,
				Kind:  models.KindTable,
			})
		}
	}

	for _, dn := range wb.file.GetDefinedName() {
		if strings.HasPrefix(dn.Name, "_xlnm.") {
			// Print areas, filters and other built-in names.
			continue
		}
		sheet, area, err := ParseReference(dn.RefersTo)
		if err != nil || sheet == "" {
			continue
		}
		wb.add(models.TableRef{
			Name:  dn.Name,
			Sheet: sheet,
			Ref:   FormatRange(area),
			Range: area,
			Kind:  models.KindDefinedName,
		})
	}
}

func (wb *workbook) add(ref models.TableRef) {
	if _, ok := wb.index[ref.Name]; ok {
		return
	}
	wb.index[ref.Name] = ref
	if _, ok := wb.fold[strings.ToLower(ref.Name)]; !ok {
		wb.fold[strings.ToLower(ref.Name)] = ref
	}
	wb.refs = append(wb.refs, ref)
}

// lookup finds a table by exact name first, then case-insensitively as Excel
// does.
func (wb *workbook) lookup(name string) (models.TableRef, bool) {
	if ref, ok := wb.index[name]; ok {
		return ref, true
	}
	ref, ok := wb.fold[strings.ToLower(name)]
	return ref, ok
}

// sheetRows reads a sheet once per run.
func (wb *workbook) sheetRows(sheet string) ([][]string, error) {
	if rows, ok := wb.rows[sheet]; ok {
		return rows, nil
	}
	rows, err := wb.file.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	wb.rows[sheet] = rows
	return rows, nil
}

// names returns the indexed table names sorted for display.
func (wb *workbook) names() []string {
	out := make([]string, 0, len(wb.refs))
	for _, r := range wb.refs {
		out = append(out, r.Name)
	}
	sort.Strings(out)
	return out
}
