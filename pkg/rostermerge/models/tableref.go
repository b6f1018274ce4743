package models

// TableKind distinguishes Excel tables from workbook defined names.
type TableKind string

const (
	// KindTable is an Excel table (ListObject) attached to a worksheet.
	KindTable TableKind = "table"
	// KindDefinedName is a workbook-level defined name pointing at a range.
	KindDefinedName TableKind = "defined_name"
)

// TableRef locates a named table inside a workbook.
type TableRef struct {
	// Name is the table or defined name.
	Name string `json:"name"`
	// Sheet is the worksheet holding the range.
	Sheet string `json:"sheet"`
	// Ref is the range reference as written in the workbook (e.g. "A1:D10").
	Ref string `json:"ref"`
	// Range is the parsed bounds of Ref.
	Range CellRange `json:"range"`
	// Kind tells where the name came from.
	Kind TableKind `json:"kind"`
}
