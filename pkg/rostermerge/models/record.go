// Package models defines the record types shared by the reconciliation pipeline.
package models

// Record maps a canonical field name to a scalar cell value.
// A value is one of nil, string, int64, float64 or bool. An absent key and a
// nil value both mean "null".
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RecordSet is an ordered table of records.
type RecordSet struct {
	// Columns is the ordered set of field names carried by the rows.
	Columns []string `json:"columns"`
	// Rows holds the records in extraction order.
	Rows []Record `json:"rows"`
}

// NewRecordSet creates an empty record set with the given columns.
func NewRecordSet(columns ...string) *RecordSet {
	return &RecordSet{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Has reports whether the set carries the named column.
func (rs *RecordSet) Has(column string) bool {
	for _, c := range rs.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Append adds a row. Fields not yet present in Columns are appended to it in
// map iteration order, so callers that care about order should add columns first.
func (rs *RecordSet) Append(r Record) {
	for k := range r {
		if !rs.Has(k) {
			rs.Columns = append(rs.Columns, k)
		}
	}
	rs.Rows = append(rs.Rows, r)
}

// Clone returns a copy whose rows can be modified without touching rs.
func (rs *RecordSet) Clone() *RecordSet {
	out := &RecordSet{
		Columns: append([]string(nil), rs.Columns...),
		Rows:    make([]Record, len(rs.Rows)),
	}
	for i, r := range rs.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// WithColumn returns a copy with column set to value on every row. The column is
// appended when it is new.
func (rs *RecordSet) WithColumn(column string, value any) *RecordSet {
	out := rs.Clone()
	if !out.Has(column) {
		out.Columns = append(out.Columns, column)
	}
	for _, r := range out.Rows {
		r[column] = value
	}
	return out
}

// Without returns a copy with the named columns removed. Names that are not
// present are ignored.
func (rs *RecordSet) Without(columns ...string) *RecordSet {
	drop := make(map[string]bool, len(columns))
	for _, c := range columns {
		drop[c] = true
	}
	out := &RecordSet{Rows: make([]Record, len(rs.Rows))}
	for _, c := range rs.Columns {
		if !drop[c] {
			out.Columns = append(out.Columns, c)
		}
	}
	for i, r := range rs.Rows {
		nr := make(Record, len(r))
		for k, v := range r {
			if !drop[k] {
				nr[k] = v
			}
		}
		out.Rows[i] = nr
	}
	return out
}

// Union concatenates record sets. Columns are the ordered union by first
// appearance; fields a row does not carry stay null. Nil sets are skipped.
func Union(sets ...*RecordSet) *RecordSet {
	out := &RecordSet{}
	seen := make(map[string]bool)
	for _, rs := range sets {
		if rs == nil {
			continue
		}
		for _, c := range rs.Columns {
			if !seen[c] {
				seen[c] = true
				out.Columns = append(out.Columns, c)
			}
		}
		for _, r := range rs.Rows {
			out.Rows = append(out.Rows, r.Clone())
		}
	}
	return out
}
