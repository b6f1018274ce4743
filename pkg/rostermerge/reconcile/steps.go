package reconcile

import (
	"sort"
	"strings"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/config"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
)

// Key is the identity of a record. A missing field is the empty string.
type Key struct {
	FullName string
	Account  string
}

// Empty reports whether both identity fields are missing.
func (k Key) Empty() bool { return k.FullName == "" && k.Account == "" }

// KeyOf returns the identity key of r. Values are compared by their trimmed
// string form, so 42 and "42" are the same account.
func KeyOf(r models.Record, id config.Identity) Key {
	return Key{FullName: identityValue(r[id.FullName]), Account: identityValue(r[id.Account])}
}

func identityValue(v any) string {
	if models.IsMissing(v) {
		return ""
	}
	return strings.TrimSpace(models.FormatValue(v))
}

// Replace applies the replacement table to a copy of rs and returns it with
// the number of replaced cells and the table fields that rs does not carry.
// Every field is looked up in its own rules against the original cell value,
// so replacements never cascade. A nil cell never matches.
func Replace(rs *models.RecordSet, table config.ReplacementTable) (*models.RecordSet, int, []string) {
	out := rs.Clone()

	var absent []string
	for field := range table {
		if !rs.Has(field) {
			absent = append(absent, field)
		}
	}
	sort.Strings(absent)

	replaced := 0
	for i, r := range rs.Rows {
		for field, rules := range table {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			if repl, ok := rules[models.FormatValue(v)]; ok {
				out.Rows[i][field] = repl
				replaced++
			}
		}
	}
	return out, replaced, absent
}

// FilterIdentity returns a copy of rs without the rows whose identity fields
// are both missing, and the number of rows dropped.
func FilterIdentity(rs *models.RecordSet, id config.Identity) (*models.RecordSet, int) {
	out := models.NewRecordSet(rs.Columns...)
	for _, r := range rs.Rows {
		if KeyOf(r, id).Empty() {
			continue
		}
		out.Rows = append(out.Rows, r.Clone())
	}
	return out, rs.Len() - out.Len()
}

// Group is the rows sharing one identity key, in input order.
type Group struct {
	Key  Key
	Rows []models.Record
}

// GroupRows partitions rs by identity key using strict tuple equality. Groups
// come out in order of first appearance.
func GroupRows(rs *models.RecordSet, id config.Identity) []Group {
	index := make(map[Key]int)
	var groups []Group
	for _, r := range rs.Rows {
		k := KeyOf(r, id)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// Merge collapses a group into one record. The first row is the base; each
// later row, in order, fills the base fields that are still missing. Present
// values are never overwritten and identity fields are left as the base has
// them. It returns the merged record and the number of filled fields.
func Merge(g Group, id config.Identity) (models.Record, int) {
	if len(g.Rows) == 0 {
		return models.Record{}, 0
	}
	base := g.Rows[0].Clone()
	filled := 0
	for _, r := range g.Rows[1:] {
		for field, v := range r {
			if field == id.FullName || field == id.Account {
				continue
			}
			if models.IsMissing(base[field]) && !models.IsMissing(v) {
				base[field] = v
				filled++
			}
		}
	}
	return base, filled
}
