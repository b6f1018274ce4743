// Package normalize maps raw table headers onto canonical field names.
package normalize

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
)

// Header canonicalizes the spelling of a header: Unicode NFC, whitespace runs
// collapsed to one space, leading and trailing whitespace trimmed.
func Header(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// RenameMap is a compiled raw-header -> canonical-header mapping.
// Keys and targets are header-normalized and chains are resolved (A->B, B->C
// becomes A->C), so applying the map twice gives the same result as once.
type RenameMap struct {
	to map[string]string
}

// Compile prepares a raw rename mapping for use with Columns.
// Members of a rename cycle all resolve to the cycle's smallest name.
func Compile(raw map[string]string) RenameMap {
	edges := make(map[string]string, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	// Sorted so that two raw spellings normalizing to the same key resolve
	// the same way on every run.
	sort.Strings(keys)
	for _, k := range keys {
		from, to := Header(k), Header(raw[k])
		if from == "" || to == "" || from == to {
			continue
		}
		edges[from] = to
	}

	resolved := make(map[string]string, len(edges))
	for from := range edges {
		resolved[from] = resolve(from, edges)
	}
	return RenameMap{to: resolved}
}

// resolve follows rename edges until a name with no outgoing edge. On a
// cycle it settles on the smallest name of the cycle.
func resolve(name string, edges map[string]string) string {
	visited := map[string]bool{name: true}
	path := []string{name}
	cur := name
	for {
		next, ok := edges[cur]
		if !ok {
			return cur
		}
		if visited[next] {
			// next starts the cycle; pick its smallest member.
			start := 0
			for i, p := range path {
				if p == next {
					start = i
					break
				}
			}
			smallest := next
			for _, p := range path[start:] {
				if p < smallest {
					smallest = p
				}
			}
			return smallest
		}
		visited[next] = true
		path = append(path, next)
		cur = next
	}
}

// Lookup returns the canonical name for a header.
func (m RenameMap) Lookup(header string) string {
	h := Header(header)
	if to, ok := m.to[h]; ok {
		return to
	}
	return h
}

// Len returns the number of raw names the map rewrites.
func (m RenameMap) Len() int { return len(m.to) }

// Collision records two source columns that landed on one canonical name.
type Collision struct {
	Canonical string
	Sources   []string
}

// Columns returns a copy of rs with every column renamed through m. The input
// is left untouched.
//
// When several columns map to one canonical name the column keeps the position
// of its first occurrence and, row by row, the value of the later column
// overwrites the earlier one. This is the defined behavior; the collisions are
// returned so the caller can report them.
func Columns(rs *models.RecordSet, m RenameMap) (*models.RecordSet, []Collision) {
	out := &models.RecordSet{Rows: make([]models.Record, len(rs.Rows))}
	sources := make(map[string][]string)
	for _, c := range rs.Columns {
		canonical := m.Lookup(c)
		if _, ok := sources[canonical]; !ok {
			out.Columns = append(out.Columns, canonical)
		}
		sources[canonical] = append(sources[canonical], c)
	}

	for i, r := range rs.Rows {
		nr := make(models.Record, len(r))
		// Walk columns in order so the later column wins on collision.
		for _, c := range rs.Columns {
			if v, ok := r[c]; ok {
				nr[m.Lookup(c)] = v
			}
		}
		out.Rows[i] = nr
	}

	var collisions []Collision
	for _, c := range out.Columns {
		if len(sources[c]) > 1 {
			collisions = append(collisions, Collision{Canonical: c, Sources: sources[c]})
		}
	}
	return out, collisions
}
