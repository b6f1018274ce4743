// Package config loads the settings document that drives a run: the rename
// map, the value replacement tables and the module definitions.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
)

// ErrConfigInvalid indicates the settings document is missing required keys
// or holds malformed values.
var ErrConfigInvalid = errors.New("invalid configuration")

// Section names of the settings document.
const (
	SectionRenameMap   = "RENAME_MAP"
	SectionModules     = "MODULES"
	SectionIdentity    = "IDENTITY"
	SectionModuleField = "MODULE_FIELD"
	ReplacePrefix      = "REPLACE_"
)

// Defaults applied when the document omits the optional sections.
const (
	DefaultFullNameField = "ФИО"
	DefaultAccountField  = "УЗ"
	DefaultModuleField   = "Модуль"
)

// Module describes one category of source workbook.
type Module struct {
	// Key is matched as a substring of workbook file names.
	Key string `yaml:"-"`
	// Tables lists the named tables to extract from each matching workbook.
	Tables []string `yaml:"table_names"`
	// Drop lists columns removed from every extracted table.
	Drop []string `yaml:"columns_to_remove"`
}

// Identity names the two canonical fields forming the identity key.
type Identity struct {
	FullName string `yaml:"full_name"`
	Account  string `yaml:"account"`
}

// ReplacementTable maps a canonical field to {old value -> new value}. Old
// values are compared against models.FormatValue of the cell.
type ReplacementTable map[string]map[string]any

// Fields returns the number of fields with replacement rules.
func (t ReplacementTable) Fields() int { return len(t) }

// Document is the immutable configuration of a run. Build it with Load or
// Parse; do not modify it afterwards.
type Document struct {
	RenameMap    map[string]string
	Replacements ReplacementTable
	// ReplaceSections lists the REPLACE_* section names in document order.
	ReplaceSections []string
	Modules         []Module
	Identity        Identity
	ModuleField     string
}

// Module returns the module with the given key.
func (d *Document) Module(key string) (Module, bool) {
	for _, m := range d.Modules {
		if m.Key == key {
			return m, true
		}
	}
	return Module{}, false
}

// Keys returns the module keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.Modules))
	for i, m := range d.Modules {
		keys[i] = m.Key
	}
	return keys
}

// Load reads and validates the settings document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfigInvalid, path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// rawSection keeps the source of one top-level section so it can be decoded
// into the type that section needs.
type rawSection []byte

func (s *rawSection) UnmarshalYAML(b []byte) error {
	*s = append((*s)[:0], b...)
	return nil
}

// Parse decodes a settings document. JSON and YAML are both accepted.
func Parse(data []byte) (*Document, error) {
	// Top-level key order decides the order replacement sections are folded in.
	var order yaml.MapSlice
	if err := yaml.Unmarshal(data, &order); err != nil {
		return nil, invalid("parse document: %v", err)
	}
	var sections map[string]rawSection
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, invalid("parse document: %v", err)
	}

	doc := &Document{
		RenameMap:    map[string]string{},
		Replacements: ReplacementTable{},
		Identity:     Identity{FullName: DefaultFullNameField, Account: DefaultAccountField},
		ModuleField:  DefaultModuleField,
	}

	if raw, ok := sections[SectionRenameMap]; ok && !isNull(raw) {
		if err := yaml.Unmarshal(raw, &doc.RenameMap); err != nil {
			return nil, invalid("%s must map header to header: %v", SectionRenameMap, err)
		}
	}

	raw, ok := sections[SectionModules]
	if !ok || isNull(raw) {
		return nil, invalid("%s section is required", SectionModules)
	}
	modules, err := parseModules(raw)
	if err != nil {
		return nil, err
	}
	doc.Modules = modules

	if raw, ok := sections[SectionIdentity]; ok && !isNull(raw) {
		var id Identity
		if err := yaml.Unmarshal(raw, &id); err != nil {
			return nil, invalid("%s: %v", SectionIdentity, err)
		}
		if id.FullName != "" {
			doc.Identity.FullName = id.FullName
		}
		if id.Account != "" {
			doc.Identity.Account = id.Account
		}
	}

	if raw, ok := sections[SectionModuleField]; ok && !isNull(raw) {
		var field string
		if err := yaml.Unmarshal(raw, &field); err != nil {
			return nil, invalid("%s must be a string: %v", SectionModuleField, err)
		}
		doc.ModuleField = field
	}

	for _, item := range order {
		name := fmt.Sprint(item.Key)
		if !strings.HasPrefix(name, ReplacePrefix) {
			continue
		}
		var table ReplacementTable
		if raw := sections[name]; !isNull(raw) {
			if err := yaml.Unmarshal(raw, &table); err != nil {
				return nil, invalid("%s must map field to {old: new}: %v", name, err)
			}
		}
		if err := doc.Replacements.fold(name, table); err != nil {
			return nil, err
		}
		doc.ReplaceSections = append(doc.ReplaceSections, name)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// parseModules decodes the MODULES section keeping document order, which is
// the order modules are matched against file names.
func parseModules(raw rawSection) ([]Module, error) {
	var order yaml.MapSlice
	if err := yaml.Unmarshal(raw, &order); err != nil {
		return nil, invalid("%s must map module key to settings: %v", SectionModules, err)
	}
	var byKey map[string]Module
	if err := yaml.Unmarshal(raw, &byKey); err != nil {
		return nil, invalid("%s: %v", SectionModules, err)
	}

	modules := make([]Module, 0, len(order))
	for _, item := range order {
		key := fmt.Sprint(item.Key)
		m := byKey[key]
		m.Key = key
		modules = append(modules, m)
	}
	return modules, nil
}

// fold merges one REPLACE_* section into t. The same field and old value
// mapped to two different new values is a conflict.
func (t ReplacementTable) fold(section string, add ReplacementTable) error {
	for field, rules := range add {
		if t[field] == nil {
			t[field] = make(map[string]any, len(rules))
		}
		for old, repl := range rules {
			if prev, ok := t[field][old]; ok && models.FormatValue(prev) != models.FormatValue(repl) {
				return invalid("%s: %q value %q already replaced with %q, cannot also map to %q",
					section, field, old, models.FormatValue(prev), models.FormatValue(repl))
			}
			t[field][old] = repl
		}
	}
	return nil
}

// Validate checks the invariants the pipeline relies on.
func (d *Document) Validate() error {
	if len(d.Modules) == 0 {
		return invalid("%s must define at least one module", SectionModules)
	}
	seen := make(map[string]bool, len(d.Modules))
	for _, m := range d.Modules {
		if strings.TrimSpace(m.Key) == "" {
			return invalid("%s: empty module key", SectionModules)
		}
		if seen[m.Key] {
			return invalid("%s: duplicate module key %q", SectionModules, m.Key)
		}
		seen[m.Key] = true
		if len(m.Tables) == 0 {
			return invalid("%s: module %q lists no table_names", SectionModules, m.Key)
		}
		for _, t := range m.Tables {
			if strings.TrimSpace(t) == "" {
				return invalid("%s: module %q has an empty table name", SectionModules, m.Key)
			}
		}
	}
	if strings.TrimSpace(d.Identity.FullName) == "" || strings.TrimSpace(d.Identity.Account) == "" {
		return invalid("%s: both identity fields are required", SectionIdentity)
	}
	if d.Identity.FullName == d.Identity.Account {
		return invalid("%s: full_name and account must differ", SectionIdentity)
	}
	if strings.TrimSpace(d.ModuleField) == "" {
		return invalid("%s must not be empty", SectionModuleField)
	}
	return nil
}

func isNull(raw rawSection) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == "~"
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfigInvalid, fmt.Sprintf(format, args...))
}
