// Package module turns the workbooks of one configured module into a single
// normalized record set.
package module

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/config"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/normalize"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/parser"
)

// ErrModuleEmpty indicates a module produced no tables. It is reported, never
// returned: the module is simply left out of the union.
var ErrModuleEmpty = errors.New("module produced no tables")

// Source extracts a named table from a workbook.
type Source interface {
	Extract(path, table string) (*models.RecordSet, error)
}

// Options tunes workbook discovery.
type Options struct {
	// SkipPrefix excludes files whose name starts with it, typically the
	// prefix of per-module output workbooks.
	SkipPrefix string
}

// Processor extracts and normalizes the tables of configured modules.
type Processor struct {
	doc    *config.Document
	src    Source
	rename normalize.RenameMap
	opts   Options
	logger *zap.Logger
}

// NewProcessor creates a Processor for doc. A nil logger disables logging.
func NewProcessor(doc *config.Document, src Source, opts Options, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		doc:    doc,
		src:    src,
		rename: normalize.Compile(doc.RenameMap),
		opts:   opts,
		logger: logger,
	}
}

// IsWorkbook reports whether a file name is an input workbook: an .xlsx or
// .xlsm file that is neither an Excel lock file nor a previous output.
func IsWorkbook(name, skipPrefix string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".xlsx" && ext != ".xlsm" {
		return false
	}
	if strings.HasPrefix(name, "~$") {
		return false
	}
	if skipPrefix != "" && strings.HasPrefix(name, skipPrefix) {
		return false
	}
	return true
}

// Assign maps each file to the first module, in document order, whose key
// is a substring of the file name. Files matching no module are returned
// separately. Both results keep the order of files.
func Assign(files []string, modules []config.Module) (map[string][]string, []string) {
	assigned := make(map[string][]string)
	var unmatched []string
	for _, f := range files {
		key, ok := match(f, modules)
		if !ok {
			unmatched = append(unmatched, f)
			continue
		}
		assigned[key] = append(assigned[key], f)
	}
	return assigned, unmatched
}

func match(file string, modules []config.Module) (string, bool) {
	for _, m := range modules {
		if strings.Contains(file, m.Key) {
			return m.Key, true
		}
	}
	return "", false
}

// Scan lists the input workbooks of dir, sorted by name, and assigns them
// to modules.
func (p *Processor) Scan(dir string) (map[string][]string, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read input folder: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsWorkbook(e.Name(), p.opts.SkipPrefix) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	assigned, unmatched := Assign(files, p.doc.Modules)
	return assigned, unmatched, nil
}

// Process extracts every configured table of every workbook in dir that
// belongs to mod, normalizes the columns, drops the configured columns and
// tags each record with the module key. Missing workbooks and tables are
// logged and skipped. It returns a nil set and a nil error when nothing was
// extracted.
func (p *Processor) Process(dir string, mod config.Module) (*models.RecordSet, error) {
	assigned, _, err := p.Scan(dir)
	if err != nil {
		return nil, err
	}
	return p.ProcessFiles(dir, assigned[mod.Key], mod), nil
}

// ProcessFiles is Process for files already assigned to mod by Scan, so a
// caller handling every module lists the folder once.
func (p *Processor) ProcessFiles(dir string, files []string, mod config.Module) *models.RecordSet {
	log := p.logger.With(zap.String("module", mod.Key))
	if len(files) == 0 {
		log.Warn("module skipped",
			zap.String("reason", "no workbook name contains the module key"),
			zap.Error(ErrModuleEmpty))
		return nil
	}

	var parts []*models.RecordSet
	for _, name := range files {
		parts = append(parts, p.processFile(log, filepath.Join(dir, name), mod)...)
	}

	if len(parts) == 0 {
		log.Warn("module skipped",
			zap.String("reason", "none of the configured tables could be loaded"),
			zap.Strings("tables", mod.Tables),
			zap.Error(ErrModuleEmpty))
		return nil
	}

	out := models.Union(parts...)
	log.Info("module processed",
		zap.Int("files", len(files)),
		zap.Int("tables", len(parts)),
		zap.Int("rows", out.Len()),
		zap.Int("columns", len(out.Columns)))
	return out
}

// processFile extracts the module's tables from one workbook. An unreadable
// workbook abandons the remaining tables of that file.
func (p *Processor) processFile(log *zap.Logger, path string, mod config.Module) []*models.RecordSet {
	log = log.With(zap.String("file", filepath.Base(path)))

	var parts []*models.RecordSet
	for _, table := range mod.Tables {
		rs, err := p.src.Extract(path, table)
		switch {
		case errors.Is(err, parser.ErrSourceUnreadable):
			log.Error("workbook unreadable", zap.Error(err))
			return parts
		case errors.Is(err, parser.ErrTableNotFound):
			log.Warn("table skipped", zap.String("table", table), zap.Error(err))
			continue
		case err != nil:
			log.Error("table extraction failed", zap.String("table", table), zap.Error(err))
			continue
		}

		parts = append(parts, p.prepare(log, rs, table, mod))
	}
	return parts
}

// prepare drops the configured columns, normalizes the remaining ones and
// adds the module tag. Drop names are matched against the raw headers before
// renaming, so dropping a rename-map key never removes the canonical column
// other headers feed. A drop name that is itself a canonical name also
// removes that column after renaming.
func (p *Processor) prepare(log *zap.Logger, rs *models.RecordSet, table string, mod config.Module) *models.RecordSet {
	drop := make(map[string]bool, len(mod.Drop))
	var canonical []string
	for _, d := range mod.Drop {
		h := normalize.Header(d)
		drop[h] = true
		if p.rename.Lookup(h) == h {
			canonical = append(canonical, h)
		}
	}
	var raw []string
	for _, c := range rs.Columns {
		if drop[normalize.Header(c)] {
			raw = append(raw, c)
		}
	}

	normalized, collisions := normalize.Columns(rs.Without(raw...), p.rename)
	for _, c := range collisions {
		log.Warn("columns collapsed onto one field, later column wins",
			zap.String("table", table),
			zap.String("field", c.Canonical),
			zap.Strings("sources", c.Sources))
	}
	return normalized.Without(canonical...).WithColumn(p.doc.ModuleField, mod.Key)
}
