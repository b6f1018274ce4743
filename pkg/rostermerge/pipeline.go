package rostermerge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/config"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/module"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/output"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/parser"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/reconcile"
)

// ModuleResult reports the output of one module.
type ModuleResult struct {
	Key  string `json:"key"`
	Rows int    `json:"rows"`
	// Path is empty when the module produced nothing.
	Path string `json:"path,omitempty"`
}

// Result reports a finished run.
type Result struct {
	Modules    []ModuleResult  `json:"modules"`
	Unmatched  []string        `json:"unmatched,omitempty"`
	Checkpoint string          `json:"checkpoint"`
	Final      string          `json:"final"`
	Stats      reconcile.Stats `json:"stats"`
	// Merged is the final record set.
	Merged *models.RecordSet `json:"-"`
}

// Run processes every module of doc, writes one workbook per module, the
// unioned checkpoint and the merged result. Missing workbooks and tables are
// logged and skipped. Run fails when nothing was extracted, when an output
// cannot be written or when ctx is cancelled between modules.
func Run(ctx context.Context, opts Options, doc *config.Document, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	src := parser.NewSource(logger)
	defer src.Close()

	proc := module.NewProcessor(doc, src, module.Options{SkipPrefix: opts.ModulePrefix}, logger)
	writer := output.NewWriter(logger)

	assigned, unmatched, err := proc.Scan(opts.InputDir)
	if err != nil {
		return nil, err
	}
	for _, f := range unmatched {
		logger.Warn("workbook matches no module", zap.String("file", f))
	}

	logger.Info("run started",
		zap.String("input", opts.InputDir),
		zap.String("output", opts.OutputDir),
		zap.Strings("modules", doc.Keys()))

	res := &Result{Unmatched: unmatched}
	var parts []*models.RecordSet
	for _, mod := range doc.Modules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rs := proc.ProcessFiles(opts.InputDir, assigned[mod.Key], mod)
		mr := ModuleResult{Key: mod.Key}
		if rs != nil {
			mr.Rows = rs.Len()
			mr.Path = opts.ModulePath(mod.Key)
			if err := writer.Write(rs, mr.Path); err != nil {
				return nil, err
			}
			parts = append(parts, rs)
		}
		res.Modules = append(res.Modules, mr)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: check %s against the MODULES section", ErrNoData, opts.InputDir)
	}

	union := models.Union(parts...)
	res.Checkpoint = opts.CheckpointPath()
	if err := writer.Write(union, res.Checkpoint); err != nil {
		return nil, err
	}

	rec := reconcile.New(doc, logger).Reconcile(union)
	res.Stats = rec.Stats
	res.Merged = rec.Merged
	res.Final = opts.FinalPath()
	if err := writer.Write(rec.Merged, res.Final); err != nil {
		return nil, err
	}

	logger.Info("run finished",
		zap.Int("modules", len(parts)),
		zap.Int("rows", rec.Merged.Len()),
		zap.String("final", res.Final))
	return res, nil
}
