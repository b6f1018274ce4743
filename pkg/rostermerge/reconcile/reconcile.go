// Package reconcile collapses the unioned records of all modules into one
// record per person.
package reconcile

import (
	"go.uber.org/zap"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/config"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
)

// Stats summarizes one reconciliation.
type Stats struct {
	Input    int `json:"input"`
	Replaced int `json:"replaced"`
	Dropped  int `json:"dropped"`
	Groups   int `json:"groups"`
	Filled   int `json:"filled"`
}

// Result holds the merged record set and its statistics.
type Result struct {
	Merged *models.RecordSet
	Stats  Stats
}

// Reconciler applies value replacement, identity filtering, grouping and
// merge-fill, in that order.
type Reconciler struct {
	id           config.Identity
	replacements config.ReplacementTable
	logger       *zap.Logger
}

// New creates a Reconciler configured by doc. A nil logger disables logging.
func New(doc *config.Document, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		id:           doc.Identity,
		replacements: doc.Replacements,
		logger:       logger,
	}
}

// Reconcile merges rs into one record per distinct identity key. rs is not
// modified. The merged set keeps the columns of rs.
func (r *Reconciler) Reconcile(rs *models.RecordSet) *Result {
	if rs == nil {
		rs = models.NewRecordSet()
	}
	stats := Stats{Input: rs.Len()}

	for _, field := range []string{r.id.FullName, r.id.Account} {
		if !rs.Has(field) {
			r.logger.Warn("identity field not present in data", zap.String("field", field))
		}
	}

	replaced, n, absent := Replace(rs, r.replacements)
	stats.Replaced = n
	if len(absent) > 0 {
		r.logger.Warn("replacement fields not present in data", zap.Strings("fields", absent))
	}
	r.logger.Info("values replaced", zap.Int("cells", n))

	filtered, dropped := FilterIdentity(replaced, r.id)
	stats.Dropped = dropped
	if dropped > 0 {
		r.logger.Info("rows without identity dropped", zap.Int("rows", dropped))
	}

	groups := GroupRows(filtered, r.id)
	stats.Groups = len(groups)

	merged := models.NewRecordSet(rs.Columns...)
	merged.Rows = make([]models.Record, 0, len(groups))
	for _, g := range groups {
		rec, filled := Merge(g, r.id)
		stats.Filled += filled
		if len(g.Rows) > 1 {
			r.logger.Debug("group merged",
				zap.String("full_name", g.Key.FullName),
				zap.String("account", g.Key.Account),
				zap.Int("rows", len(g.Rows)),
				zap.Int("filled", filled))
		}
		merged.Rows = append(merged.Rows, rec)
	}

	r.logger.Info("records reconciled",
		zap.Int("input", stats.Input),
		zap.Int("groups", stats.Groups),
		zap.Int("filled", stats.Filled))
	return &Result{Merged: merged, Stats: stats}
}
