package reconcile

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/config"
	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
)

var testIdentity = config.Identity{FullName: "ФИО", Account: "УЗ"}

func testDoc(table config.ReplacementTable) *config.Document {
	if table == nil {
		table = config.ReplacementTable{}
	}
	return &config.Document{Identity: testIdentity, Replacements: table, ModuleField: "Модуль"}
}

func set(columns []string, rows ...models.Record) *models.RecordSet {
	rs := models.NewRecordSet(columns...)
	rs.Rows = rows
	return rs
}

// randomSet builds a set with heavy key collisions and many missing values.
func randomSet(seed int64, n int) *models.RecordSet {
	rng := rand.New(rand.NewSource(seed))
	names := []any{nil, "", "Ivanov", "Petrov", " Ivanov ", "Sidorov"}
	accounts := []any{nil, "", "iv1", "pt2", int64(7), int64(0)}
	values := []any{nil, "", "x", "y", int64(0), int64(5), 3.5, 0.0}

	rs := models.NewRecordSet("ФИО", "УЗ", "Phone", "Email", "Статус")
	for i := 0; i < n; i++ {
		rs.Rows = append(rs.Rows, models.Record{
			"ФИО":    names[rng.Intn(len(names))],
			"УЗ":     accounts[rng.Intn(len(accounts))],
			"Phone":  values[rng.Intn(len(values))],
			"Email":  values[rng.Intn(len(values))],
			"Статус": values[rng.Intn(len(values))],
		})
	}
	return rs
}

func TestStrictTupleGrouping(t *testing.T) {
	rs := set([]string{"ФИО", "УЗ", "Phone"},
		models.Record{"ФИО": "Ivanov", "УЗ": "", "Phone": ""},
		models.Record{"ФИО": "Ivanov", "УЗ": "iv1", "Phone": "555"},
	)

	res := New(testDoc(nil), nil).Reconcile(rs)

	// A blank account is its own identity: the rows are different people.
	require.Equal(t, 2, res.Merged.Len())
	assert.Equal(t, "", res.Merged.Rows[0]["Phone"])
	assert.Equal(t, "555", res.Merged.Rows[1]["Phone"])
}

func TestMergeFillsMissingOnly(t *testing.T) {
	g := Group{Rows: []models.Record{
		{"ФИО": "Ivanov", "УЗ": "iv1", "Phone": "", "Email": "a@x", "Age": int64(0)},
		{"ФИО": " Ivanov", "УЗ": "iv1", "Phone": "555", "Email": "b@x", "Age": int64(41)},
		{"ФИО": "Ivanov", "УЗ": "iv1", "Phone": "777", "Room": "12"},
	}}

	rec, filled := Merge(g, testIdentity)

	assert.Equal(t, models.Record{
		"ФИО": "Ivanov", "УЗ": "iv1", "Phone": "555", "Email": "a@x", "Age": int64(41), "Room": "12",
	}, rec)
	assert.Equal(t, 3, filled)
	assert.Equal(t, "", g.Rows[0]["Phone"], "input rows are not modified")
}

func TestZeroCountsAsMissing(t *testing.T) {
	rs := set([]string{"ФИО", "УЗ", "Count"},
		models.Record{"ФИО": "Ivanov", "УЗ": "iv1", "Count": 0.0},
		models.Record{"ФИО": "Ivanov", "УЗ": "iv1", "Count": int64(3)},
	)
	res := New(testDoc(nil), nil).Reconcile(rs)
	require.Equal(t, 1, res.Merged.Len())
	assert.Equal(t, int64(3), res.Merged.Rows[0]["Count"])
}

func TestFilterIdentity(t *testing.T) {
	rs := set([]string{"ФИО", "УЗ"},
		models.Record{"ФИО": nil, "УЗ": ""},
		models.Record{"ФИО": "  ", "УЗ": int64(0)},
		models.Record{"ФИО": "Ivanov"},
		models.Record{"УЗ": "pt2"},
		models.Record{},
	)
	out, dropped := FilterIdentity(rs, testIdentity)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, 5, rs.Len())
}

func TestGroupRowsStableOrder(t *testing.T) {
	rs := set([]string{"ФИО", "УЗ"},
		models.Record{"ФИО": "Petrov", "УЗ": "pt2"},
		models.Record{"ФИО": "Ivanov", "УЗ": "iv1"},
		models.Record{"ФИО": "Petrov ", "УЗ": "pt2"},
		models.Record{"ФИО": "Ivanov", "УЗ": int64(7)},
		models.Record{"ФИО": "Ivanov", "УЗ": "7"},
	)
	groups := GroupRows(rs, testIdentity)
	require.Len(t, groups, 3)
	assert.Equal(t, Key{"Petrov", "pt2"}, groups[0].Key)
	assert.Len(t, groups[0].Rows, 2)
	assert.Equal(t, Key{"Ivanov", "iv1"}, groups[1].Key)
	assert.Equal(t, Key{"Ivanov", "7"}, groups[2].Key)
	assert.Len(t, groups[2].Rows, 2)
}

func TestReplace(t *testing.T) {
	rs := set([]string{"ФИО", "УЗ", "Статус", "Роль"},
		models.Record{"ФИО": "A", "Статус": int64(1), "Роль": "adm"},
		models.Record{"ФИО": "B", "Статус": "1", "Роль": "Активен"},
		models.Record{"ФИО": "C", "Статус": nil, "Роль": ""},
		models.Record{"ФИО": "D", "Роль": "0"},
	)
	table := config.ReplacementTable{
		"Статус":  {"1": "Активен", "": "none", "Активен": "cascade"},
		"Роль":    {"adm": "Администратор", "": "empty", "0": int64(0)},
		"Missing": {"x": "y"},
	}

	out, n, absent := Replace(rs, table)

	assert.Equal(t, 5, n)
	assert.Equal(t, []string{"Missing"}, absent)
	assert.Equal(t, "Активен", out.Rows[0]["Статус"])
	assert.Equal(t, "Администратор", out.Rows[0]["Роль"])
	assert.Equal(t, "Активен", out.Rows[1]["Статус"], "replacements do not cascade")
	assert.Equal(t, "Активен", out.Rows[1]["Роль"])
	assert.Nil(t, out.Rows[2]["Статус"], "nil never matches")
	assert.Equal(t, "empty", out.Rows[2]["Роль"])
	assert.Equal(t, int64(0), out.Rows[3]["Роль"])
	assert.NotContains(t, out.Rows[3], "Статус")

	assert.Equal(t, int64(1), rs.Rows[0]["Статус"], "input is not modified")
}

func TestReplacementIndependence(t *testing.T) {
	table := config.ReplacementTable{"Phone": {"x": "y", "5": "five", "0": "zero"}}
	for seed := int64(0); seed < 20; seed++ {
		rs := randomSet(seed, 40)
		out, _, _ := Replace(rs, table)
		for i := range rs.Rows {
			for _, f := range []string{"ФИО", "УЗ", "Email", "Статус"} {
				assert.Equal(t, rs.Rows[i][f], out.Rows[i][f], "seed %d row %d field %s", seed, i, f)
			}
		}
	}
}

func TestReconcileProperties(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rs := randomSet(seed, 60)
			res := New(testDoc(nil), nil).Reconcile(rs)

			filtered, _ := FilterIdentity(rs, testIdentity)
			distinct := map[Key]models.Record{}
			for _, r := range filtered.Rows {
				k := KeyOf(r, testIdentity)
				if _, ok := distinct[k]; !ok {
					distinct[k] = r
				}
			}

			// Group coverage.
			require.Equal(t, len(distinct), res.Merged.Len())
			assert.Equal(t, len(distinct), res.Stats.Groups)

			seen := map[Key]bool{}
			for _, out := range res.Merged.Rows {
				k := KeyOf(out, testIdentity)
				// Identity completeness.
				assert.False(t, k.Empty())
				assert.False(t, seen[k], "one row per key")
				seen[k] = true

				// Monotonicity: a present base value survives.
				base := distinct[k]
				for _, f := range []string{"Phone", "Email", "Статус"} {
					if !models.IsMissing(base[f]) {
						assert.Equal(t, base[f], out[f])
					}
				}
			}
			assert.Equal(t, rs.Columns, res.Merged.Columns)
		})
	}
}

func TestReconcileEmptyAndLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := New(testDoc(config.ReplacementTable{"Nope": {"a": "b"}}), zap.New(core))

	res := r.Reconcile(set([]string{"Phone"}))
	assert.Equal(t, 0, res.Merged.Len())
	assert.Equal(t, 2, logs.FilterMessage("identity field not present in data").Len())
	assert.Equal(t, 1, logs.FilterMessage("replacement fields not present in data").Len())

	res = r.Reconcile(nil)
	assert.Equal(t, 0, res.Merged.Len())
}

func TestReconcileLogsMergedGroups(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rs := set([]string{"ФИО", "УЗ", "Phone"},
		models.Record{"ФИО": "Ivanov", "УЗ": "iv1", "Phone": ""},
		models.Record{"ФИО": "Petrov", "УЗ": "pt2"},
		models.Record{"ФИО": "Ivanov", "УЗ": "iv1", "Phone": "555"},
	)
	res := New(testDoc(nil), zap.New(core)).Reconcile(rs)

	assert.Equal(t, Stats{Input: 3, Groups: 2, Filled: 1}, res.Stats)
	entries := logs.FilterMessage("group merged").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Ivanov", entries[0].ContextMap()["full_name"])
	assert.Equal(t, int64(2), entries[0].ContextMap()["rows"])
}
