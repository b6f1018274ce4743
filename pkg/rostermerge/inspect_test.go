package rostermerge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/rostermerge-go/pkg/rostermerge/models"
)

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anketa_HR.xlsx")
	saveTable(t, path, "People",
		[]interface{}{"ФИО", "УЗ"},
		[]interface{}{"Ivanov", "iv1"},
	)
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	_, err = f.NewSheet("Loose")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Loose", "B2", &[]interface{}{"a", "b"}))
	require.NoError(t, f.SetSheetRow("Loose", "B3", &[]interface{}{"c", "d"}))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	info, err := Inspect(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "anketa_HR.xlsx", info.BookName)
	assert.Equal(t, []string{"Sheet1", "Loose"}, info.Sheets)
	require.Len(t, info.Tables, 1)
	assert.Equal(t, "People", info.Tables[0].Name)
	assert.Equal(t, models.KindTable, info.Tables[0].Kind)
	require.Len(t, info.Candidates, 1)
	assert.Equal(t, "Loose", info.Candidates[0].Sheet)
	assert.Equal(t, "B2:C3", info.Candidates[0].Ref)
}

func TestInspectUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))
	_, err := Inspect(path, nil)
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}
