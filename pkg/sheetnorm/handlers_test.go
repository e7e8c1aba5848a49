package sheetnorm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/parser"
)

func TestDefaultHandlers(t *testing.T) {
	reg := DefaultHandlers()
	assert.Len(t, reg, 12)

	for _, sheet := range reg.Sheets() {
		h, ok := reg.Lookup(sheet)
		require.True(t, ok)
		assert.NoError(t, h.Validate(), sheet)
	}

	h, _ := reg.Lookup("SINIESTROS AÑO REGIÓN")
	assert.Equal(t, LayoutRegionYear, h.Layout)
	assert.Equal(t, 2, h.HeaderRow)
}

func TestHandler_Validate(t *testing.T) {
	assert.ErrorIs(t, Handler{Layout: "sideways", Metric: "m"}.Validate(), ErrUnknownLayout)
	assert.ErrorIs(t, NewHandler(LayoutRegionYear, "", "").Validate(), parser.ErrMissingLabel)
	assert.ErrorIs(t, NewHandler(LayoutYearCategoryByRegion, "m", "").Validate(), parser.ErrMissingLabel)
	assert.NoError(t, NewHandler(LayoutRegionYear, "m", "").Validate())
}

func TestLoadHandlers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handlers.yaml")
	doc := `
"SINIESTROS POR TIPO":
  layout: year_category_by_region
  metric: por_tipo
  dim_name: tipo
  start_row: 4
"RESUMEN":
  layout: year_category_national
  metric: resumen
  dim_name: grupo
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	reg, err := LoadHandlers(path)
	require.NoError(t, err)
	require.Len(t, reg, 2)

	h := reg["SINIESTROS POR TIPO"]
	assert.Equal(t, 4, h.StartRow)
	assert.Equal(t, 1, h.YearRow, "omitted positions keep their defaults")
	assert.Equal(t, 2, h.CategoryRow)

	merged := DefaultHandlers().Merge(reg)
	assert.Len(t, merged, 13)
	assert.Equal(t, "por_tipo", merged["SINIESTROS POR TIPO"].Metric)
	assert.Equal(t, "siniestros_por_tipo", DefaultHandlers()["SINIESTROS POR TIPO"].Metric)
}

func TestLoadHandlers_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handlers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("HOJA:\n  layout: diagonal\n  metric: m\n"), 0644))

	_, err := LoadHandlers(path)
	assert.ErrorIs(t, err, ErrUnknownLayout)

	_, err = LoadHandlers(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
