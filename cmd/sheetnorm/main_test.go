package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeBook saves a two-sheet workbook that the built-in handlers know, plus
// one sheet no parser can read.
func writeBook(t *testing.T, dir string, withValidSheets bool) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheets := map[string][][]interface{}{
		"SINIESTROS AÑO REGIÓN": {
			{"SINIESTROS DE TRÁNSITO"},
			{"Fuente: PNP"},
			{"REGIÓN", 2019, 2020},
			{"Lima", 100, 120},
			{"Cusco", 10, 12},
		},
		"SINIESTROS POR TIPO": {
			{"SINIESTROS POR TIPO"},
			{"REGIÓN", 2019, nil, 2020},
			{nil, "Choque", "Despiste", "Choque"},
			{"Lima", 5, 6, 7},
		},
		"NOTAS": {{"nota"}},
	}
	order := []string{"NOTAS"}
	if withValidSheets {
		order = []string{"SINIESTROS AÑO REGIÓN", "SINIESTROS POR TIPO", "NOTAS"}
	}

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(dir, "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestNormalizePivotVerify(t *testing.T) {
	dir := t.TempDir()
	book := writeBook(t, dir, true)
	longCSV := filepath.Join(dir, "out", "long.csv")
	longParquet := filepath.Join(dir, "out", "long.parquet")
	longDB := filepath.Join(dir, "out", "long.db")
	report := filepath.Join(dir, "out", "report.json")
	metrics := filepath.Join(dir, "out", "normalize.prom")

	out, err := execute(t, "normalize", book,
		"--output-csv", longCSV,
		"--parquet", longParquet,
		"--sqlite", longDB,
		"--report", report,
		"--metrics-file", metrics,
		"--verify",
		"--log-level", "error",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "SINIESTROS AÑO REGIÓN:")
	assert.Contains(t, out, "OK: 4 rows")
	assert.Contains(t, out, "OK: 3 rows")
	assert.Contains(t, out, "NOTAS:")
	assert.Contains(t, out, "SKIP: could not normalize automatically")
	assert.Contains(t, out, "Rows: 7\n")
	assert.Contains(t, out, "Regions (2): CUSCO, LIMA")
	assert.Contains(t, out, "Years: 2019 - 2020")
	assert.Contains(t, out, "siniestros_total")
	assert.Contains(t, out, "Top metrics:")

	for _, p := range []string{longCSV, longParquet, longDB, report, metrics} {
		assert.FileExists(t, p)
	}
	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `sheetnorm_sheets_processed_total{status="skip"} 1`)
	assert.Contains(t, string(prom), "sheetnorm_long_rows 7")

	wideDir := filepath.Join(dir, "wide")
	pivotMetrics := filepath.Join(dir, "out", "pivot.prom")
	out, err = execute(t, "pivot", longParquet, "--outdir", wideDir, "--metrics-file", pivotMetrics, "--log-level", "error")
	require.NoError(t, err)
	prom, err = os.ReadFile(pivotMetrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `sheetnorm_run_duration_seconds{stage="pivot"}`)
	assert.Contains(t, string(prom), `sheetnorm_last_success_timestamp_seconds{stage="pivot"}`)
	assert.Contains(t, string(prom), "sheetnorm_wide_rows 4")
	assert.Contains(t, out, "Wide table: 4 rows x 5 columns")

	wideCSV, err := os.ReadFile(filepath.Join(wideDir, "siniestros_normalizado_pivot.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"year,region,siniestros_por_tipo__choque,siniestros_por_tipo__despiste,siniestros_total__total\n"+
			"2019,CUSCO,,,10\n"+
			"2019,LIMA,5,6,100\n"+
			"2020,CUSCO,,,12\n"+
			"2020,LIMA,7,,120\n",
		string(wideCSV))
	assert.FileExists(t, filepath.Join(wideDir, "siniestros_normalizado_pivot.parquet"))

	out, err = execute(t, "pivot", longCSV, "--outdir", wideDir, "--base-name", "filled", "--fill-missing-zero", "--log-level", "error")
	require.NoError(t, err)
	filled, err := os.ReadFile(filepath.Join(wideDir, "filled.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(filled), "2019,CUSCO,0,0,10\n")
	assert.Contains(t, out, "Wide table: 4 rows x 5 columns")

	out, err = execute(t, "verify", longDB, "--sample", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Rows: 7\n")
	assert.Contains(t, out, "Sample:")
}

func TestNormalize_NothingNormalized(t *testing.T) {
	dir := t.TempDir()
	book := writeBook(t, dir, false)
	report := filepath.Join(dir, "report.json")
	longCSV := filepath.Join(dir, "long.csv")

	out, err := execute(t, "normalize", book, "--output-csv", longCSV, "--parquet", "", "--report", report, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sheet could be normalized")

	// the per-sheet log and the report survive the fatal path
	assert.Contains(t, out, "NOTAS:")
	assert.Contains(t, out, "SKIP:")
	assert.FileExists(t, report)
	assert.NoFileExists(t, longCSV)
}

func TestNormalize_MissingFile(t *testing.T) {
	_, err := execute(t, "normalize", filepath.Join(t.TempDir(), "absent.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestNormalize_InvalidYearFlags(t *testing.T) {
	book := writeBook(t, t.TempDir(), true)

	_, err := execute(t, "normalize", book, "--year-min", "2050", "--year-max", "2000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YearMax must be >= YearMin")
}

func TestPivot_UnsupportedFormat(t *testing.T) {
	_, err := execute(t, "pivot", filepath.Join(t.TempDir(), "long.xlsx"), "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported table format")
}
