package output

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

func strPtr(s string) *string { return &s }

func f64Ptr(v float64) *float64 { return &v }

func sampleTable() *models.LongTable {
	return &models.LongTable{Records: []models.LongRecord{
		{Year: 2019, Region: "LIMA", Metric: "siniestros_total", Value: 100},
		{Year: 2020, Region: "LIMA", Metric: "siniestros_total", Value: 120.5},
		{Year: 2020, Region: "PERÚ", Metric: "siniestros_por_causa", DimName: strPtr("causa"), DimValue: strPtr("Exceso de velocidad"), Value: 7},
		{Year: 2020, Region: "PERÚ", Metric: "siniestros_por_causa", DimName: strPtr("causa"), DimValue: strPtr("Ebriedad, conductor"), Value: 3},
		// duplicate rows survive
		{Year: 2020, Region: "PERÚ", Metric: "siniestros_por_causa", DimName: strPtr("causa"), DimValue: strPtr("Ebriedad, conductor"), Value: 3},
	}}
}

func TestLongCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "long.csv")
	want := sampleTable()

	require.NoError(t, WriteLongCSV(path, want))
	got, err := ReadLongCSV(path)
	require.NoError(t, err)

	assert.ElementsMatch(t, want.Records, got.Records)
}

func TestLongCSV_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLongCSV(&buf, sampleTable()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "year,region,metric,dim_name,dim_value,value", lines[0])
	assert.Equal(t, "2019,LIMA,siniestros_total,,,100", lines[1])
	assert.Equal(t, "2020,LIMA,siniestros_total,,,120.5", lines[2])
	assert.Equal(t, `2020,PERÚ,siniestros_por_causa,causa,"Ebriedad, conductor",3`, lines[4])
}

func TestReadLongCSV_ToleratesBOMAndWidenedYears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.csv")
	content := "\ufeffregion,year,metric,value\nLIMA,2015.0,m,1.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, err := ReadLongCSV(path)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	r := got.Records[0]
	assert.Equal(t, 2015, r.Year)
	assert.Equal(t, "LIMA", r.Region)
	assert.Nil(t, r.DimName)
	assert.Nil(t, r.DimValue)
	assert.Equal(t, 1.5, r.Value)
}

func TestReadLongCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing column", "year,region,value\n2020,LIMA,1\n", `missing column "metric"`},
		{"bad year", "year,region,metric,value\nxx,LIMA,m,1\n", "line 2: year"},
		{"bad value", "year,region,metric,value\n2020,LIMA,m,n/a\n", "line 2: value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readLongCSV(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func sampleWide() *models.WideTable {
	return &models.WideTable{
		Columns: []string{"a__total", "b__x"},
		Rows: []models.WideRow{
			{WideKey: models.WideKey{Year: 2019, Region: "LIMA"}, Cells: map[string]*float64{"a__total": f64Ptr(1)}},
			{WideKey: models.WideKey{Year: 2020, Region: "LIMA"}, Cells: map[string]*float64{"a__total": f64Ptr(2.5), "b__x": f64Ptr(3)}},
		},
	}
}

func TestWriteWideCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.csv")
	require.NoError(t, WriteWideCSV(path, sampleWide()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "year,region,a__total,b__x\n2019,LIMA,1,\n2020,LIMA,2.5,3\n", string(data))
}

func TestLongParquet_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.parquet")
	want := sampleTable()

	require.NoError(t, WriteLongParquet(path, want))
	got, err := ReadLongParquet(path)
	require.NoError(t, err)

	assert.ElementsMatch(t, want.Records, got.Records)
}

func TestReadLongParquet_MissingFile(t *testing.T) {
	_, err := ReadLongParquet(filepath.Join(t.TempDir(), "absent.parquet"))
	assert.Error(t, err)
}

func TestWriteWideParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.parquet")
	require.NoError(t, WriteWideParquet(path, sampleWide()))

	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.Equal(t, int64(2), pr.GetNumRows())

	var columns []string
	for _, info := range pr.SchemaHandler.Infos[1:] {
		columns = append(columns, info.ExName)
	}
	assert.Equal(t, []string{"year", "region", "a__total", "b__x"}, columns)

	rows, err := pr.ReadByNumber(2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := reflect.ValueOf(rows[0])
	assert.Equal(t, int64(2019), first.FieldByName("Year").Interface())
	assert.Equal(t, "LIMA", first.FieldByName("Region").Interface())
	// absent cells stay null instead of becoming 0
	assert.True(t, first.FieldByName("B__x").IsNil())
	require.False(t, first.FieldByName("A__total").IsNil())
	assert.Equal(t, 1.0, first.FieldByName("A__total").Elem().Float())

	second := reflect.ValueOf(rows[1])
	assert.Equal(t, int64(2020), second.FieldByName("Year").Interface())
	require.False(t, second.FieldByName("A__total").IsNil())
	assert.Equal(t, 2.5, second.FieldByName("A__total").Elem().Float())
	require.False(t, second.FieldByName("B__x").IsNil())
	assert.Equal(t, 3.0, second.FieldByName("B__x").Elem().Float())
}

func TestLongSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "long.db")
	want := sampleTable()

	require.NoError(t, WriteLongSQLite(ctx, path, want))
	// a second write replaces the table
	require.NoError(t, WriteLongSQLite(ctx, path, want))

	got, err := ReadLongSQLite(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, want.Records, got.Records)
}

func TestReadLong_DispatchesOnExtension(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	want := sampleTable()

	csvPath := filepath.Join(dir, "long.csv")
	pqPath := filepath.Join(dir, "long.parquet")
	dbPath := filepath.Join(dir, "long.sqlite")
	require.NoError(t, WriteLongCSV(csvPath, want))
	require.NoError(t, WriteLongParquet(pqPath, want))
	require.NoError(t, WriteLongSQLite(ctx, dbPath, want))

	for _, path := range []string{csvPath, pqPath, dbPath} {
		got, err := ReadLong(ctx, path)
		require.NoError(t, err, path)
		assert.Equal(t, want.Len(), got.Len(), path)
	}

	_, err := ReadLong(ctx, filepath.Join(dir, "long.xlsx"))
	assert.ErrorContains(t, err, "unsupported table format")
}

func TestReportToJSON(t *testing.T) {
	r := &models.Report{
		RunID:    "run-1",
		BookName: "book.xlsx",
		Rows:     3,
		Sheets: []models.SheetLog{
			{Sheet: "A", Status: models.StatusOK, Strategy: "region_year", Rows: 3, Extent: "A1:C5", Cells: 12},
			{Sheet: "B", Status: models.StatusSkipped, Reason: "x / y"},
		},
	}

	data, err := ReportToJSON(r, false)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"run-1"`)
	assert.Contains(t, string(data), `"status":"skip"`)
	assert.Contains(t, string(data), `"reason":"x / y"`)
	assert.Contains(t, string(data), `"extent":"A1:C5","cells":12`)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteReport(path, r))
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(written), "\n  \"book_name\": \"book.xlsx\"")
}
