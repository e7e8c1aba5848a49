package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const parquetParallelism = 4

// longRow is the parquet schema of the long table.
type longRow struct {
	Year     int64   `parquet:"name=year, type=INT64"`
	Region   string  `parquet:"name=region, type=BYTE_ARRAY, convertedtype=UTF8"`
	Metric   string  `parquet:"name=metric, type=BYTE_ARRAY, convertedtype=UTF8"`
	DimName  *string `parquet:"name=dim_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	DimValue *string `parquet:"name=dim_value, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Value    float64 `parquet:"name=value, type=DOUBLE"`
}

func createParquetFile(path string) (source.ParquetFile, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("create file %s: %w", path, err)
	}
	return fw, nil
}

// WriteLongParquet writes the long table as a SNAPPY-compressed parquet file.
func WriteLongParquet(path string, t *models.LongTable) (err error) {
	fw, err := createParquetFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close file %s: %w", path, cerr))
		}
	}()

	pw, err := writer.NewParquetWriter(fw, new(longRow), parquetParallelism)
	if err != nil {
		return fmt.Errorf("create writer %s: %w", path, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, r := range t.Records {
		row := longRow{
			Year:     int64(r.Year),
			Region:   r.Region,
			Metric:   r.Metric,
			DimName:  r.DimName,
			DimValue: r.DimValue,
			Value:    r.Value,
		}
		if err := pw.Write(row); err != nil {
			return errors.Join(fmt.Errorf("write row %d: %w", i, err), pw.WriteStop())
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("stop writer %s: %w", path, err)
	}
	return nil
}

// ReadLongParquet reads a long table written by WriteLongParquet.
func ReadLongParquet(path string) (*models.LongTable, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(longRow), parquetParallelism)
	if err != nil {
		return nil, fmt.Errorf("create reader %s: %w", path, err)
	}
	defer pr.ReadStop()

	rows := make([]longRow, int(pr.GetNumRows()))
	if len(rows) > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	t := &models.LongTable{Records: make([]models.LongRecord, 0, len(rows))}
	for _, r := range rows {
		t.Append(models.LongRecord{
			Year:     int(r.Year),
			Region:   r.Region,
			Metric:   r.Metric,
			DimName:  r.DimName,
			DimValue: r.DimValue,
			Value:    r.Value,
		})
	}
	return t, nil
}

// wideSchema builds the parquet metadata of a wide table: the two key
// columns followed by one optional DOUBLE per metric column.
func wideSchema(w *models.WideTable) []string {
	md := []string{
		"name=year, type=INT64",
		"name=region, type=BYTE_ARRAY, convertedtype=UTF8",
	}
	for _, col := range w.Columns {
		md = append(md, fmt.Sprintf("name=%s, type=DOUBLE, repetitiontype=OPTIONAL", col))
	}
	return md
}

// WriteWideParquet writes the wide table as a SNAPPY-compressed parquet
// file. Null cells are written as parquet nulls.
func WriteWideParquet(path string, w *models.WideTable) (err error) {
	fw, err := createParquetFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close file %s: %w", path, cerr))
		}
	}()

	pw, err := writer.NewCSVWriter(wideSchema(w), fw, parquetParallelism)
	if err != nil {
		return fmt.Errorf("create writer %s: %w", path, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, row := range w.Rows {
		rec := make([]*string, 0, len(w.Columns)+2)
		year := strconv.Itoa(row.Year)
		region := row.Region
		rec = append(rec, &year, &region)
		for _, col := range w.Columns {
			if v := row.Cells[col]; v != nil {
				s := formatValue(*v)
				rec = append(rec, &s)
			} else {
				rec = append(rec, nil)
			}
		}
		if err := pw.WriteString(rec); err != nil {
			return errors.Join(fmt.Errorf("write row %d: %w", i, err), pw.WriteStop())
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("stop writer %s: %w", path, err)
	}
	return nil
}
