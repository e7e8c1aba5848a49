// Package output writes and reads the long and wide tables.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// createFile creates path and its parent directories.
func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.Create(path)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteLongCSV writes the long table as UTF-8 CSV. Null dimensions are
// written as empty fields.
func WriteLongCSV(path string, t *models.LongTable) (err error) {
	file, err := createFile(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return writeLongCSV(file, t)
}

func writeLongCSV(w io.Writer, t *models.LongTable) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(models.LongColumns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, r := range t.Records {
		record := []string{
			strconv.Itoa(r.Year),
			r.Region,
			r.Metric,
			optional(r.DimName),
			optional(r.DimValue),
			formatValue(r.Value),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadLongCSV reads a long table written by WriteLongCSV. Columns are
// matched by header name; dim_name and dim_value may be absent.
func ReadLongCSV(path string) (*models.LongTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return readLongCSV(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
}

func readLongCSV(r io.Reader) (*models.LongTable, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"year", "region", "metric", "value"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	nullable := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	t := &models.LongTable{}
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		year, err := parseYear(field(rec, "year"))
		if err != nil {
			return nil, fmt.Errorf("line %d: year: %w", line, err)
		}
		value, err := strconv.ParseFloat(field(rec, "value"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: value: %w", line, err)
		}
		t.Append(models.LongRecord{
			Year:     year,
			Region:   field(rec, "region"),
			Metric:   field(rec, "metric"),
			DimName:  nullable(field(rec, "dim_name")),
			DimValue: nullable(field(rec, "dim_value")),
			Value:    value,
		})
	}
	return t, nil
}

// parseYear accepts "2015" and widened forms such as "2015.0".
func parseYear(s string) (int, error) {
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// WriteWideCSV writes the wide table as UTF-8 CSV with columns year, region
// and the sorted metric columns. Null cells are empty fields.
func WriteWideCSV(path string, w *models.WideTable) (err error) {
	file, err := createFile(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(w.Header()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range w.Rows {
		record := make([]string, 0, len(w.Columns)+2)
		record = append(record, strconv.Itoa(row.Year), row.Region)
		for _, col := range w.Columns {
			if v := row.Cells[col]; v != nil {
				record = append(record, formatValue(*v))
			} else {
				record = append(record, "")
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
