// Package parser reads workbook sheets into raw grids and turns grids of
// known layouts into canonical long records.
package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
	"github.com/xuri/excelize/v2"
)

// ReadGrid reads every row of a sheet into a raw grid. Cells keep their
// stored value, not the displayed format.
func ReadGrid(f *excelize.File, sheetName string) (models.Grid, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	grid := make(models.Grid, len(rows))
	for rowIdx, row := range rows {
		cells := make([]interface{}, len(row))
		for colIdx, cellValue := range row {
			cells[colIdx] = parseValue(cellValue)
		}
		grid[rowIdx] = cells
	}

	return grid, nil
}

// parseValue attempts to parse a string value as a number.
// Returns nil for an empty cell, int64 for integers, float64 for decimals,
// or the original string.
func parseValue(s string) interface{} {
	if s == "" {
		return nil
	}
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// YearRange is the inclusive range of accepted years.
type YearRange struct {
	Min int
	Max int
}

// DefaultYearRange accepts 1990 through 2100.
var DefaultYearRange = YearRange{Min: 1990, Max: 2100}

// Contains reports whether y lies in the range.
func (r YearRange) Contains(y int) bool {
	return y >= r.Min && y <= r.Max
}

// Year coerces a cell to a year. Numeric strings and floats are accepted
// ("2008", 2015.0) and truncated toward zero. ok is false for anything
// non-numeric or outside the range.
func (r YearRange) Year(cell interface{}) (year int, ok bool) {
	f, ok := toFloat(cell)
	if !ok {
		return 0, false
	}
	y := int(math.Trunc(f))
	if !r.Contains(y) {
		return 0, false
	}
	return y, true
}

// ToYear coerces a cell to a year within DefaultYearRange.
func ToYear(cell interface{}) (int, bool) {
	return DefaultYearRange.Year(cell)
}

// CleanRegion trims and upper-cases a string cell. Missing, empty and
// non-string cells yield ok == false.
func CleanRegion(cell interface{}) (string, bool) {
	s, isString := cell.(string)
	if !isString {
		return "", false
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	return s, true
}

// ToValue coerces a cell to a numeric value. Missing and non-numeric cells
// yield ok == false.
func ToValue(cell interface{}) (float64, bool) {
	return toFloat(cell)
}

// CategoryLabel renders a category header cell as trimmed text. Numbers are
// formatted without a trailing ".0". Missing or blank cells yield ok == false.
func CategoryLabel(cell interface{}) (string, bool) {
	var s string
	switch v := cell.(type) {
	case nil:
		return "", false
	case string:
		s = v
	case int64:
		s = strconv.FormatInt(v, 10)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func toFloat(cell interface{}) (float64, bool) {
	var f float64
	switch v := cell.(type) {
	case int64:
		f = float64(v)
	case int:
		f = float64(v)
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
