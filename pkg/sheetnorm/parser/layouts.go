package parser

import (
	"errors"
	"fmt"

	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
)

var (
	// ErrRowOutOfRange indicates a header row lies beyond the sheet.
	ErrRowOutOfRange = errors.New("row out of range")
	// ErrColumnOutOfRange indicates the region column lies beyond the sheet.
	ErrColumnOutOfRange = errors.New("column out of range")
	// ErrNoValueColumns indicates no column carries a usable header.
	ErrNoValueColumns = errors.New("no value columns")
	// ErrMissingLabel indicates a required metric or region label is empty.
	ErrMissingLabel = errors.New("missing label")
)

// RegionYearParams locates the parts of a single-header region × year sheet.
type RegionYearParams struct {
	// HeaderRow is the 0-based row holding one year per column.
	HeaderRow int
	// RegionCol is the 0-based column holding region labels.
	RegionCol int
	// Metric is assigned to every record.
	Metric string
	// Years bounds accepted years; the zero value means DefaultYearRange.
	Years YearRange
}

// YearCategoryParams locates the parts of a two-row-header sheet where one
// row gives the year of each column and the next gives a category.
type YearCategoryParams struct {
	YearRow     int
	CategoryRow int
	// StartRow is the first data row.
	StartRow int
	// RegionCol is the region column. Ignored by the national layout.
	RegionCol int
	// DimName is assigned to every record; categories become dim values.
	DimName string
	Metric  string
	// DefaultRegion labels every row of the national layout.
	DefaultRegion string
	Years         YearRange
}

func resolveYears(r YearRange) YearRange {
	if r == (YearRange{}) {
		return DefaultYearRange
	}
	return r
}

func checkRow(g models.Grid, row int, what string) error {
	if row < 0 || row >= len(g) {
		return fmt.Errorf("%w: %s %d, sheet has %d rows", ErrRowOutOfRange, what, row, len(g))
	}
	return nil
}

// ParseRegionYearSimple unpivots a sheet with one header row of years and one
// data row per region. Columns whose header is not a valid year are dropped;
// cells without a numeric value are skipped.
func ParseRegionYearSimple(g models.Grid, p RegionYearParams) ([]models.LongRecord, error) {
	if p.Metric == "" {
		return nil, fmt.Errorf("%w: metric", ErrMissingLabel)
	}
	if err := checkRow(g, p.HeaderRow, "header row"); err != nil {
		return nil, err
	}
	width := g.Width()
	if p.RegionCol < 0 || p.RegionCol >= width {
		return nil, fmt.Errorf("%w: region column %d, sheet has %d columns", ErrColumnOutOfRange, p.RegionCol, width)
	}

	years := resolveYears(p.Years)
	type yearColumn struct {
		col  int
		year int
	}
	var cols []yearColumn
	for c := 0; c < width; c++ {
		if c == p.RegionCol {
			continue
		}
		if y, ok := years.Year(g.Cell(p.HeaderRow, c)); ok {
			cols = append(cols, yearColumn{col: c, year: y})
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: header row %d has no year", ErrNoValueColumns, p.HeaderRow)
	}

	type regionRow struct {
		row    int
		region string
	}
	var rows []regionRow
	for r := p.HeaderRow + 1; r < len(g); r++ {
		if region, ok := CleanRegion(g.Cell(r, p.RegionCol)); ok {
			rows = append(rows, regionRow{row: r, region: region})
		}
	}

	// Column-major, like an unpivot over the year columns.
	var out []models.LongRecord
	for _, c := range cols {
		for _, r := range rows {
			v, ok := ToValue(g.Cell(r.row, c.col))
			if !ok {
				continue
			}
			out = append(out, models.LongRecord{
				Year:   c.year,
				Region: r.region,
				Metric: p.Metric,
				Value:  v,
			})
		}
	}
	return out, nil
}

// categoryColumn is a data column with its composite (year, category) label.
type categoryColumn struct {
	col      int
	year     int
	category string
}

// yearCategoryColumns builds the composite label of every column in
// [from, width). The year row is forward-filled so merged year cells cover
// all of their categories. Columns without a valid year or category are left
// out.
func yearCategoryColumns(g models.Grid, p YearCategoryParams, from, width int) []categoryColumn {
	years := resolveYears(p.Years)
	var (
		out  []categoryColumn
		last interface{}
	)
	for c := 0; c < width; c++ {
		if v := g.Cell(p.YearRow, c); v != nil {
			last = v
		}
		if c < from {
			continue
		}
		y, ok := years.Year(last)
		if !ok {
			continue
		}
		cat, ok := CategoryLabel(g.Cell(p.CategoryRow, c))
		if !ok {
			continue
		}
		out = append(out, categoryColumn{col: c, year: y, category: cat})
	}
	return out
}

func checkYearCategory(g models.Grid, p YearCategoryParams) error {
	if p.Metric == "" {
		return fmt.Errorf("%w: metric", ErrMissingLabel)
	}
	if err := checkRow(g, p.YearRow, "year row"); err != nil {
		return err
	}
	return checkRow(g, p.CategoryRow, "category row")
}

// stack flattens the value block of the given rows and columns into long
// records, row by row.
func stack(g models.Grid, p YearCategoryParams, rowRegions map[int]string, rowOrder []int, cols []categoryColumn) []models.LongRecord {
	var out []models.LongRecord
	for _, r := range rowOrder {
		region := rowRegions[r]
		for _, c := range cols {
			v, ok := ToValue(g.Cell(r, c.col))
			if !ok {
				continue
			}
			dimName := p.DimName
			dimValue := c.category
			out = append(out, models.LongRecord{
				Year:     c.year,
				Region:   region,
				Metric:   p.Metric,
				DimName:  &dimName,
				DimValue: &dimValue,
				Value:    v,
			})
		}
	}
	return out
}

// ParseYearCategoryByRegion parses a two-row-header sheet with a region
// column. Value columns are the columns right of the region column; rows
// from StartRow on whose region cell is a non-empty string are kept.
func ParseYearCategoryByRegion(g models.Grid, p YearCategoryParams) ([]models.LongRecord, error) {
	if err := checkYearCategory(g, p); err != nil {
		return nil, err
	}
	width := g.Width()
	if p.RegionCol < 0 || p.RegionCol >= width {
		return nil, fmt.Errorf("%w: region column %d, sheet has %d columns", ErrColumnOutOfRange, p.RegionCol, width)
	}
	if p.RegionCol+1 >= width {
		return nil, fmt.Errorf("%w: nothing right of region column %d", ErrNoValueColumns, p.RegionCol)
	}

	cols := yearCategoryColumns(g, p, p.RegionCol+1, width)

	regions := make(map[int]string)
	var order []int
	for r := p.StartRow; r < len(g); r++ {
		if region, ok := CleanRegion(g.Cell(r, p.RegionCol)); ok {
			regions[r] = region
			order = append(order, r)
		}
	}

	return stack(g, p, regions, order, cols), nil
}

// ParseYearCategoryNational parses a two-row-header sheet without a region
// column. Every column is a candidate value column and every row from
// StartRow on is labelled with DefaultRegion.
func ParseYearCategoryNational(g models.Grid, p YearCategoryParams) ([]models.LongRecord, error) {
	if err := checkYearCategory(g, p); err != nil {
		return nil, err
	}
	region, ok := CleanRegion(p.DefaultRegion)
	if !ok {
		return nil, fmt.Errorf("%w: default region", ErrMissingLabel)
	}
	width := g.Width()
	if width == 0 {
		return nil, fmt.Errorf("%w: empty sheet", ErrNoValueColumns)
	}

	cols := yearCategoryColumns(g, p, 0, width)

	regions := make(map[int]string)
	var order []int
	for r := p.StartRow; r < len(g); r++ {
		regions[r] = region
		order = append(order, r)
	}

	return stack(g, p, regions, order, cols), nil
}
