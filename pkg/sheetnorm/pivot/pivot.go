// Package pivot reshapes the canonical long table into one wide row per
// (year, region).
package pivot

import (
	"errors"
	"sort"

	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/slug"
)

// Separator joins the metric slug and the dimension-value slug.
const Separator = "__"

// ErrEmptyTable indicates there is nothing to pivot.
var ErrEmptyTable = errors.New("long table is empty")

// Options configures the pivot.
type Options struct {
	// FillMissingZero records absent (year, region, column) cells as 0
	// instead of null. It never adds or removes rows.
	FillMissingZero bool
}

// block is the pivot of a single metric: summed cells per (year, region)
// and column.
type block struct {
	columns map[string]struct{}
	cells   map[models.WideKey]map[string]float64
}

func newBlock() *block {
	return &block{
		columns: make(map[string]struct{}),
		cells:   make(map[models.WideKey]map[string]float64),
	}
}

func (b *block) add(key models.WideKey, col string, v float64) {
	b.columns[col] = struct{}{}
	row, ok := b.cells[key]
	if !ok {
		row = make(map[string]float64)
		b.cells[key] = row
	}
	row[col] += v
}

// pivotMetric groups the records of one metric by (year, region) and
// dimension-value slug and sums their values. Metrics without any dimension
// pivot under the single column "total". Column names carry the metric slug
// prefix.
func pivotMetric(recs []models.LongRecord, metric string) *block {
	dimensionless := true
	for _, r := range recs {
		if r.HasDimension() {
			dimensionless = false
			break
		}
	}

	prefix := slug.Make(metric) + Separator
	b := newBlock()
	for _, r := range recs {
		col := slug.Total
		if !dimensionless {
			col = slug.MakePtr(r.DimValue)
		}
		b.add(models.WideKey{Year: r.Year, Region: r.Region}, prefix+col, r.Value)
	}
	return b
}

// outerJoin merges blocks on (year, region). Every key present in any block
// yields a row. Columns with the same name are summed.
func outerJoin(blocks []*block) *block {
	out := newBlock()
	for _, b := range blocks {
		for col := range b.columns {
			out.columns[col] = struct{}{}
		}
		for key, row := range b.cells {
			for col, v := range row {
				out.add(key, col, v)
			}
		}
	}
	return out
}

// Wide pivots the long table. Rows are sorted by year then region and
// columns alphabetically. Absent cells are nil unless FillMissingZero is set.
func Wide(t *models.LongTable, opts Options) (*models.WideTable, error) {
	if t.Len() == 0 {
		return nil, ErrEmptyTable
	}

	byMetric := make(map[string][]models.LongRecord)
	for _, r := range t.Records {
		byMetric[r.Metric] = append(byMetric[r.Metric], r)
	}

	var blocks []*block
	for _, m := range t.Metrics() {
		blocks = append(blocks, pivotMetric(byMetric[m], m))
	}
	joined := outerJoin(blocks)

	wide := &models.WideTable{Columns: make([]string, 0, len(joined.columns))}
	for col := range joined.columns {
		wide.Columns = append(wide.Columns, col)
	}
	sort.Strings(wide.Columns)

	keys := make([]models.WideKey, 0, len(joined.cells))
	for k := range joined.cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	wide.Rows = make([]models.WideRow, len(keys))
	for i, k := range keys {
		src := joined.cells[k]
		cells := make(map[string]*float64, len(wide.Columns))
		for _, col := range wide.Columns {
			if v, ok := src[col]; ok {
				v := v
				cells[col] = &v
			} else if opts.FillMissingZero {
				zero := 0.0
				cells[col] = &zero
			}
		}
		wide.Rows[i] = models.WideRow{WideKey: k, Cells: cells}
	}
	return wide, nil
}
