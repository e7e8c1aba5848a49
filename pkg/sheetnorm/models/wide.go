package models

// WideKey identifies a row of the wide table.
type WideKey struct {
	Year   int    `json:"year"`
	Region string `json:"region"`
}

// Less orders keys by year, then region.
func (k WideKey) Less(o WideKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Region < o.Region
}

// WideRow holds the cells of one (year, region) row. Cells maps a column
// name to its value; a nil or absent entry is a null cell.
type WideRow struct {
	WideKey
	Cells map[string]*float64 `json:"cells"`
}

// WideTable is the pivoted table: one row per (year, region), one column
// per metric and dimension value.
type WideTable struct {
	// Columns lists the metric columns in sorted order. The key columns
	// year and region are implicit.
	Columns []string `json:"columns"`
	// Rows is sorted by year, then region.
	Rows []WideRow `json:"rows"`
}

// Header returns the full column list including the key columns.
func (w *WideTable) Header() []string {
	return append([]string{"year", "region"}, w.Columns...)
}

// Value returns the cell of row i under column col.
func (w *WideTable) Value(i int, col string) (float64, bool) {
	v := w.Rows[i].Cells[col]
	if v == nil {
		return 0, false
	}
	return *v, true
}
