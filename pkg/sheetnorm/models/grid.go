// Package models defines the data structures shared by the normalizer,
// the pivoter and the output writers.
package models

// Grid is a raw sheet as read from the workbook, indexed [row][col] from 0.
// A nil cell is missing. Other cells hold int64, float64 or string values.
// Rows may have different lengths.
type Grid [][]interface{}

// Width returns the length of the longest row.
func (g Grid) Width() int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Cell returns the cell at (row, col), or nil when out of bounds.
func (g Grid) Cell(row, col int) interface{} {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return nil
	}
	return g[row][col]
}
