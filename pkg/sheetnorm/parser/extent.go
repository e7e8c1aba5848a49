package parser

import (
	"fmt"

	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
	"github.com/xuri/excelize/v2"
)

// Extent describes the used area of a grid.
type Extent struct {
	// Range is the bounding box in A1 notation, empty for an empty grid.
	Range string
	// NonEmpty is the number of non-missing cells inside the box.
	NonEmpty int
}

// SheetExtent returns the bounding box of the non-missing cells of a grid.
func SheetExtent(g models.Grid) Extent {
	minRow, maxRow, minCol, maxCol := findDataBounds(g)
	if minRow < 0 {
		return Extent{}
	}

	startCell, _ := excelize.CoordinatesToCellName(minCol+1, minRow+1)
	endCell, _ := excelize.CoordinatesToCellName(maxCol+1, maxRow+1)

	return Extent{
		Range:    fmt.Sprintf("%s:%s", startCell, endCell),
		NonEmpty: countNonEmptyCells(g, minRow, maxRow, minCol, maxCol),
	}
}

// findDataBounds finds the bounding box of non-missing cells.
func findDataBounds(g models.Grid) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range g {
		for colIdx, cell := range row {
			if cell == nil {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if maxRow < 0 || rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if maxCol < 0 || colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}

	return
}

// countNonEmptyCells counts non-missing cells within bounds.
func countNonEmptyCells(g models.Grid, minRow, maxRow, minCol, maxCol int) int {
	count := 0
	for rowIdx := minRow; rowIdx <= maxRow && rowIdx < len(g); rowIdx++ {
		row := g[rowIdx]
		for colIdx := minCol; colIdx <= maxCol && colIdx < len(row); colIdx++ {
			if row[colIdx] != nil {
				count++
			}
		}
	}
	return count
}
