package sheetnorm

import (
	"errors"
	"fmt"
)

// ErrNothingNormalized indicates that no sheet of the workbook produced rows.
var ErrNothingNormalized = errors.New("no sheet could be normalized")

// ErrNoRows indicates a fallback attempt parsed the sheet but found no rows.
var ErrNoRows = errors.New("no rows produced")

// ErrUnknownLayout indicates a handler names a layout that does not exist.
var ErrUnknownLayout = errors.New("unknown layout")

// SheetError represents a failure to normalize one sheet with one strategy.
type SheetError struct {
	Sheet    string
	Strategy string
	Err      error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q (%s): %v", e.Sheet, e.Strategy, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// NewSheetError creates a new SheetError.
func NewSheetError(sheet, strategy string, err error) *SheetError {
	return &SheetError{
		Sheet:    sheet,
		Strategy: strategy,
		Err:      err,
	}
}
