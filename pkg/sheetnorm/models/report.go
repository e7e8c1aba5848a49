package models

import (
	"fmt"
	"time"
)

// SheetStatus is the outcome of normalizing one sheet.
type SheetStatus string

const (
	// StatusOK means an explicit handler parsed the sheet.
	StatusOK SheetStatus = "ok"
	// StatusGenericRegion means the generic by-region fallback parsed it.
	StatusGenericRegion SheetStatus = "ok_generic_region"
	// StatusGenericNational means the generic national fallback parsed it.
	StatusGenericNational SheetStatus = "ok_generic_national"
	// StatusSkipped means every fallback attempt failed.
	StatusSkipped SheetStatus = "skip"
	// StatusError means the explicit handler or the sheet read failed.
	StatusError SheetStatus = "error"
)

// Succeeded reports whether the sheet contributed a parse result.
func (s SheetStatus) Succeeded() bool {
	return s == StatusOK || s == StatusGenericRegion || s == StatusGenericNational
}

// SheetLog records what happened to one sheet.
type SheetLog struct {
	// Sheet is the sheet name.
	Sheet string `json:"sheet"`
	// Status is the outcome.
	Status SheetStatus `json:"status"`
	// Strategy names the layout that produced the rows, if any.
	Strategy string `json:"strategy,omitempty"`
	// Rows is the number of long rows the sheet contributed.
	Rows int `json:"rows"`
	// Extent is the used range of the sheet (e.g. "A1:M40").
	Extent string `json:"extent,omitempty"`
	// Cells is the number of non-empty cells inside Extent.
	Cells int `json:"cells"`
	// Reason carries the failure text for skipped or failed sheets.
	Reason string `json:"reason,omitempty"`
}

// String renders the entry the way it is printed in the per-sheet log.
func (l SheetLog) String() string {
	switch l.Status {
	case StatusOK:
		return fmt.Sprintf("OK: %d rows", l.Rows)
	case StatusGenericRegion:
		return fmt.Sprintf("OK (generic by region): %d rows", l.Rows)
	case StatusGenericNational:
		return fmt.Sprintf("OK (generic national): %d rows", l.Rows)
	case StatusSkipped:
		return fmt.Sprintf("SKIP: could not normalize automatically (%s)", l.Reason)
	default:
		return fmt.Sprintf("ERROR: %s", l.Reason)
	}
}

// Report is the per-run log of the workbook normalizer.
type Report struct {
	// RunID identifies the run.
	RunID string `json:"run_id"`
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
	// Sheets holds one entry per sheet in workbook order.
	Sheets []SheetLog `json:"sheets"`
	// Rows is the row count of the final long table.
	Rows int `json:"rows"`
}

// Failed returns the entries of sheets that contributed nothing.
func (r *Report) Failed() []SheetLog {
	var out []SheetLog
	for _, s := range r.Sheets {
		if !s.Status.Succeeded() {
			out = append(out, s)
		}
	}
	return out
}
