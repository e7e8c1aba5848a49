package sheetnorm

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/parser"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/slug"
	"github.com/xuri/excelize/v2"
)

// fallbackStep is one generic attempt for sheets without a handler.
type fallbackStep struct {
	status models.SheetStatus
	layout Layout
}

// fallbackChain is tried in order until an attempt yields rows.
var fallbackChain = []fallbackStep{
	{status: models.StatusGenericRegion, layout: LayoutYearCategoryByRegion},
	{status: models.StatusGenericNational, layout: LayoutYearCategoryNational},
}

// Normalize reads a workbook and normalizes every sheet into one long table.
// The report is returned even when err is ErrNothingNormalized.
func Normalize(path string, opts Options) (*models.LongTable, *models.Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return NormalizeFile(f, filepath.Base(path), opts)
}

// NormalizeFile normalizes the sheets of an open workbook in file order.
func NormalizeFile(f *excelize.File, bookName string, opts Options) (*models.LongTable, *models.Report, error) {
	opts = opts.withDefaults()

	startedAt := opts.Clock.Now()
	report := &models.Report{
		RunID:     uuid.NewString(),
		BookName:  bookName,
		StartedAt: startedAt,
	}
	logger := opts.Logger.With(slog.String("run_id", report.RunID), slog.String("book", bookName))

	table := &models.LongTable{}
	for _, sheetName := range f.GetSheetList() {
		recs, entry := normalizeSheet(f, sheetName, opts)
		report.Sheets = append(report.Sheets, entry)
		opts.Observer.SheetProcessed(entry)

		l := logger.With(slog.String("sheet", sheetName), slog.String("status", string(entry.Status)))
		if entry.Status.Succeeded() {
			table.Append(recs...)
			l.Debug("sheet normalized", slog.String("strategy", entry.Strategy), slog.Int("rows", entry.Rows))
		} else {
			l.Warn("sheet not normalized", slog.String("reason", entry.Reason))
		}
	}

	final := finalize(table)
	report.Rows = final.Len()
	report.Duration = opts.Clock.Since(startedAt)

	if final.Len() == 0 {
		logger.Error("nothing normalized", slog.Int("sheets", len(report.Sheets)))
		return nil, report, ErrNothingNormalized
	}
	logger.Info("workbook normalized",
		slog.Int("sheets", len(report.Sheets)),
		slog.Int("failed", len(report.Failed())),
		slog.Int("rows", report.Rows))
	return final, report, nil
}

// normalizeSheet runs the explicit handler of a sheet, or the fallback
// chain when none is registered.
func normalizeSheet(f *excelize.File, sheetName string, opts Options) ([]models.LongRecord, models.SheetLog) {
	entry := models.SheetLog{Sheet: sheetName}

	grid, err := parser.ReadGrid(f, sheetName)
	if err != nil {
		entry.Status = models.StatusError
		entry.Reason = NewSheetError(sheetName, "read", err).Error()
		return nil, entry
	}
	ext := parser.SheetExtent(grid)
	entry.Extent = ext.Range
	entry.Cells = ext.NonEmpty

	if h, ok := opts.Handlers.Lookup(sheetName); ok {
		recs, err := h.Parse(grid, opts.Years, opts.DefaultRegion)
		if err != nil {
			entry.Status = models.StatusError
			entry.Strategy = string(h.Layout)
			entry.Reason = err.Error()
			return nil, entry
		}
		entry.Status = models.StatusOK
		entry.Strategy = string(h.Layout)
		entry.Rows = len(recs)
		return recs, entry
	}

	recs, step, failures := runFallback(grid, sheetName, opts)
	if step == nil {
		reasons := make([]string, len(failures))
		for i, e := range failures {
			reasons[i] = fmt.Sprintf("%s: %v", e.Strategy, e.Err)
		}
		entry.Status = models.StatusSkipped
		entry.Reason = strings.Join(reasons, " / ")
		return nil, entry
	}
	entry.Status = step.status
	entry.Strategy = string(step.layout)
	entry.Rows = len(recs)
	return recs, entry
}

// genericHandler builds the handler a fallback step uses for a sheet. The
// metric and dimension name both come from the sheet title.
func genericHandler(sheetName string, layout Layout) Handler {
	label := slug.Make(sheetName)
	return NewHandler(layout, label, label)
}

// runFallback tries each step of the fallback chain. It returns the rows and
// step of the first attempt that yields rows, or a nil step and one error per
// failed attempt.
func runFallback(g models.Grid, sheetName string, opts Options) ([]models.LongRecord, *fallbackStep, []*SheetError) {
	var failures []*SheetError
	for i := range fallbackChain {
		step := &fallbackChain[i]
		recs, err := genericHandler(sheetName, step.layout).Parse(g, opts.Years, opts.DefaultRegion)
		if err == nil && len(recs) == 0 {
			err = ErrNoRows
		}
		if err != nil {
			failures = append(failures, NewSheetError(sheetName, string(step.layout), err))
			continue
		}
		return recs, step, nil
	}
	return nil, nil, failures
}

// finalize re-normalizes region labels across all sheets and drops rows
// left without a region.
func finalize(t *models.LongTable) *models.LongTable {
	out := &models.LongTable{Records: make([]models.LongRecord, 0, t.Len())}
	for _, r := range t.Records {
		region, ok := parser.CleanRegion(r.Region)
		if !ok {
			continue
		}
		r.Region = region
		out.Append(r)
	}
	return out
}
