// Package sheetnorm normalizes multi-sheet workbooks of irregular layouts
// into one canonical long table.
package sheetnorm

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/parser"
)

// DefaultRegion labels rows of sheets that carry no region column.
const DefaultRegion = "PERÚ"

// Observer is notified after every sheet.
type Observer interface {
	SheetProcessed(entry models.SheetLog)
}

type nopObserver struct{}

func (nopObserver) SheetProcessed(models.SheetLog) {}

// Options configures normalization.
type Options struct {
	// Years bounds accepted years. The zero value means parser.DefaultYearRange.
	Years parser.YearRange
	// DefaultRegion labels rows of national sheets. Empty means DefaultRegion.
	DefaultRegion string
	// Handlers maps sheet names to explicit handlers. Nil means
	// DefaultHandlers(); use an empty registry to force the fallback chain.
	Handlers Registry
	// Logger receives per-sheet progress. Nil means slog.Default().
	Logger *slog.Logger
	// Clock stamps the run report. Nil means the real clock.
	Clock clockwork.Clock
	// Observer is notified after every sheet. Optional.
	Observer Observer
}

// DefaultOptions returns default normalization options.
func DefaultOptions() Options {
	return Options{
		Years:         parser.DefaultYearRange,
		DefaultRegion: DefaultRegion,
		Handlers:      DefaultHandlers(),
	}
}

func (o Options) withDefaults() Options {
	if o.Years == (parser.YearRange{}) {
		o.Years = parser.DefaultYearRange
	}
	if o.DefaultRegion == "" {
		o.DefaultRegion = DefaultRegion
	}
	if o.Handlers == nil {
		o.Handlers = DefaultHandlers()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	return o
}
