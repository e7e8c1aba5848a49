// Package observability exposes run metrics as a prometheus textfile.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
)

const namespace = "sheetnorm"

// Metrics holds the prometheus collectors of one CLI run.
type Metrics struct {
	registry *prometheus.Registry

	SheetsProcessed *prometheus.CounterVec // labels: status={ok,ok_generic_region,ok_generic_national,skip,error}
	SheetRows       prometheus.Counter
	LongRows        prometheus.Gauge
	WideRows        prometheus.Gauge
	WideColumns     prometheus.Gauge
	RunDuration     *prometheus.GaugeVec // labels: stage={normalize,pivot}
	LastSuccess     *prometheus.GaugeVec // labels: stage={normalize,pivot}
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SheetsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_processed_total",
			Help:      "Sheets processed by outcome.",
		}, []string{"status"}),
		SheetRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheet_rows_total",
			Help:      "Long rows produced by the sheet parsers.",
		}),
		LongRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "long_rows",
			Help:      "Rows in the final long table.",
		}),
		WideRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wide_rows",
			Help:      "Rows in the wide pivot table.",
		}),
		WideColumns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wide_columns",
			Help:      "Metric columns in the wide pivot table.",
		}),
		RunDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run per stage.",
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run per stage.",
		}, []string{"stage"}),
	}

	m.registry.MustRegister(
		m.SheetsProcessed,
		m.SheetRows,
		m.LongRows,
		m.WideRows,
		m.WideColumns,
		m.RunDuration,
		m.LastSuccess,
	)
	return m
}

// SheetProcessed records one per-sheet log entry.
func (m *Metrics) SheetProcessed(entry models.SheetLog) {
	m.SheetsProcessed.WithLabelValues(string(entry.Status)).Inc()
	m.SheetRows.Add(float64(entry.Rows))
}

// ObserveReport records the outcome of a normalize run.
func (m *Metrics) ObserveReport(r *models.Report, ok bool) {
	m.LongRows.Set(float64(r.Rows))
	m.observeStage("normalize", r.StartedAt, r.Duration, ok)
}

// ObservePivot records the timing and outcome of a pivot run.
func (m *Metrics) ObservePivot(startedAt time.Time, d time.Duration, ok bool) {
	m.observeStage("pivot", startedAt, d, ok)
}

func (m *Metrics) observeStage(stage string, startedAt time.Time, d time.Duration, ok bool) {
	m.RunDuration.WithLabelValues(stage).Set(d.Seconds())
	if ok {
		m.LastSuccess.WithLabelValues(stage).Set(float64(startedAt.Add(d).Unix()))
	}
}

// ObserveWide records the shape of a pivot result.
func (m *Metrics) ObserveWide(w *models.WideTable) {
	m.WideRows.Set(float64(len(w.Rows)))
	m.WideColumns.Set(float64(len(w.Columns)))
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
