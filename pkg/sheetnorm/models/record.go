package models

import "sort"

// LongColumns is the column order of the canonical long table.
var LongColumns = []string{"year", "region", "metric", "dim_name", "dim_value", "value"}

// LongRecord is one row of the canonical long table.
type LongRecord struct {
	// Year is the observation year.
	Year int `json:"year"`
	// Region is the trimmed, upper-cased region label.
	Region string `json:"region"`
	// Metric names the measured quantity (e.g. "siniestros_total").
	Metric string `json:"metric"`
	// DimName names the secondary dimension, nil for dimensionless metrics.
	DimName *string `json:"dim_name"`
	// DimValue is the category under DimName, nil when DimName is nil.
	DimValue *string `json:"dim_value"`
	// Value is the measured quantity.
	Value float64 `json:"value"`
}

// HasDimension reports whether the record carries a dimension.
func (r LongRecord) HasDimension() bool {
	return r.DimName != nil || r.DimValue != nil
}

// LongTable is the canonical long table. Duplicate rows are kept.
type LongTable struct {
	Records []LongRecord `json:"records"`
}

// Len returns the number of records.
func (t *LongTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Append adds records to the end of the table.
func (t *LongTable) Append(recs ...LongRecord) {
	t.Records = append(t.Records, recs...)
}

// Metrics returns the distinct metric labels in sorted order.
func (t *LongTable) Metrics() []string {
	seen := make(map[string]struct{})
	for _, r := range t.Records {
		seen[r.Metric] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// MetricCount is a metric label with its row count.
type MetricCount struct {
	Metric string `json:"metric"`
	Rows   int    `json:"rows"`
}

// MetricCounts returns row counts per metric, most frequent first and
// ties broken by label.
func (t *LongTable) MetricCounts() []MetricCount {
	counts := make(map[string]int)
	for _, r := range t.Records {
		counts[r.Metric]++
	}
	out := make([]MetricCount, 0, len(counts))
	for m, n := range counts {
		out = append(out, MetricCount{Metric: m, Rows: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rows != out[j].Rows {
			return out[i].Rows > out[j].Rows
		}
		return out[i].Metric < out[j].Metric
	})
	return out
}

// Regions returns the distinct regions in sorted order.
func (t *LongTable) Regions() []string {
	seen := make(map[string]struct{})
	for _, r := range t.Records {
		seen[r.Region] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for reg := range seen {
		out = append(out, reg)
	}
	sort.Strings(out)
	return out
}

// YearRange returns the smallest and largest year. ok is false for an
// empty table.
func (t *LongTable) YearRange() (min, max int, ok bool) {
	for i, r := range t.Records {
		if i == 0 || r.Year < min {
			min = r.Year
		}
		if i == 0 || r.Year > max {
			max = r.Year
		}
	}
	return min, max, len(t.Records) > 0
}
