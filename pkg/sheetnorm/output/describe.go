package output

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ukaji3/sheetnorm-go/pkg/sheetnorm/models"
)

// ColumnType describes one column of the long table schema.
type ColumnType struct {
	Name     string
	Type     string
	Nullable bool
}

// LongSchema is the logical schema of the long table in every format.
var LongSchema = []ColumnType{
	{Name: "year", Type: "int64"},
	{Name: "region", Type: "string"},
	{Name: "metric", Type: "string"},
	{Name: "dim_name", Type: "string", Nullable: true},
	{Name: "dim_value", Type: "string", Nullable: true},
	{Name: "value", Type: "float64"},
}

// TopMetrics is how many metric frequencies a summary lists.
const TopMetrics = 10

// Summary is the quick inspection of a long table printed by verify.
type Summary struct {
	Rows       int
	Columns    []ColumnType
	TopMetrics []models.MetricCount
	YearMin    int
	YearMax    int
	HasYears   bool
	Sample     []models.LongRecord
}

// Summarize computes a Summary with a random sample of up to sampleSize
// rows. The same seed always yields the same sample.
func Summarize(t *models.LongTable, sampleSize int, seed int64) Summary {
	s := Summary{
		Rows:    t.Len(),
		Columns: LongSchema,
	}
	counts := t.MetricCounts()
	if len(counts) > TopMetrics {
		counts = counts[:TopMetrics]
	}
	s.TopMetrics = counts
	s.YearMin, s.YearMax, s.HasYears = t.YearRange()

	if sampleSize > s.Rows {
		sampleSize = s.Rows
	}
	if sampleSize > 0 {
		idx := rand.New(rand.NewSource(seed)).Perm(s.Rows)[:sampleSize]
		sort.Ints(idx)
		for _, i := range idx {
			s.Sample = append(s.Sample, t.Records[i])
		}
	}
	return s
}

// Write prints the summary as plain text.
func (s Summary) Write(w io.Writer) error {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	fmt.Fprintf(w, "Rows: %d\n", s.Rows)
	fmt.Fprintf(w, "Columns: %s\n", strings.Join(names, ", "))

	fmt.Fprintln(w, "\nSchema:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range s.Columns {
		null := ""
		if c.Nullable {
			null = "nullable"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.Name, c.Type, null)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nTop metrics:")
	for _, m := range s.TopMetrics {
		fmt.Fprintf(w, "  %-40s %d\n", m.Metric, m.Rows)
	}

	if s.HasYears {
		fmt.Fprintf(w, "\nYears: %d - %d\n", s.YearMin, s.YearMax)
	}

	if len(s.Sample) > 0 {
		fmt.Fprintln(w, "\nSample:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  "+strings.Join(models.LongColumns, "\t"))
		for _, r := range s.Sample {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%s\n",
				r.Year, r.Region, r.Metric, orNull(r.DimName), orNull(r.DimValue),
				strconv.FormatFloat(r.Value, 'f', -1, 64))
		}
		return tw.Flush()
	}
	return nil
}

func orNull(s *string) string {
	if s == nil {
		return "<null>"
	}
	return *s
}
