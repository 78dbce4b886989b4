package export

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/gridstatus/core/model"
)

// ChartOptions select what WriteChart plots.
type ChartOptions struct {
	Title string
	// Value is the column plotted on the Y axis, e.g. "LMP" or "Load".
	Value string
	// Series splits records into one line per value of this column, e.g.
	// "Location". Empty draws a single line.
	Series string
}

// WriteChart renders recs as an HTML line chart keyed by "Interval Start".
func WriteChart(w io.Writer, recs []model.Record, o ChartOptions) error {
	if len(recs) == 0 {
		return fmt.Errorf("no records to chart")
	}
	cols := recs[0].Columns()
	xi, vi, si := index(cols, "Interval Start"), index(cols, o.Value), -1
	if xi < 0 {
		return fmt.Errorf("records have no Interval Start column")
	}
	if vi < 0 {
		return fmt.Errorf("unknown value column: %s", o.Value)
	}
	if o.Series != "" {
		if si = index(cols, o.Series); si < 0 {
			return fmt.Errorf("unknown series column: %s", o.Series)
		}
	}

	xs, points := chartPoints(recs, xi, vi, si, o.Value)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Interval Start"}),
		charts.WithYAxisOpts(opts.YAxis{Name: o.Value}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	line.SetXAxis(xs)
	names := make([]string, 0, len(points))
	for n := range points {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		data := make([]opts.LineData, len(xs))
		for i, x := range xs {
			v, ok := points[n][x]
			if !ok || math.IsNaN(v) {
				data[i] = opts.LineData{Value: "-"}
				continue
			}
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(n, data)
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// chartPoints groups values by series and x label. Time labels are ordered
// by instant so that repeated wall clock hours on DST days stay in sequence;
// other labels keep first-seen order.
func chartPoints(recs []model.Record, xi, vi, si int, value string) ([]string, map[string]map[string]float64) {
	var xs []string
	at := map[string]time.Time{}
	points := map[string]map[string]float64{}
	for _, r := range recs {
		vals := r.Values()
		x := formatCell(vals[xi])
		if _, ok := at[x]; !ok {
			t, _ := vals[xi].(time.Time)
			at[x] = t
			xs = append(xs, x)
		}
		name := value
		if si >= 0 {
			name = formatCell(vals[si])
		}
		if points[name] == nil {
			points[name] = map[string]float64{}
		}
		if v, ok := vals[vi].(float64); ok {
			points[name][x] = v
		}
	}
	sort.SliceStable(xs, func(i, j int) bool { return at[xs[i]].Before(at[xs[j]]) })
	return xs, points
}

func index(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
