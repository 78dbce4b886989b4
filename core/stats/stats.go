// Package stats summarizes numeric series such as prices and loads.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/gridstatus/core/model"
)

// Summary describes a series. NaN values are ignored; an empty series has
// Count 0 and NaN everywhere else.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
}

// Summarize computes the summary of values. StdDev is the sample standard
// deviation, zero for a single value.
func Summarize(values []float64) Summary {
	x := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			x = append(x, v)
		}
	}
	if len(x) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, StdDev: nan, Min: nan, Max: nan, P50: nan, P95: nan}
	}
	sort.Float64s(x)
	s := Summary{
		Count: len(x),
		Mean:  stat.Mean(x, nil),
		Min:   floats.Min(x),
		Max:   floats.Max(x),
		P50:   stat.Quantile(0.5, stat.Empirical, x, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, x, nil),
	}
	if len(x) > 1 {
		s.StdDev = stat.StdDev(x, nil)
	}
	return s
}

// Column selects a price component of an LMP record.
type Column string

const (
	ColumnLMP        Column = "lmp"
	ColumnEnergy     Column = "energy"
	ColumnCongestion Column = "congestion"
	ColumnLoss       Column = "loss"
)

func (c Column) value(r model.LMP) (float64, bool) {
	switch c {
	case ColumnLMP, "":
		return r.LMP, true
	case ColumnEnergy:
		return r.Energy, true
	case ColumnCongestion:
		return r.Congestion, true
	case ColumnLoss:
		return r.Loss, true
	}
	return 0, false
}

// LocationSummary is the summary of one location.
type LocationSummary struct {
	Location     string `json:"location"`
	LocationType string `json:"location_type,omitempty"`
	Summary
}

// ByLocation summarizes one column of LMP records per location, sorted by
// location name. An unknown column yields nil.
func ByLocation(recs []model.LMP, col Column) []LocationSummary {
	if _, ok := col.value(model.LMP{}); !ok {
		return nil
	}
	values := map[string][]float64{}
	types := map[string]string{}
	for _, r := range recs {
		v, _ := col.value(r)
		values[r.Location] = append(values[r.Location], v)
		if _, ok := types[r.Location]; !ok {
			types[r.Location] = r.LocationType
		}
	}
	names := make([]string, 0, len(values))
	for n := range values {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]LocationSummary, 0, len(names))
	for _, n := range names {
		out = append(out, LocationSummary{Location: n, LocationType: types[n], Summary: Summarize(values[n])})
	}
	return out
}

func (s LocationSummary) Columns() []string {
	return []string{"Location", "Location Type", "Count", "Mean", "StdDev", "Min", "Max", "P50", "P95"}
}

func (s LocationSummary) Values() []any {
	return []any{s.Location, s.LocationType, s.Count, s.Mean, s.StdDev, s.Min, s.Max, s.P50, s.P95}
}
