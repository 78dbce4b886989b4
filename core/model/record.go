package model

import "time"

// Record is the tabular view of a normalized row. Columns and Values have the
// same length; exporters rely on every record of a slice sharing the first
// record's columns.
type Record interface {
	Columns() []string
	Values() []any
}

// Interval carries the three time columns leading every time-series record.
// Time equals Start.
type Interval struct {
	Time  time.Time `json:"time"`
	Start time.Time `json:"interval_start"`
	End   time.Time `json:"interval_end"`
}

// NewInterval builds the interval starting at start and lasting d.
func NewInterval(start time.Time, d time.Duration) Interval {
	return Interval{Time: start, Start: start, End: start.Add(d)}
}

var intervalColumns = []string{"Time", "Interval Start", "Interval End"}

func (i Interval) values() []any { return []any{i.Time, i.Start, i.End} }

// Dataset names a family of time-series records.
type Dataset string

const (
	DatasetFuelMix      Dataset = "fuel_mix"
	DatasetLoad         Dataset = "load"
	DatasetLoadForecast Dataset = "load_forecast"
	DatasetLMP          Dataset = "lmp"
)

// Datasets lists every dataset collected by the poller.
func Datasets() []Dataset {
	return []Dataset{DatasetFuelMix, DatasetLoad, DatasetLoadForecast, DatasetLMP}
}

// Valid reports whether d is a known dataset.
func (d Dataset) Valid() bool {
	for _, k := range Datasets() {
		if d == k {
			return true
		}
	}
	return false
}

// Records converts a typed slice for the exporters.
func Records[T Record](in []T) []Record {
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r
	}
	return out
}
