package model

import "time"

// Load is the total system demand in MW over one interval.
type Load struct {
	Interval
	Load float64 `json:"load"`
}

func (l Load) Columns() []string {
	return append(append([]string{}, intervalColumns...), "Load")
}

func (l Load) Values() []any { return append(l.Interval.values(), l.Load) }

// LoadForecast is a forecast demand for one interval, issued at ForecastTime.
type LoadForecast struct {
	Interval
	ForecastTime time.Time `json:"forecast_time"`
	LoadForecast float64   `json:"load_forecast"`
}

func (l LoadForecast) Columns() []string {
	return append(append([]string{}, intervalColumns...), "Forecast Time", "Load Forecast")
}

func (l LoadForecast) Values() []any {
	return append(l.Interval.values(), l.ForecastTime, l.LoadForecast)
}
