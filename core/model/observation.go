package model

import (
	"math"
	"strings"
	"time"
)

// Observation is the flattened form of a time-series record persisted by
// stores and written to metric sinks.
type Observation struct {
	ISO           string             `json:"iso"`
	Dataset       Dataset            `json:"dataset"`
	Market        string             `json:"market,omitempty"`
	Location      string             `json:"location,omitempty"`
	IntervalStart time.Time          `json:"interval_start"`
	IntervalEnd   time.Time          `json:"interval_end"`
	Fields        map[string]float64 `json:"fields"`
}

// Key identifies the series and interval of an observation.
func (o Observation) Key() string {
	return strings.Join([]string{o.ISO, string(o.Dataset), o.Market, o.Location,
		o.IntervalStart.UTC().Format(time.RFC3339)}, "|")
}

// Observable records convert to observations.
type Observable interface {
	Observations(iso string) []Observation
}

// ToObservations flattens a typed slice of records.
func ToObservations[T Observable](iso string, recs []T) []Observation {
	var out []Observation
	for _, r := range recs {
		out = append(out, r.Observations(iso)...)
	}
	return out
}

func fieldSet(kv ...any) map[string]float64 {
	m := make(map[string]float64, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		v := kv[i+1].(float64)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		m[kv[i].(string)] = v
	}
	return m
}

// FieldName normalizes a column or fuel label into an observation field key.
func FieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	underscore := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func (f FuelMix) Observations(iso string) []Observation {
	fields := make(map[string]float64, len(f.Sources))
	for _, s := range f.Sources {
		if math.IsNaN(s.MW) {
			continue
		}
		fields[FieldName(s.Fuel)] = s.MW
	}
	return []Observation{{
		ISO: iso, Dataset: DatasetFuelMix,
		IntervalStart: f.Start, IntervalEnd: f.End, Fields: fields,
	}}
}

func (l Load) Observations(iso string) []Observation {
	return []Observation{{
		ISO: iso, Dataset: DatasetLoad,
		IntervalStart: l.Start, IntervalEnd: l.End,
		Fields: fieldSet("load", l.Load),
	}}
}

func (l LoadForecast) Observations(iso string) []Observation {
	return []Observation{{
		ISO: iso, Dataset: DatasetLoadForecast,
		IntervalStart: l.Start, IntervalEnd: l.End,
		Fields: fieldSet("load_forecast", l.LoadForecast, "forecast_time", float64(l.ForecastTime.Unix())),
	}}
}

func (l LMP) Observations(iso string) []Observation {
	return []Observation{{
		ISO: iso, Dataset: DatasetLMP, Market: l.Market.String(), Location: l.Location,
		IntervalStart: l.Start, IntervalEnd: l.End,
		Fields: fieldSet("lmp", l.LMP, "energy", l.Energy, "congestion", l.Congestion, "loss", l.Loss),
	}}
}
