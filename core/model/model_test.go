package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarket(t *testing.T) {
	m, err := ParseMarket("real_time_5_min")
	require.NoError(t, err)
	assert.Equal(t, MarketRealTime5Min, m)
	assert.Equal(t, "REAL_TIME_5_MIN", m.String())
	assert.Equal(t, 5*time.Minute, m.IntervalDuration())

	m, err = ParseMarket("DAY_AHEAD_HOURLY")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, m.IntervalDuration())

	_, err = ParseMarket("REAL_TIME_15_MIN")
	assert.Error(t, err)

	var u Market
	require.NoError(t, u.UnmarshalText([]byte("day_ahead_hourly")))
	assert.Equal(t, MarketDayAheadHourly, u)
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	cases := []struct {
		in   string
		kind DateKind
	}{
		{"latest", DateLatest},
		{"", DateLatest},
		{"Today", DateToday},
		{"2023-03-08", DateDay},
		{"20230308", DateDay},
		{"2023-03-08T10:00:00Z", DateDay},
	}
	for _, c := range cases {
		d, err := ParseDate(c.in, loc)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.kind, d.Kind, c.in)
	}
	d, _ := ParseDate("2023-03-08", loc)
	assert.Equal(t, loc, d.Start.Location())
	assert.Equal(t, "2023-03-08", d.String())

	_, err := ParseDate("yesterday-ish", loc)
	assert.Error(t, err)
}

func TestParseDateRange(t *testing.T) {
	d, err := ParseDateRange("2023-03-01", "2023-03-04", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, DateRange, d.Kind)
	assert.Equal(t, "2023-03-01..2023-03-04", d.String())

	d, err = ParseDateRange("today", "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, DateToday, d.Kind)

	_, err = ParseDateRange("latest", "2023-03-04", time.UTC)
	assert.Error(t, err)
	_, err = ParseDateRange("2023-03-04", "2023-03-01", time.UTC)
	assert.Error(t, err)
}

func TestNewLMPEnergyComponent(t *testing.T) {
	iv := NewInterval(time.Date(2023, 3, 8, 10, 0, 0, 0, time.UTC), time.Hour)
	l := NewLMP(iv, MarketDayAheadHourly, "MINN.HUB", "Hub", 30, 2.5, 1.5)
	assert.InDelta(t, 26.0, l.Energy, 1e-9)
	assert.True(t, l.Valid())
	assert.Equal(t, iv.Start, l.Time)
	assert.Equal(t, iv.Start.Add(time.Hour), l.End)

	bad := NewLMP(iv, MarketDayAheadHourly, "X", "", math.NaN(), 0, 0)
	assert.False(t, bad.Valid())
	assert.True(t, math.IsNaN(bad.Energy))
}

func TestRecordColumnsMatchValues(t *testing.T) {
	iv := NewInterval(time.Now(), 5*time.Minute)
	recs := []Record{
		FuelMix{Interval: iv, Sources: []FuelSource{{"Coal", 1}, {"Wind", 2}}},
		Load{Interval: iv, Load: 10},
		LoadForecast{Interval: iv, ForecastTime: iv.Start, LoadForecast: 11},
		NewLMP(iv, MarketRealTime5Min, "A", "Gennode", 1, 0, 0),
		InterconnectionProject{QueueID: "J1", Extra: []Field{{"studyCycle", "DPP-2020"}}},
	}
	for _, r := range recs {
		assert.Len(t, r.Values(), len(r.Columns()), "%T", r)
		assert.NotEmpty(t, r.Columns())
	}
	fm := recs[0].(FuelMix)
	assert.Equal(t, []string{"Time", "Interval Start", "Interval End", "Coal", "Wind"}, fm.Columns())
	assert.InDelta(t, 3.0, fm.Total(), 1e-9)
	mw, ok := fm.MW("Wind")
	assert.True(t, ok)
	assert.InDelta(t, 2.0, mw, 1e-9)
}

func TestQueueValuesLeaveMissingDatesEmpty(t *testing.T) {
	p := InterconnectionProject{QueueID: "J1", CapacityMW: 100}
	vals := p.Values()
	assert.Nil(t, vals[11])
	assert.Equal(t, "J1", vals[0])
	v, ok := p.ExtraValue("missing")
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestObservations(t *testing.T) {
	iv := NewInterval(time.Date(2023, 3, 8, 10, 0, 0, 0, time.UTC), 5*time.Minute)
	lmps := []LMP{
		NewLMP(iv, MarketRealTime5Min, "A", "Hub", 20, 1, math.NaN()),
		NewLMP(iv, MarketRealTime5Min, "B", "Hub", 21, 1, 1),
	}
	obs := ToObservations("miso", lmps)
	require.Len(t, obs, 2)
	assert.Equal(t, DatasetLMP, obs[0].Dataset)
	assert.Equal(t, "REAL_TIME_5_MIN", obs[0].Market)
	assert.NotContains(t, obs[0].Fields, "loss")
	assert.NotContains(t, obs[0].Fields, "energy")
	assert.InDelta(t, 19.0, obs[1].Fields["energy"], 1e-9)
	assert.NotEqual(t, obs[0].Key(), obs[1].Key())

	fm := FuelMix{Interval: iv, Sources: []FuelSource{{"Natural Gas", 5}, {"Other", math.NaN()}}}
	fo := fm.Observations("miso")
	require.Len(t, fo, 1)
	assert.Equal(t, map[string]float64{"natural_gas": 5}, fo[0].Fields)
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "natural_gas", FieldName("Natural Gas"))
	assert.Equal(t, "capacity_mw", FieldName("Capacity (MW)"))
	assert.Equal(t, "coal", FieldName("  Coal "))
}

func TestDatasetValid(t *testing.T) {
	assert.True(t, DatasetLMP.Valid())
	assert.False(t, Dataset("prices").Valid())
}
