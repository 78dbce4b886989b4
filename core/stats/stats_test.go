package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridstatus/core/model"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, math.NaN(), 3, 2, 5})
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3.0, s.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(2.5), s.StdDev, 1e-9)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, 3.0, s.P50)
	assert.Equal(t, 5.0, s.P95)
}

func TestSummarizeEdgeCases(t *testing.T) {
	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, math.IsNaN(empty.Mean))

	one := Summarize([]float64{7})
	assert.Equal(t, 1, one.Count)
	assert.Equal(t, 0.0, one.StdDev)
	assert.Equal(t, 7.0, one.P95)
}

func TestByLocation(t *testing.T) {
	start := time.Date(2023, 7, 8, 0, 0, 0, 0, time.UTC)
	iv := model.NewInterval(start, time.Hour)
	recs := []model.LMP{
		model.NewLMP(iv, model.MarketDayAheadHourly, "B.HUB", "Hub", 30, 2, 1),
		model.NewLMP(iv, model.MarketDayAheadHourly, "A.NODE", "Gennode", 10, 1, 0),
		model.NewLMP(model.NewInterval(start.Add(time.Hour), time.Hour), model.MarketDayAheadHourly, "B.HUB", "Hub", 50, 4, 1),
	}
	got := ByLocation(recs, ColumnLMP)
	require.Len(t, got, 2)
	assert.Equal(t, "A.NODE", got[0].Location)
	assert.Equal(t, "Gennode", got[0].LocationType)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, "B.HUB", got[1].Location)
	assert.InDelta(t, 40.0, got[1].Mean, 1e-9)
	assert.Equal(t, 50.0, got[1].Max)

	cong := ByLocation(recs, ColumnCongestion)
	assert.InDelta(t, 3.0, cong[1].Mean, 1e-9)

	assert.Nil(t, ByLocation(recs, "price"))
}
