package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridstatus/core/model"
)

var t0 = time.Date(2023, 7, 8, 15, 0, 0, 0, time.UTC)

func obs(loc string, offset time.Duration, lmp float64) model.Observation {
	return model.Observation{
		ISO: "miso", Dataset: model.DatasetLMP, Market: "REAL_TIME_5_MIN", Location: loc,
		IntervalStart: t0.Add(offset), IntervalEnd: t0.Add(offset + 5*time.Minute),
		Fields: map[string]float64{"lmp": lmp},
	}
}

func TestMatch(t *testing.T) {
	o := obs("MINN.HUB", 0, 1)
	assert.True(t, Match(o, Query{}))
	assert.True(t, Match(o, Query{ISO: "miso", Dataset: model.DatasetLMP, Location: "MINN.HUB"}))
	assert.False(t, Match(o, Query{Dataset: model.DatasetLoad}))
	assert.False(t, Match(o, Query{Market: "DAY_AHEAD_HOURLY"}))
	assert.True(t, Match(o, Query{Start: t0, End: t0.Add(time.Minute)}))
	assert.False(t, Match(o, Query{End: t0}), "end is exclusive")
	assert.False(t, Match(o, Query{Start: t0.Add(time.Second)}))
}

func TestSortLimitLatest(t *testing.T) {
	all := []model.Observation{
		obs("MINN.HUB", 5*time.Minute, 3),
		obs("ILLINOIS.HUB", 5*time.Minute, 2),
		obs("MINN.HUB", 0, 1),
	}
	Sort(all)
	assert.Equal(t, "MINN.HUB", all[0].Location)
	assert.Equal(t, "ILLINOIS.HUB", all[1].Location)

	assert.Len(t, Limit(all, 2), 2)
	assert.Equal(t, 3.0, Limit(all, 1)[0].Fields["lmp"])
	assert.Len(t, Limit(all, 0), 3)

	latest := LatestPerSeries(all)
	require.Len(t, latest, 2)
	for _, o := range latest {
		assert.Equal(t, t0.Add(5*time.Minute), o.IntervalStart)
	}
}
