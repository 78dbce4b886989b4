// Package store defines persistence of observations. Backends live in
// infra/store and register themselves in the factory registry.
package store

import (
	"context"
	"sort"
	"time"

	"github.com/kilianp07/gridstatus/core/factory"
	"github.com/kilianp07/gridstatus/core/model"
)

// Query filters stored observations. Zero fields match everything.
// Start is inclusive and End exclusive on the interval start. A positive
// Limit keeps the most recent observations.
type Query struct {
	ISO      string
	Dataset  model.Dataset
	Market   string
	Location string
	Start    time.Time
	End      time.Time
	Limit    int
}

// Store persists observations. Appending an observation whose Key already
// exists replaces the stored one.
type Store interface {
	Append(ctx context.Context, obs []model.Observation) error
	// Query returns matching observations ordered by interval start then location.
	Query(ctx context.Context, q Query) ([]model.Observation, error)
	// Latest returns the most recent observation of every series of a dataset.
	Latest(ctx context.Context, iso string, dataset model.Dataset) ([]model.Observation, error)
	Close() error
}

var registry = factory.NewRegistry[Store]()

// RegisterStore adds a store factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return registry.Register(name, f)
}

// NewStore creates the store described by cfg. An empty type selects memory.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	return registry.Create(cfg)
}

// Backends lists the registered store types.
func Backends() []string { return registry.Names() }

// Match reports whether o satisfies the filters of q, ignoring Limit.
func Match(o model.Observation, q Query) bool {
	switch {
	case q.ISO != "" && o.ISO != q.ISO:
		return false
	case q.Dataset != "" && o.Dataset != q.Dataset:
		return false
	case q.Market != "" && o.Market != q.Market:
		return false
	case q.Location != "" && o.Location != q.Location:
		return false
	case !q.Start.IsZero() && o.IntervalStart.Before(q.Start):
		return false
	case !q.End.IsZero() && !o.IntervalStart.Before(q.End):
		return false
	}
	return true
}

// Sort orders observations by interval start, market and location.
func Sort(obs []model.Observation) {
	sort.SliceStable(obs, func(i, j int) bool {
		a, b := obs[i], obs[j]
		if !a.IntervalStart.Equal(b.IntervalStart) {
			return a.IntervalStart.Before(b.IntervalStart)
		}
		if a.Market != b.Market {
			return a.Market < b.Market
		}
		return a.Location < b.Location
	})
}

// Limit keeps the last n of sorted observations.
func Limit(obs []model.Observation, n int) []model.Observation {
	if n > 0 && len(obs) > n {
		return obs[len(obs)-n:]
	}
	return obs
}

// LatestPerSeries keeps the most recent observation of every
// (iso, dataset, market, location) series, sorted.
func LatestPerSeries(obs []model.Observation) []model.Observation {
	type series struct{ iso, dataset, market, location string }
	latest := map[series]model.Observation{}
	for _, o := range obs {
		k := series{o.ISO, string(o.Dataset), o.Market, o.Location}
		if cur, ok := latest[k]; !ok || o.IntervalStart.After(cur.IntervalStart) {
			latest[k] = o
		}
	}
	out := make([]model.Observation, 0, len(latest))
	for _, o := range latest {
		out = append(out, o)
	}
	Sort(out)
	return out
}
