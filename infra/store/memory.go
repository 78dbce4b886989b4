// Package store implements the observation stores: an in-memory map, a
// SQLite database and rotating JSONL files.
package store

import (
	"context"
	"sync"

	"github.com/kilianp07/gridstatus/core/model"
	corestore "github.com/kilianp07/gridstatus/core/store"
)

// MemoryStore keeps observations in a map keyed by Observation.Key.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]model.Observation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]model.Observation)}
}

func (s *MemoryStore) Append(_ context.Context, obs []model.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range obs {
		s.data[o.Key()] = o
	}
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q corestore.Query) ([]model.Observation, error) {
	s.mu.RLock()
	var out []model.Observation
	for _, o := range s.data {
		if corestore.Match(o, q) {
			out = append(out, o)
		}
	}
	s.mu.RUnlock()
	corestore.Sort(out)
	return corestore.Limit(out, q.Limit), nil
}

func (s *MemoryStore) Latest(ctx context.Context, iso string, dataset model.Dataset) ([]model.Observation, error) {
	all, err := s.Query(ctx, corestore.Query{ISO: iso, Dataset: dataset})
	if err != nil {
		return nil, err
	}
	return corestore.LatestPerSeries(all), nil
}

func (s *MemoryStore) Close() error { return nil }
