package metrics

import (
	"github.com/kilianp07/gridstatus/core/events"
	"github.com/kilianp07/gridstatus/core/model"
)

// MetricsSink records fetch outcomes for observability purposes.
type MetricsSink interface {
	RecordFetch(ev events.FetchEvent) error
}

// ObservationRecorder is implemented by sinks able to store the series
// points themselves.
type ObservationRecorder interface {
	RecordObservations(obs []model.Observation) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordFetch(events.FetchEvent) error             { return nil }
func (NopSink) RecordObservations([]model.Observation) error { return nil }

// MultiSink fans out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordFetch forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordFetch(ev events.FetchEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordFetch(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordObservations forwards observations when supported by the sink.
func (m *MultiSink) RecordObservations(obs []model.Observation) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ObservationRecorder); ok {
			if err := r.RecordObservations(obs); err != nil {
				return err
			}
		}
	}
	return nil
}
