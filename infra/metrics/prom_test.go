package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/gridstatus/core/events"
	"github.com/kilianp07/gridstatus/core/model"
)

func TestPromSink_RecordFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	now := time.Unix(1688828400, 0)
	ok := events.FetchEvent{ISO: "miso", Dataset: model.DatasetLMP, Records: 5, Duration: time.Second, Time: now}
	failed := events.FetchEvent{ISO: "miso", Dataset: model.DatasetLMP, Error: "boom", Time: now.Add(time.Minute)}
	for _, ev := range []events.FetchEvent{ok, ok, failed} {
		if err := sink.RecordFetch(ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	if v := testutil.ToFloat64(sink.fetches.WithLabelValues("miso", "lmp", "ok")); v != 2 {
		t.Fatalf("expected 2 ok fetches, got %v", v)
	}
	if v := testutil.ToFloat64(sink.fetches.WithLabelValues("miso", "lmp", "error")); v != 1 {
		t.Fatalf("expected 1 failed fetch, got %v", v)
	}
	if v := testutil.ToFloat64(sink.records.WithLabelValues("miso", "lmp")); v != 10 {
		t.Fatalf("expected 10 records, got %v", v)
	}
	if v := testutil.ToFloat64(sink.lastSuccess.WithLabelValues("miso", "lmp")); v != float64(now.Unix()) {
		t.Fatalf("last success not updated: %v", v)
	}
}

func TestPromSink_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	s1, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	s2, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	_ = s1.RecordFetch(events.FetchEvent{ISO: "miso", Dataset: model.DatasetLoad})
	if v := testutil.ToFloat64(s2.fetches.WithLabelValues("miso", "load", "ok")); v != 1 {
		t.Fatalf("expected shared collector, got %v", v)
	}
}

func TestHTTPObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewHTTPObserver(reg)
	if err != nil {
		t.Fatalf("create observer: %v", err)
	}
	o.ObserveRequest("api.misoenergy.org", 200, 10*time.Millisecond, nil)
	o.ObserveRequest("api.misoenergy.org", 0, time.Millisecond, errors.New("dial tcp: refused"))

	if v := testutil.ToFloat64(o.requests.WithLabelValues("api.misoenergy.org", "200")); v != 1 {
		t.Fatalf("expected 1 ok request, got %v", v)
	}
	if v := testutil.ToFloat64(o.requests.WithLabelValues("api.misoenergy.org", "error")); v != 1 {
		t.Fatalf("expected 1 failed request, got %v", v)
	}
}
