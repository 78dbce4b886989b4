package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/gridstatus/core/events"
)

// PromSink records fetch events in Prometheus metrics.
type PromSink struct {
	fetches     *prometheus.CounterVec
	records     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
}

// NewPromSink registers fetch metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	fetches, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridstatus_fetches_total",
		Help: "Total number of dataset fetches by outcome",
	}, []string{"iso", "dataset", "status"}))
	if err != nil {
		return nil, err
	}
	records, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridstatus_records_total",
		Help: "Total number of records fetched",
	}, []string{"iso", "dataset"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gridstatus_fetch_duration_seconds",
		Help:    "Duration of dataset fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"iso", "dataset"}))
	if err != nil {
		return nil, err
	}
	last, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gridstatus_last_success_timestamp_seconds",
		Help: "Unix time of the last successful fetch",
	}, []string{"iso", "dataset"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{fetches: fetches, records: records, duration: duration, lastSuccess: last}, nil
}

// RecordFetch updates the counters for one fetch.
func (s *PromSink) RecordFetch(ev events.FetchEvent) error {
	ds := string(ev.Dataset)
	s.fetches.WithLabelValues(ev.ISO, ds, ev.Status()).Inc()
	s.duration.WithLabelValues(ev.ISO, ds).Observe(ev.Duration.Seconds())
	if !ev.Failed() {
		s.records.WithLabelValues(ev.ISO, ds).Add(float64(ev.Records))
		s.lastSuccess.WithLabelValues(ev.ISO, ds).Set(float64(ev.Time.Unix()))
	}
	return nil
}

// HTTPObserver counts upstream HTTP requests made by the fetcher.
type HTTPObserver struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTPObserver registers the request metrics on reg.
func NewHTTPObserver(reg prometheus.Registerer) (*HTTPObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridstatus_http_requests_total",
		Help: "Upstream HTTP requests by host and status code",
	}, []string{"host", "code"}))
	if err != nil {
		return nil, err
	}
	latency, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gridstatus_http_request_duration_seconds",
		Help:    "Upstream HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"host"}))
	if err != nil {
		return nil, err
	}
	return &HTTPObserver{requests: requests, latency: latency}, nil
}

// ObserveRequest implements httpx.RequestObserver. Transport failures are
// counted with code "error".
func (o *HTTPObserver) ObserveRequest(host string, status int, d time.Duration, err error) {
	code := strconv.Itoa(status)
	if status == 0 && err != nil {
		code = "error"
	}
	o.requests.WithLabelValues(host, code).Inc()
	o.latency.WithLabelValues(host).Observe(d.Seconds())
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
