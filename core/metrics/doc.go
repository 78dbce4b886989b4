// Package metrics defines the sinks that record collection activity. Sinks
// like the Prometheus and InfluxDB implementations record fetch events and
// can be combined with NewMultiSink. The factory helpers return a MultiSink
// automatically when multiple sinks are configured.
package metrics
