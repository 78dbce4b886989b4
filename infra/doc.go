// Package infra contains technical adapters: operator and EIA clients, the
// shared HTTP fetcher, storage backends, MQTT publication, error monitoring
// and metrics exporters. These packages should depend only on the
// interfaces defined in the core packages.
package infra
