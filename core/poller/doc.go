// Package poller collects datasets on a schedule. Each job fetches the
// freshest data an ISO publishes, stores it as observations, records metrics
// and announces the outcome on the event bus.
package poller
