// Package events defines the events emitted on the event bus.
//
// Available event types:
//   - FetchEvent: outcome of one poller fetch, with the observations it produced
package events
