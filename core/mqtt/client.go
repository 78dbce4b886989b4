package mqtt

import "github.com/kilianp07/gridstatus/core/events"

// Publisher pushes the observations produced by a fetch to a broker.
type Publisher interface {
	// PublishFetch publishes the latest observation of every series in ev.
	// Failed fetches are ignored.
	PublishFetch(ev events.FetchEvent) error
}
