package mqtt

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kilianp07/gridstatus/core/events"
	coremqtt "github.com/kilianp07/gridstatus/core/mqtt"
	"github.com/kilianp07/gridstatus/infra/logger"
	"github.com/kilianp07/gridstatus/internal/eventbus"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher records payloads by topic. Used in tests.
type MockPublisher struct {
	Prefix   string
	Messages map[string][]byte
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher(prefix string) *MockPublisher {
	return &MockPublisher{Prefix: prefix, Messages: make(map[string][]byte)}
}

// PublishFetch stores the payloads PahoClient would have sent.
func (m *MockPublisher) PublishFetch(ev events.FetchEvent) error {
	if ev.Failed() {
		return nil
	}
	topics, latest := Latest(m.Prefix, ev.Observations)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range topics {
		payload, err := json.Marshal(latest[t])
		if err != nil {
			return err
		}
		m.Messages[t] = payload
	}
	return nil
}

// Topics returns the number of topics published so far.
func (m *MockPublisher) Topics() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

// StartPublisher forwards fetch events from the bus to pub until ctx is
// canceled or the bus is closed.
func StartPublisher(ctx context.Context, bus *eventbus.TypedBus[events.FetchEvent], pub Publisher) {
	if bus == nil || pub == nil {
		return
	}
	log := logger.New("mqtt_publisher")
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := pub.PublishFetch(ev); err != nil {
					log.Errorf("publish %s %s: %v", ev.ISO, ev.Dataset, err)
				}
			}
		}
	}()
}
