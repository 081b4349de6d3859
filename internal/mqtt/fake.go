package mqtt

import (
	"sync"

	"github.com/sweeney/drpiro/internal/launcher"
)

// Message is one MQTT message as the broker would receive it.
type Message struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  []byte
}

// FakePublisher records what would have been published. Launchers publish
// from timer goroutines, so access is guarded; read the exported fields only
// once publishing has stopped, or use the accessor methods.
type FakePublisher struct {
	mu sync.Mutex

	Events       []launcher.Event
	SystemEvents []SystemEvent
	Messages     []Message // both kinds, in publish order

	PublishError       error // returned by Publish
	PublishSystemError error // returned by PublishSystem

	Closed    bool
	Connected bool // returned by IsConnected
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the launcher event.
func (f *FakePublisher) Publish(event launcher.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	msg, err := launcherMessage(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.record(msg)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	msg, err := systemMessage(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.record(msg)
	return nil
}

func (f *FakePublisher) record(m bufferedMsg) {
	f.Messages = append(f.Messages, Message{Topic: m.topic, QoS: m.qos, Retained: m.retained, Payload: m.payload})
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected returns Connected.
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// EventTypes returns the types of the recorded launcher events in order.
func (f *FakePublisher) EventTypes() []launcher.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]launcher.EventType, len(f.Events))
	for i, e := range f.Events {
		out[i] = e.Type
	}
	return out
}

// MessagesOn returns the recorded messages published to topic.
func (f *FakePublisher) MessagesOn(topic string) []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Message
	for _, m := range f.Messages {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// Reset returns the fake to its initial state.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = nil
	f.SystemEvents = nil
	f.Messages = nil
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Closed = false
	f.Connected = false
}
