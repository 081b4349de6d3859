package mqtt

import "log"

// bufferedMsg is a serialized MQTT message held until the broker is reachable.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages published while disconnected, oldest first. When it
// is full the oldest QoS 0 launcher event is evicted; system messages are only
// evicted when nothing else is left.
// Not safe for concurrent use; the caller must synchronize.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int // evictions since the last drain
}

func newOutbox(capacity int) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &outbox{
		msgs:     make([]bufferedMsg, 0, capacity),
		capacity: capacity,
	}
}

func (o *outbox) push(msg bufferedMsg) {
	if len(o.msgs) == o.capacity {
		o.evict()
	}
	o.msgs = append(o.msgs, msg)
}

func (o *outbox) evict() {
	victim := 0
	for i, m := range o.msgs {
		if m.qos == 0 {
			victim = i
			break
		}
	}
	if o.dropped == 0 {
		log.Printf("mqtt: offline buffer full (%d messages), dropping oldest %s message", o.capacity, o.msgs[victim].topic)
	}
	o.dropped++
	o.msgs = append(o.msgs[:victim], o.msgs[victim+1:]...)
}

// drain returns the held messages in publish order and empties the outbox.
func (o *outbox) drain() []bufferedMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	if o.dropped > 0 {
		log.Printf("mqtt: %d messages were dropped while offline", o.dropped)
	}
	out := o.msgs
	o.msgs = make([]bufferedMsg, 0, o.capacity)
	o.dropped = 0
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}
