package mqtt

import "testing"

func event(i int) bufferedMsg {
	return bufferedMsg{topic: Topic, payload: []byte{byte(i)}}
}

func system(i int) bufferedMsg {
	return bufferedMsg{topic: TopicSystem, payload: []byte{byte(i)}, qos: 1, retained: true}
}

func payloads(msgs []bufferedMsg) []byte {
	out := make([]byte, len(msgs))
	for i, m := range msgs {
		out[i] = m.payload[0]
	}
	return out
}

func TestOutboxEmptyDrain(t *testing.T) {
	o := newOutbox(10)
	if got := o.drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestOutboxKeepsPublishOrder(t *testing.T) {
	o := newOutbox(10)
	o.push(system(0))
	o.push(event(1))
	o.push(event(2))
	o.push(system(3))

	got := o.drain()
	if string(payloads(got)) != string([]byte{0, 1, 2, 3}) {
		t.Errorf("order: got %v, want [0 1 2 3]", payloads(got))
	}
	if o.len() != 0 {
		t.Errorf("len after drain: got %d, want 0", o.len())
	}
	if got := o.drain(); got != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got))
	}
}

func TestOutboxEvictsOldestEventFirst(t *testing.T) {
	o := newOutbox(3)
	o.push(system(0)) // STARTUP
	o.push(event(1))
	o.push(event(2))
	o.push(event(3)) // evicts 1, not the system message

	got := o.drain()
	if string(payloads(got)) != string([]byte{0, 2, 3}) {
		t.Errorf("after overflow: got %v, want [0 2 3]", payloads(got))
	}
}

func TestOutboxEvictsSystemWhenNoEvents(t *testing.T) {
	o := newOutbox(2)
	o.push(system(0))
	o.push(system(1))
	o.push(system(2))

	got := o.drain()
	if string(payloads(got)) != string([]byte{1, 2}) {
		t.Errorf("after overflow: got %v, want [1 2]", payloads(got))
	}
}

func TestOutboxOverflowResetsOnDrain(t *testing.T) {
	o := newOutbox(1)
	o.push(event(0))
	o.push(event(1))
	if o.dropped != 1 {
		t.Errorf("dropped: got %d, want 1", o.dropped)
	}
	o.drain()
	if o.dropped != 0 {
		t.Errorf("dropped after drain: got %d, want 0", o.dropped)
	}

	o.push(event(2))
	if got := o.drain(); len(got) != 1 || got[0].payload[0] != 2 {
		t.Errorf("after reuse: got %v, want [2]", payloads(got))
	}
}

func TestOutboxMinimumCapacity(t *testing.T) {
	o := newOutbox(0)
	o.push(event(0))
	o.push(event(1))
	if got := o.drain(); len(got) != 1 || got[0].payload[0] != 1 {
		t.Errorf("got %v, want [1]", payloads(got))
	}
}

func TestOutboxPreservesFields(t *testing.T) {
	o := newOutbox(5)
	want := bufferedMsg{topic: TopicSystem, payload: []byte(`{"status":{}}`), qos: 1, retained: true}
	o.push(want)

	got := o.drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	m := got[0]
	if m.topic != want.topic || string(m.payload) != string(want.payload) || m.qos != want.qos || m.retained != want.retained {
		t.Errorf("got %+v, want %+v", m, want)
	}
}
