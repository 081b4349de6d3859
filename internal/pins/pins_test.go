package pins

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUnmarshalMissingTriggered(t *testing.T) {
	var c Config
	if err := json.Unmarshal([]byte(`{"pins":[18,19,20],"duration":2}`), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Pins) != 3 || c.Pins[1] != 19 {
		t.Errorf("pins: got %v, want [18 19 20]", c.Pins)
	}
	if c.Triggered == nil || len(c.Triggered) != 0 {
		t.Errorf("triggered: got %#v, want empty non-nil", c.Triggered)
	}
	if c.Duration != 2 {
		t.Errorf("duration: got %v, want 2", c.Duration)
	}
}

func TestMarshalEmpty(t *testing.T) {
	data, err := json.Marshal(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"pins":[],"triggered":[],"duration":0}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestLabelsAreOneBasedPositions(t *testing.T) {
	c := Config{Pins: []int{18, 19, 20}}

	for label, want := range map[int]int{1: 18, 2: 19, 3: 20} {
		if pin, ok := c.PinAt(label); !ok || pin != want {
			t.Errorf("PinAt(%d): got (%d, %v), want (%d, true)", label, pin, ok, want)
		}
	}
	if _, ok := c.PinAt(0); ok {
		t.Error("PinAt(0): expected not ok")
	}
	if _, ok := c.PinAt(4); ok {
		t.Error("PinAt(4): expected not ok")
	}
}

func TestIsTriggered(t *testing.T) {
	c := Config{Pins: []int{18, 19}, Triggered: []int{18}}
	if !c.IsTriggered(18) {
		t.Error("expected 18 triggered")
	}
	if c.IsTriggered(19) {
		t.Error("expected 19 not triggered")
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(2); got != 2*time.Second {
		t.Errorf("Seconds(2): got %v", got)
	}
	if got := Seconds(0.5); got != 500*time.Millisecond {
		t.Errorf("Seconds(0.5): got %v", got)
	}
	if got := Seconds(-1); got != 0 {
		t.Errorf("Seconds(-1): got %v, want 0", got)
	}
}
