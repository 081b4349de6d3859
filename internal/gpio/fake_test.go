package gpio

import (
	"errors"
	"testing"
)

func TestFakeDriverSet(t *testing.T) {
	f := NewFakeDriver()

	if err := f.Set(19, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsHigh(19) {
		t.Error("pin 19 should be high")
	}

	if err := f.Set(19, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.IsHigh(19) {
		t.Error("pin 19 should be low")
	}

	if len(f.Levels) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(f.Levels))
	}
	if f.Pulses(19) != 1 {
		t.Errorf("pulses: got %d, want 1", f.Pulses(19))
	}
}

func TestFakeDriverError(t *testing.T) {
	f := NewFakeDriver()
	f.SetError = errors.New("simulated error")

	err := f.Set(3, true)
	if err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
	if len(f.Levels) != 0 {
		t.Error("no level should be recorded on error")
	}
}

func TestFakeDriverCloseLowersLines(t *testing.T) {
	f := NewFakeDriver()
	f.Set(7, true)

	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
	if f.IsHigh(7) {
		t.Error("Close should drive lines low")
	}
}

func TestFakeDriverReset(t *testing.T) {
	f := NewFakeDriver()
	f.Set(1, true)
	f.Close()

	f.Reset()

	if len(f.Levels) != 0 || f.Closed || f.IsHigh(1) {
		t.Error("reset should clear all recorded state")
	}
}

func TestFakeSatisfiesDriver(t *testing.T) {
	var _ Driver = NewFakeDriver()
}
