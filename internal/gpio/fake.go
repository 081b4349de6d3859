package gpio

import "sync"

// Level is a single recorded Set call.
type Level struct {
	Pin  int
	High bool
}

// FakeDriver is a test double that records output levels.
type FakeDriver struct {
	mu sync.Mutex

	// Levels contains every Set call in order.
	Levels []Level

	// SetError, if set, will be returned by Set().
	SetError error

	// Closed tracks if Close was called.
	Closed bool

	high map[int]bool
}

// NewFakeDriver creates a FakeDriver with all lines low.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{high: make(map[int]bool)}
}

// Set records the level.
func (f *FakeDriver) Set(pin int, high bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.Levels = append(f.Levels, Level{Pin: pin, High: high})
	f.high[pin] = high
	return nil
}

// IsHigh reports the last level set on pin.
func (f *FakeDriver) IsHigh(pin int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.high[pin]
}

// Pulses returns how many times pin was driven high.
func (f *FakeDriver) Pulses(pin int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.Levels {
		if l.Pin == pin && l.High {
			n++
		}
	}
	return n
}

// Close drives every line low and marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for pin := range f.high {
		f.high[pin] = false
	}
	f.Closed = true
	return nil
}

// Reset clears recorded levels.
func (f *FakeDriver) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Levels = nil
	f.SetError = nil
	f.Closed = false
	f.high = make(map[int]bool)
}
