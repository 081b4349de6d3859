package api

import (
	"context"
	"sync"

	"github.com/sweeney/drpiro/internal/pins"
)

// Call records one operation made against a Fake.
type Call struct {
	Op       Op
	Pin      int
	Duration float64
}

// Fake is an in-memory stand-in for Client that records calls for test assertions.
type Fake struct {
	mu sync.Mutex

	// Config is returned by GetPinConfig and SetDuration.
	Config pins.Config

	// Calls contains every operation in the order it was made.
	Calls []Call

	// ReadError, if set, will be returned by GetPinConfig.
	ReadError error

	// DurationError, if set, will be returned by SetDuration.
	DurationError error

	// FireErrors maps a pin to the error FirePin returns for it.
	FireErrors map[int]error

	// EnableError, if set, will be returned by EnablePin.
	EnableError error

	// DisableError, if set, will be returned by DisablePin.
	DisableError error

	// FireGate, if set, is received from before FirePin returns.
	FireGate chan struct{}
	// ReadGate, if set, is received from before GetPinConfig returns.
	ReadGate chan struct{}
}

// NewFake creates a Fake returning cfg.
func NewFake(cfg pins.Config) *Fake {
	return &Fake{Config: cfg, FireErrors: map[int]error{}}
}

// GetPinConfig returns the configured snapshot.
func (f *Fake) GetPinConfig(ctx context.Context) (pins.Config, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, Call{Op: OpRead})
	gate := f.ReadGate
	cfg, err := f.Config, f.ReadError
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return pins.Config{}, ctx.Err()
		}
	}
	if err != nil {
		return pins.Config{}, err
	}
	return cfg, nil
}

// SetDuration records the call and updates the snapshot duration.
func (f *Fake) SetDuration(ctx context.Context, seconds float64) (pins.Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Op: OpDuration, Duration: seconds})
	if f.DurationError != nil {
		return pins.Config{}, f.DurationError
	}
	f.Config.Duration = seconds
	return f.Config, nil
}

// FirePin records the call and returns the scripted error for pin, if any.
func (f *Fake) FirePin(ctx context.Context, pin int) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, Call{Op: OpFire, Pin: pin})
	gate := f.FireGate
	err := f.FireErrors[pin]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// EnablePin records the call.
func (f *Fake) EnablePin(ctx context.Context, pin int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Op: OpEnable, Pin: pin})
	return f.EnableError
}

// DisablePin records the call.
func (f *Fake) DisablePin(ctx context.Context, pin int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Op: OpDisable, Pin: pin})
	return f.DisableError
}

// SetConfig replaces the snapshot returned by later reads.
func (f *Fake) SetConfig(cfg pins.Config) {
	f.mu.Lock()
	f.Config = cfg
	f.mu.Unlock()
}

// SetReadGate replaces ReadGate while reads may be in flight.
func (f *Fake) SetReadGate(gate chan struct{}) {
	f.mu.Lock()
	f.ReadGate = gate
	f.mu.Unlock()
}

// Count returns how many calls of op were made.
func (f *Fake) Count(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// CallsOf returns the recorded calls of op in order.
func (f *Fake) CallsOf(op Op) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded calls and scripted errors.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
	f.ReadError = nil
	f.DurationError = nil
	f.FireErrors = map[int]error{}
	f.EnableError = nil
	f.DisableError = nil
	f.FireGate = nil
	f.ReadGate = nil
}
