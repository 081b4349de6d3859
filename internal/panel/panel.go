// Package panel implements the configuration overlay: edit the notice
// duration, enable a pin by number, or disable a configured pin.
//
// The panel keeps no copy of the configuration. Every mutating action is
// followed by exactly one re-fetch through the refresh callback.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/sweeney/drpiro/internal/pins"
)

// Backend is the subset of the API client the panel mutates through.
type Backend interface {
	SetDuration(ctx context.Context, seconds float64) (pins.Config, error)
	EnablePin(ctx context.Context, pin int) error
	DisablePin(ctx context.Context, pin int) error
}

// ErrInvalidInput is returned when a non-empty input is not a number.
var ErrInvalidInput = errors.New("invalid input")

// State is a point-in-time view of the panel.
type State struct {
	Shown         bool
	DurationInput string
	PinInput      string
	Error         string
}

// DisableButton is one "Disable" entry, rendered per configured pin.
type DisableButton struct {
	Label int
	Pin   int
}

// Text returns the button caption.
func (b DisableButton) Text() string {
	return fmt.Sprintf("Disable Launch %d / Pin %d", b.Label, b.Pin)
}

// Panel is the configuration overlay. Safe for concurrent use.
type Panel struct {
	backend Backend
	refresh func(ctx context.Context) error

	mu            sync.Mutex
	shown         bool
	durationInput string
	pinInput      string
	errMsg        string
}

// New creates a hidden panel. refresh re-fetches the configuration.
func New(backend Backend, refresh func(ctx context.Context) error) *Panel {
	return &Panel{backend: backend, refresh: refresh}
}

// Toggle flips visibility without fetching.
func (p *Panel) Toggle() {
	p.mu.Lock()
	p.shown = !p.shown
	p.mu.Unlock()
}

// SetDurationInput stores the uncommitted duration field.
func (p *Panel) SetDurationInput(s string) {
	p.mu.Lock()
	p.durationInput = s
	p.mu.Unlock()
}

// SetPinInput stores the uncommitted pin field.
func (p *Panel) SetPinInput(s string) {
	p.mu.Lock()
	p.pinInput = s
	p.mu.Unlock()
}

// State returns a snapshot of the panel.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Shown:         p.shown,
		DurationInput: p.durationInput,
		PinInput:      p.pinInput,
		Error:         p.errMsg,
	}
}

// DisableButtons returns one button per configured pin, in display order.
func DisableButtons(cfg pins.Config) []DisableButton {
	out := make([]DisableButton, len(cfg.Pins))
	for i, pin := range cfg.Pins {
		out[i] = DisableButton{Label: i + 1, Pin: pin}
	}
	return out
}

// SaveDuration submits the duration field. An empty field is a no-op.
func (p *Panel) SaveDuration(ctx context.Context) error {
	raw := p.takeInput(&p.durationInput)
	if raw == "" {
		return nil
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return p.fail(fmt.Errorf("%w: duration %q", ErrInvalidInput, raw))
	}

	_, err = p.backend.SetDuration(ctx, seconds)
	return p.finish(ctx, err)
}

// EnablePin submits the pin field. An empty field is a no-op. Whether the pin
// may be enabled is up to the backend.
func (p *Panel) EnablePin(ctx context.Context) error {
	raw := p.takeInput(&p.pinInput)
	if raw == "" {
		return nil
	}
	pin, err := strconv.Atoi(raw)
	if err != nil {
		return p.fail(fmt.Errorf("%w: pin %q", ErrInvalidInput, raw))
	}

	return p.finish(ctx, p.backend.EnablePin(ctx, pin))
}

// DisablePin disables pin and re-fetches. The input fields are not involved.
func (p *Panel) DisablePin(ctx context.Context, pin int) error {
	return p.finish(ctx, p.backend.DisablePin(ctx, pin))
}

// Close hides the panel, discards the inputs and always re-fetches.
func (p *Panel) Close(ctx context.Context) error {
	p.mu.Lock()
	p.shown = false
	p.durationInput = ""
	p.pinInput = ""
	p.errMsg = ""
	p.mu.Unlock()

	return p.refresh(ctx)
}

// takeInput returns the trimmed field and clears it.
func (p *Panel) takeInput(field *string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	raw := strings.TrimSpace(*field)
	*field = ""
	return raw
}

func (p *Panel) fail(err error) error {
	p.mu.Lock()
	p.errMsg = err.Error()
	p.mu.Unlock()
	return err
}

// finish records the mutation outcome and re-fetches exactly once.
func (p *Panel) finish(ctx context.Context, err error) error {
	p.mu.Lock()
	if err != nil {
		p.errMsg = err.Error()
	} else {
		p.errMsg = ""
	}
	p.mu.Unlock()

	if err != nil {
		log.Printf("config: %v", err)
	}
	if rerr := p.refresh(ctx); rerr != nil && err == nil {
		return rerr
	}
	return err
}
