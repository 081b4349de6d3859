package launcher

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Options carries the optional collaborators of a Launcher.
type Options struct {
	Clock clockwork.Clock // defaults to the real clock
	Sink  Sink            // may be nil

	// Fetches returns the ticket of the most recently started configuration
	// fetch. A snapshot passed to Sync under a later ticket ends a local
	// forced disable. If nil, only a triggered snapshot ends it.
	Fetches func() uint64
}

// Launcher is the fire control for one pin. Safe for concurrent use.
type Launcher struct {
	pin     int
	label   int
	firer   Firer
	clock   clockwork.Clock
	sink    Sink
	fetches func() uint64

	mu        sync.Mutex
	duration  time.Duration
	triggered bool
	mode      Mode
	clicked   bool
	errMsg    string
	timer     clockwork.Timer
	notice    uint64 // generation of the current notice timer
	firedAt   uint64 // latest fetch ticket when the fire succeeded
	closed    bool
}

// New creates a Launcher for pin shown as "Launcher <label>". triggered seeds
// the disabled state; duration is how long the fire notice stays visible.
func New(pin, label int, triggered bool, duration time.Duration, firer Firer, opts Options) *Launcher {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Launcher{
		pin:       pin,
		label:     label,
		firer:     firer,
		clock:     clock,
		sink:      opts.Sink,
		fetches:   opts.Fetches,
		duration:  duration,
		triggered: triggered,
	}
}

// Pin returns the pin id.
func (l *Launcher) Pin() int { return l.pin }

// Label returns the 1-based display position.
func (l *Launcher) Label() int { return l.label }

// State returns a snapshot of the control.
func (l *Launcher) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{
		Pin:      l.pin,
		Label:    l.label,
		Clicked:  l.clicked,
		Error:    l.errMsg,
		Disabled: l.disabledLocked(),
		Mode:     l.mode,
	}
}

// Fire shows the notice, then asks the backend to fire the pin.
// On success the control becomes disabled; on failure the error is kept for
// display and the control stays fireable. The backend error is also returned.
func (l *Launcher) Fire(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.disabledLocked() {
		l.mu.Unlock()
		return ErrDisabled
	}
	l.errMsg = ""
	if !l.clicked {
		l.clicked = true
		l.startNoticeLocked()
	}
	l.mu.Unlock()

	l.emit(EventFireRequested, "")

	err := l.firer.FirePin(ctx, l.pin)

	l.mu.Lock()
	if l.closed {
		// Unmounted while the request was in flight.
		l.mu.Unlock()
		return err
	}
	if err != nil {
		l.errMsg = "Failed to launch: " + err.Error()
	} else {
		l.mode = ForcedDisabledLocally
		l.firedAt = ^uint64(0)
		if l.fetches != nil {
			l.firedAt = l.fetches()
		}
	}
	l.mu.Unlock()

	if err != nil {
		log.Printf("launcher %d (pin %d): fire failed: %v", l.label, l.pin, err)
		l.emit(EventFireFailed, err.Error())
		return err
	}
	log.Printf("launcher %d (pin %d): fired", l.label, l.pin)
	l.emit(EventFired, "")
	return nil
}

// Sync applies a snapshot fetched under ticket to the control.
// A local forced disable is handed back to the configuration once the backend
// reports the pin as triggered, or once a fetch started after the fire
// succeeded reports anything at all. A duration change restarts a visible
// notice.
func (l *Launcher) Sync(ticket uint64, triggered bool, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.triggered = triggered
	if l.mode == ForcedDisabledLocally && (triggered || ticket > l.firedAt) {
		l.mode = FollowsConfig
	}
	if duration != l.duration {
		l.duration = duration
		if l.clicked {
			l.startNoticeLocked()
		}
	}
}

// Close unmounts the control. A pending notice timer is cancelled and no
// further state changes happen.
func (l *Launcher) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.notice++
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *Launcher) disabledLocked() bool {
	if l.mode == ForcedDisabledLocally {
		return true
	}
	return l.triggered
}

// startNoticeLocked (re)starts the timer that hides the notice. Any earlier
// timer is stopped and its callback, should it still run, is ignored.
func (l *Launcher) startNoticeLocked() {
	if l.timer != nil {
		l.timer.Stop()
	}
	l.notice++
	gen := l.notice
	l.timer = l.clock.AfterFunc(l.duration, func() {
		l.clearNotice(gen)
	})
}

func (l *Launcher) clearNotice(gen uint64) {
	l.mu.Lock()
	if l.closed || gen != l.notice || !l.clicked {
		l.mu.Unlock()
		return
	}
	l.clicked = false
	l.timer = nil
	l.mu.Unlock()

	l.emit(EventNoticeCleared, "")
}

func (l *Launcher) emit(typ EventType, errMsg string) {
	if l.sink == nil {
		return
	}
	event := Event{
		ID:        uuid.NewString(),
		Timestamp: l.clock.Now(),
		Type:      typ,
		Pin:       l.pin,
		Label:     l.label,
		Error:     errMsg,
	}
	if err := l.sink.Publish(event); err != nil {
		log.Printf("publish error: %v", err)
	}
}
