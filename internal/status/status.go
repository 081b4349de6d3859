// Package status holds the current pin configuration snapshot for the UI daemon.
// It is read by the shell, the HTTP handlers and the MQTT status events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/drpiro/internal/pins"
)

// Config contains daemon configuration for display.
type Config struct {
	APIURL   string // pin server base URL
	Broker   string // empty = MQTT disabled
	HTTPAddr string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Pins          pins.Config
	Fetched       bool      // at least one fetch succeeded
	LastFetch     time.Time // time of the last applied fetch
	LastError     string    // last fetch failure, cleared on success
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds the configuration snapshot behind an RWMutex.
//
// Fetches are sequenced: Begin hands out increasing tickets and a result is
// only applied if no later-started fetch has been applied already.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	next    uint64
	applied uint64
	now     func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
// The pin configuration starts out empty.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Pins:      pins.Empty,
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Begin returns the ticket for a fetch about to start.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	return t.next
}

// Latest returns the ticket of the most recently started fetch, or 0 if none
// has started.
func (t *Tracker) Latest() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.next
}

// Apply stores cfg fetched under ticket. It returns false, leaving the
// snapshot untouched, if a newer fetch has already been applied.
func (t *Tracker) Apply(ticket uint64, cfg pins.Config) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket <= t.applied {
		return false
	}
	t.applied = ticket
	t.snap.Pins = cfg
	t.snap.Fetched = true
	t.snap.LastFetch = t.now()
	t.snap.LastError = ""
	return true
}

// Fail records a failed fetch. The pin configuration is left as it was.
func (t *Tracker) Fail(ticket uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket <= t.applied {
		return
	}
	t.snap.LastError = err.Error()
}

// Pins returns the current configuration snapshot.
func (t *Tracker) Pins() pins.Config {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.Pins
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
