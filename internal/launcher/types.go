// Package launcher implements the per-pin fire control: one Launcher per
// configured pin, tracking its fire notice, last error and disablement.
package launcher

import (
	"context"
	"errors"
	"time"
)

// Firer fires a single pin on the backend.
type Firer interface {
	FirePin(ctx context.Context, pin int) error
}

// Sink receives launcher events. Publish errors are logged and otherwise ignored.
type Sink interface {
	Publish(event Event) error
}

// Mode says who decides whether the fire button is disabled.
type Mode int

const (
	// FollowsConfig: disabled exactly when the latest snapshot lists the pin as triggered.
	FollowsConfig Mode = iota
	// ForcedDisabledLocally: disabled after a successful fire, whatever the snapshot says.
	ForcedDisabledLocally
)

func (m Mode) String() string {
	switch m {
	case FollowsConfig:
		return "follows_config"
	case ForcedDisabledLocally:
		return "forced_disabled"
	}
	return "unknown"
}

// EventType names a launcher transition.
type EventType string

const (
	EventFireRequested EventType = "FIRE_REQUESTED"
	EventFired         EventType = "FIRED"
	EventFireFailed    EventType = "FIRE_FAILED"
	EventNoticeCleared EventType = "NOTICE_CLEARED"
)

// Event is a launcher transition to be published.
type Event struct {
	ID        string
	Timestamp time.Time
	Type      EventType
	Pin       int
	Label     int
	Error     string // FIRE_FAILED only
}

// State is a point-in-time view of a Launcher.
type State struct {
	Pin      int
	Label    int
	Clicked  bool   // "Launching N" notice visible
	Error    string // last fire failure, empty if none
	Disabled bool
	Mode     Mode
}

var (
	// ErrDisabled is returned by Fire when the button is disabled.
	ErrDisabled = errors.New("launcher disabled")
	// ErrClosed is returned by Fire after the launcher was unmounted.
	ErrClosed = errors.New("launcher closed")
)
