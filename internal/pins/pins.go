// Package pins contains the pin configuration snapshot shared by the UI and
// the pin server. This package has NO external dependencies (no HTTP, GPIO,
// MQTT or clocks).
package pins

import (
	"encoding/json"
	"time"
)

// Config is an immutable snapshot of the backend pin configuration.
// Pins is ordered: position i is displayed as "Launcher i+1".
// Callers must not mutate the slices of a Config they did not build.
type Config struct {
	Pins      []int
	Triggered []int
	Duration  float64 // seconds
}

// Empty is the configuration before the first successful fetch.
var Empty = Config{Pins: []int{}, Triggered: []int{}}

// wireConfig is the JSON representation used on /api/fire/.
type wireConfig struct {
	Pins      []int   `json:"pins"`
	Triggered []int   `json:"triggered"`
	Duration  float64 `json:"duration"`
}

// MarshalJSON encodes the snapshot as {"pins":[..],"triggered":[..],"duration":n}.
func (c Config) MarshalJSON() ([]byte, error) {
	w := wireConfig{Pins: c.Pins, Triggered: c.Triggered, Duration: c.Duration}
	if w.Pins == nil {
		w.Pins = []int{}
	}
	if w.Triggered == nil {
		w.Triggered = []int{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a snapshot. A missing triggered list is treated as empty.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w wireConfig
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.Pins = w.Pins
	if c.Pins == nil {
		c.Pins = []int{}
	}
	c.Triggered = w.Triggered
	if c.Triggered == nil {
		c.Triggered = []int{}
	}
	c.Duration = w.Duration
	return nil
}

// IsTriggered reports whether pin is in the triggered set.
func (c Config) IsTriggered(pin int) bool {
	return contains(c.Triggered, pin)
}

// PinAt returns the pin displayed with the given 1-based label.
func (c Config) PinAt(label int) (int, bool) {
	if label < 1 || label > len(c.Pins) {
		return 0, false
	}
	return c.Pins[label-1], true
}

// NoticeDuration converts Duration to a time.Duration.
func (c Config) NoticeDuration() time.Duration {
	return Seconds(c.Duration)
}

// Seconds converts a (possibly fractional) number of seconds to a time.Duration.
// Negative values are clamped to zero.
func Seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

func contains(list []int, pin int) bool {
	for _, p := range list {
		if p == pin {
			return true
		}
	}
	return false
}
