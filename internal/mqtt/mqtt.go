// Package mqtt publishes launcher and system events to MQTT, with an
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/drpiro/internal/launcher"
)

const (
	// Topic carries launcher events at QoS 0.
	Topic = "drpiro/launcher/events"

	// TopicSystem carries STARTUP, SHUTDOWN and the OFFLINE will at QoS 1.
	TopicSystem = "drpiro/system"
)

// Publisher publishes events to MQTT. It satisfies launcher.Sink.
// Publishing never blocks the caller on an unreachable broker and its errors
// are for logging only.
type Publisher interface {
	Publish(event launcher.Event) error
	PublishSystem(event SystemEvent) error
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a daemon lifecycle event.
type SystemEvent struct {
	Timestamp time.Time
	Event     string // STARTUP, SHUTDOWN, OFFLINE
	Reason    string // signal name on SHUTDOWN

	// RawPayload, if set, is sent as-is instead of the minimal system payload.
	// Startup and shutdown use it to carry the full status snapshot.
	RawPayload []byte
	Retained   bool
}

// Payload is the JSON body published on Topic.
type Payload struct {
	Launcher LauncherPayload `json:"launcher"`
}

// LauncherPayload describes one launcher event.
type LauncherPayload struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Pin       int    `json:"pin"`
	Label     int    `json:"label"`
	Error     string `json:"error,omitempty"`
}

// FormatPayload encodes a launcher event.
func FormatPayload(event launcher.Event) ([]byte, error) {
	return json.Marshal(Payload{Launcher: LauncherPayload{
		ID:        event.ID,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Pin:       event.Pin,
		Label:     event.Label,
		Error:     event.Error,
	}})
}

// SystemPayload is the minimal system body, used when no snapshot is attached
// (the OFFLINE will).
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner holds the system event fields.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload encodes a system event, passing RawPayload through.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{System: SystemPayloadInner{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     event.Event,
		Reason:    event.Reason,
	}})
}

// launcherMessage builds the wire message for a launcher event.
func launcherMessage(event launcher.Event) (bufferedMsg, error) {
	payload, err := FormatPayload(event)
	if err != nil {
		return bufferedMsg{}, fmt.Errorf("format payload: %w", err)
	}
	return bufferedMsg{topic: Topic, payload: payload}, nil
}

// systemMessage builds the wire message for a system event.
func systemMessage(event SystemEvent) (bufferedMsg, error) {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return bufferedMsg{}, fmt.Errorf("format system payload: %w", err)
	}
	return bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained}, nil
}
