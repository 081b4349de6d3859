package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/drpiro/internal/pins"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string      `json:"event,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	Pins          pins.Config `json:"pins"`
	Fetched       bool        `json:"fetched"`
	LastFetch     string      `json:"last_fetch,omitempty"`
	LastError     string      `json:"last_error,omitempty"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	MQTT          MQTTStatus  `json:"mqtt"`
	Config        ConfigJSON  `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	APIURL   string `json:"api_url"`
	Broker   string `json:"broker"`
	HTTPAddr string `json:"http_addr"`
}

// BuildInner converts a snapshot to its JSON form (no event/reason).
func BuildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Pins:          snap.Pins,
		Fetched:       snap.Fetched,
		LastError:     snap.LastError,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			APIURL:   snap.Config.APIURL,
			Broker:   snap.Config.Broker,
			HTTPAddr: snap.Config.HTTPAddr,
		},
	}
	if !snap.LastFetch.IsZero() {
		inner.LastFetch = snap.LastFetch.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the indented JSON status.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: BuildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := BuildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
