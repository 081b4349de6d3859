package main

import (
	"testing"
	"time"

	"github.com/sweeney/drpiro/internal/gpio"
	"github.com/sweeney/drpiro/internal/pinserver"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     pinserver.Config
		wantErr bool
	}{
		{"defaults", pinserver.Config{Start: 1, End: 16, Duration: 1, Pulse: time.Second}, false},
		{"single pin", pinserver.Config{Start: 19, End: 19}, false},
		{"reversed range", pinserver.Config{Start: 16, End: 1}, true},
		{"negative start", pinserver.Config{Start: -1, End: 4}, true},
		{"negative duration", pinserver.Config{Start: 1, End: 2, Duration: -1}, true},
		{"negative pulse", pinserver.Config{Start: 1, End: 2, Pulse: -time.Second}, true},
	}
	for _, tt := range tests {
		err := validate(tt.cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: got err %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestNewDriverFake(t *testing.T) {
	d, err := newDriver(true)
	if err != nil {
		t.Fatalf("newDriver: %v", err)
	}
	if _, ok := d.(*gpio.FakeDriver); !ok {
		t.Errorf("driver: got %T, want *gpio.FakeDriver", d)
	}
}

func TestRunRejectsInvalidRange(t *testing.T) {
	if err := run(":0", pinserver.Config{Start: 5, End: 1}, true); err == nil {
		t.Error("expected error for reversed range")
	}
}
