package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drpiro.log")
	closer := Setup(Options{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	log.Printf("fired pin %d", 19)
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "fired pin 19") {
		t.Errorf("log file missing message, got %q", data)
	}
}

func TestSetupStderrOnly(t *testing.T) {
	closer := Setup(Options{})
	if err := closer.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
