// Command drpiro serves the launch panel and forwards operator actions to the pin server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/drpiro/internal/api"
	"github.com/sweeney/drpiro/internal/logging"
	"github.com/sweeney/drpiro/internal/mqtt"
	"github.com/sweeney/drpiro/internal/shell"
	"github.com/sweeney/drpiro/internal/status"
	"github.com/sweeney/drpiro/internal/web"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8000", "Pin server base URL")
	httpAddr := flag.String("http", ":8080", "HTTP address for the launch panel")
	broker := flag.String("broker", "", "MQTT broker address (empty to disable)")
	clientID := flag.String("client-id", "drpiro", "MQTT client ID")
	timeout := flag.Duration("timeout", 5*time.Second, "Pin server request timeout")
	statusInterval := flag.Duration("status-interval", 10*time.Second, "How often connection status is sampled")
	logFile := flag.String("log-file", "", "Rotated log file (empty for stderr only)")

	flag.Parse()

	closer := logging.Setup(logging.Options{File: *logFile, MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28})
	defer closer.Close()

	if err := run(*apiURL, *httpAddr, *broker, *clientID, *timeout, *statusInterval); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(apiURL, httpAddr, broker, clientID string, timeout, statusInterval time.Duration) error {
	if apiURL == "" {
		return fmt.Errorf("--api is required")
	}
	if statusInterval <= 0 {
		return fmt.Errorf("--status-interval must be positive")
	}

	client := api.New(apiURL, &http.Client{Timeout: timeout})

	tracker := status.NewTracker(time.Now(), status.Config{
		APIURL:   apiURL,
		Broker:   broker,
		HTTPAddr: httpAddr,
	})

	// Publisher stays nil when MQTT is disabled.
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	opts := shell.Options{Tracker: tracker}
	if broker != "" {
		rp := mqtt.NewRealPublisher(broker, clientID)
		defer rp.Close()
		publisher, mqttStatus, opts.Sink = rp, rp, rp
	}

	sh := shell.New(client, opts)
	defer sh.Close()
	sh.Mount(context.Background())

	if publisher != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	srv := web.New(httpAddr, sh)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()
	log.Printf("launch panel listening on %s", httpAddr)

	log.Printf("started: api=%s broker=%q", apiURL, broker)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(publisher, mqttStatus, tracker, time.Now, ticker.C, sigCh)
}

func runLoop(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if publisher == nil {
				return nil
			}
			reason := signalName(s)
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			snap := tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     reason,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
