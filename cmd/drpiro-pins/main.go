// Command drpiro-pins serves the pin configuration resource and pulses GPIO lines on fire.
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

	"github.com/sweeney/drpiro/internal/gpio"
	"github.com/sweeney/drpiro/internal/logging"
	"github.com/sweeney/drpiro/internal/pinserver"
)

func main() {
	listen := flag.String("listen", "0.0.0.0:8000", "Address and port to listen on")
	start := flag.Int("start", 1, "First pin")
	end := flag.Int("end", 16, "Last pin")
	duration := flag.Float64("duration", 1, "Initial notice duration in seconds")
	pulse := flag.Duration("pulse", time.Second, "How long a fired pin is held high")
	fake := flag.Bool("fake", false, "Use an in-memory GPIO driver instead of "+gpio.Chip)
	logFile := flag.String("log-file", "", "Rotated log file (empty for stderr only)")

	flag.Parse()

	closer := logging.Setup(logging.Options{File: *logFile, MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28})
	defer closer.Close()

	cfg := pinserver.Config{Start: *start, End: *end, Duration: *duration, Pulse: *pulse}
	if err := run(*listen, cfg, *fake); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func validate(cfg pinserver.Config) error {
	if cfg.Start < 0 || cfg.End < cfg.Start {
		return fmt.Errorf("invalid pin range %d..%d", cfg.Start, cfg.End)
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("--duration must not be negative")
	}
	if cfg.Pulse < 0 {
		return fmt.Errorf("--pulse must not be negative")
	}
	return nil
}

func newDriver(fake bool) (gpio.Driver, error) {
	if fake {
		return gpio.NewFakeDriver(), nil
	}
	d, err := gpio.NewRealDriver()
	if err != nil {
		return nil, fmt.Errorf("init gpio: %w", err)
	}
	return d, nil
}

func run(listen string, cfg pinserver.Config, fake bool) error {
	if err := validate(cfg); err != nil {
		return err
	}

	driver, err := newDriver(fake)
	if err != nil {
		return err
	}
	defer driver.Close()

	srv := pinserver.New(listen, cfg, driver, nil)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	log.Printf("started: listen=%s pins=%d..%d pulse=%v fake=%v", listen, cfg.Start, cfg.End, cfg.Pulse, fake)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sigCh:
		log.Printf("received %v, shutting down", s)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
