// Package pinserver is the reference backend for the launch panel. It serves
// the pin configuration resource at /api/fire/ and pulses GPIO lines.
package pinserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/sweeney/drpiro/internal/gpio"
	"github.com/sweeney/drpiro/internal/pins"
)

// Config contains the pin server settings.
type Config struct {
	Start    int           // first valid pin (inclusive)
	End      int           // last valid pin (inclusive)
	Duration float64       // initial notice duration, seconds
	Pulse    time.Duration // how long a fired line is held high
}

// Server serves the pin configuration over HTTP.
type Server struct {
	httpServer *http.Server
	driver     gpio.Driver
	clock      clockwork.Clock
	cfg        Config

	mu        sync.Mutex
	pins      []int
	triggered map[int]bool
	duration  float64
}

// New creates a Server with every pin in [cfg.Start, cfg.End] enabled.
// If clock is nil, the real clock is used.
func New(addr string, cfg Config, driver gpio.Driver, clock clockwork.Clock) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Server{
		driver:    driver,
		clock:     clock,
		cfg:       cfg,
		triggered: make(map[int]bool),
		duration:  cfg.Duration,
	}
	for p := cfg.Start; p <= cfg.End; p++ {
		s.pins = append(s.pins, p)
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/api/fire/", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/fire/", s.handleDuration).Methods(http.MethodPatch)
	r.HandleFunc("/api/fire/{pin}", s.handleFire).Methods(http.MethodGet)
	r.HandleFunc("/api/fire/{pin}", s.handleEnable).Methods(http.MethodPut)
	r.HandleFunc("/api/fire/{pin}", s.handleDisable).Methods(http.MethodDelete)
	r.Use(logRequests)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Handler returns the HTTP handler. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Snapshot returns the current configuration.
func (s *Server) Snapshot() pins.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Server) snapshotLocked() pins.Config {
	cfg := pins.Config{
		Pins:      append([]int{}, s.pins...),
		Triggered: make([]int, 0, len(s.triggered)),
		Duration:  s.duration,
	}
	for p := range s.triggered {
		cfg.Triggered = append(cfg.Triggered, p)
	}
	sort.Ints(cfg.Triggered)
	return cfg
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "Hello API World")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (s *Server) handleDuration(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Duration *float64 `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Duration == nil {
		writeError(w, http.StatusBadRequest, "expected {\"duration\": seconds}")
		return
	}
	if *body.Duration <= 0 {
		writeError(w, http.StatusBadRequest, "duration must be positive")
		return
	}

	s.mu.Lock()
	s.duration = *body.Duration
	cfg := s.snapshotLocked()
	s.mu.Unlock()

	log.Printf("duration set to %gs", *body.Duration)
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	pin, ok := s.pinVar(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	switch {
	case !contains(s.pins, pin):
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("pin %d is disabled", pin))
		return
	case s.triggered[pin]:
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, fmt.Sprintf("pin %d already fired", pin))
		return
	}
	// Claim before pulsing so concurrent requests cannot double-fire.
	s.triggered[pin] = true
	s.mu.Unlock()

	if err := s.pulse(pin); err != nil {
		s.mu.Lock()
		delete(s.triggered, pin)
		s.mu.Unlock()
		log.Printf("fire pin %d: %v", pin, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("fired pin %d", pin)
	w.WriteHeader(http.StatusAccepted)
}

// pulse holds pin high for the configured pulse length.
func (s *Server) pulse(pin int) error {
	if err := s.driver.Set(pin, true); err != nil {
		return err
	}
	if s.cfg.Pulse > 0 {
		s.clock.Sleep(s.cfg.Pulse)
	}
	return s.driver.Set(pin, false)
}

func (s *Server) handleEnable(w http.ResponseWriter, r *http.Request) {
	pin, ok := s.pinVar(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	if !contains(s.pins, pin) {
		s.pins = append(s.pins, pin)
	}
	delete(s.triggered, pin)
	s.mu.Unlock()

	log.Printf("enabled pin %d", pin)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDisable(w http.ResponseWriter, r *http.Request) {
	pin, ok := s.pinVar(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	for i, p := range s.pins {
		if p == pin {
			s.pins = append(s.pins[:i], s.pins[i+1:]...)
			break
		}
	}
	delete(s.triggered, pin)
	s.mu.Unlock()

	log.Printf("disabled pin %d", pin)
	w.WriteHeader(http.StatusNoContent)
}

// pinVar parses {pin} and checks it is inside the configured range.
func (s *Server) pinVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := mux.Vars(r)["pin"]
	pin, err := strconv.Atoi(raw)
	if err != nil || pin < s.cfg.Start || pin > s.cfg.End {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid pin %s", raw))
		return 0, false
	}
	return pin, true
}

func contains(list []int, pin int) bool {
	for _, p := range list {
		if p == pin {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends {"detail": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	data, _ := json.Marshal(map[string]string{"detail": msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start).Truncate(time.Millisecond))
	})
}
