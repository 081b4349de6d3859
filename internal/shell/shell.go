// Package shell is the top of the launch panel UI. It owns the single pin
// configuration snapshot, fetches it on mount, keeps one launcher per
// configured pin and owns the configuration panel's visibility.
package shell

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sweeney/drpiro/internal/launcher"
	"github.com/sweeney/drpiro/internal/panel"
	"github.com/sweeney/drpiro/internal/pins"
	"github.com/sweeney/drpiro/internal/status"
)

// Backend is everything the UI needs from the pin server.
type Backend interface {
	GetPinConfig(ctx context.Context) (pins.Config, error)
	launcher.Firer
	panel.Backend
}

// ErrUnknownLauncher is returned by Fire for a label with no launcher.
var ErrUnknownLauncher = errors.New("unknown launcher")

// Options carries the optional collaborators of a Shell.
type Options struct {
	Clock   clockwork.Clock // launcher notice timers; defaults to the real clock
	Sink    launcher.Sink   // launcher events; may be nil
	Tracker *status.Tracker // defaults to a fresh tracker
}

// View is an immutable rendering model of the whole interface.
type View struct {
	Config         pins.Config
	Launchers      []launcher.State
	Panel          panel.State
	DisableButtons []panel.DisableButton
	NoticeVisible  bool // at least one "Launching" notice is showing
}

// Shell holds the UI state. Safe for concurrent use.
type Shell struct {
	backend  Backend
	tracker  *status.Tracker
	lopts    launcher.Options
	panel    *panel.Panel
	mountOne sync.Once

	// mu serialises applying a snapshot with reconciling the launchers.
	mu        sync.Mutex
	launchers []*launcher.Launcher
}

// New creates a Shell. Nothing is fetched until Mount.
func New(backend Backend, opts Options) *Shell {
	tracker := opts.Tracker
	if tracker == nil {
		tracker = status.NewTracker(time.Now(), status.Config{})
	}
	s := &Shell{
		backend: backend,
		tracker: tracker,
		lopts:   launcher.Options{Clock: opts.Clock, Sink: opts.Sink, Fetches: tracker.Latest},
	}
	s.panel = panel.New(backend, s.Refresh)
	return s
}

// Mount fetches the configuration. Only the first call does anything. A
// failed fetch is logged and the configuration stays empty.
func (s *Shell) Mount(ctx context.Context) {
	s.mountOne.Do(func() {
		s.Refresh(ctx)
	})
}

// Refresh re-fetches the configuration and replaces the snapshot wholesale.
// A response overtaken by a newer fetch is dropped.
func (s *Shell) Refresh(ctx context.Context) error {
	ticket := s.tracker.Begin()
	cfg, err := s.backend.GetPinConfig(ctx)
	if err != nil {
		s.tracker.Fail(ticket, err)
		log.Printf("failed to fetch pin config: %v", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tracker.Apply(ticket, cfg) {
		log.Printf("dropping stale pin config (fetch %d)", ticket)
		return nil
	}
	s.reconcileLocked(ticket, cfg)
	return nil
}

// reconcileLocked keeps launchers whose position still holds the same pin
// and unmounts the rest.
func (s *Shell) reconcileLocked(ticket uint64, cfg pins.Config) {
	d := cfg.NoticeDuration()
	old := s.launchers
	next := make([]*launcher.Launcher, 0, len(cfg.Pins))

	for i, pin := range cfg.Pins {
		triggered := cfg.IsTriggered(pin)
		if i < len(old) {
			if old[i].Pin() == pin {
				old[i].Sync(ticket, triggered, d)
				next = append(next, old[i])
				continue
			}
			old[i].Close()
		}
		next = append(next, launcher.New(pin, i+1, triggered, d, s.backend, s.lopts))
	}
	for i := len(cfg.Pins); i < len(old); i++ {
		old[i].Close()
	}
	s.launchers = next
}

// Fire fires the launcher shown with the given 1-based label. Failures are
// kept on the launcher for display; the error is returned for logging only.
func (s *Shell) Fire(ctx context.Context, label int) error {
	s.mu.Lock()
	var l *launcher.Launcher
	if pin, ok := s.tracker.Pins().PinAt(label); ok && label <= len(s.launchers) {
		if cand := s.launchers[label-1]; cand.Pin() == pin {
			l = cand
		}
	}
	s.mu.Unlock()

	if l == nil {
		return fmt.Errorf("%w %d", ErrUnknownLauncher, label)
	}
	return l.Fire(ctx)
}

// Panel returns the configuration panel.
func (s *Shell) Panel() *panel.Panel {
	return s.panel
}

// ToggleConfig shows or hides the configuration panel.
func (s *Shell) ToggleConfig() {
	s.panel.Toggle()
}

// CloseConfig hides the configuration panel and re-fetches.
func (s *Shell) CloseConfig(ctx context.Context) error {
	return s.panel.Close(ctx)
}

// Tracker returns the snapshot tracker.
func (s *Shell) Tracker() *status.Tracker {
	return s.tracker
}

// View returns the current rendering model.
func (s *Shell) View() View {
	s.mu.Lock()
	cfg := s.tracker.Pins()
	launchers := s.launchers
	s.mu.Unlock()

	v := View{
		Config:         cfg,
		Launchers:      make([]launcher.State, len(launchers)),
		Panel:          s.panel.State(),
		DisableButtons: panel.DisableButtons(cfg),
	}
	for i, l := range launchers {
		v.Launchers[i] = l.State()
		if v.Launchers[i].Clicked {
			v.NoticeVisible = true
		}
	}
	return v
}

// Close unmounts every launcher, cancelling pending notice timers.
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.launchers {
		l.Close()
	}
	s.launchers = nil
}
