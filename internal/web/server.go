// Package web serves the launch panel interface over HTTP.
// Pages are rendered server-side from the shell's view; buttons are plain
// form posts answered with a redirect back to the page.
package web

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sweeney/drpiro/internal/shell"
	"github.com/sweeney/drpiro/internal/status"
)

// Server serves the interface over HTTP.
type Server struct {
	httpServer *http.Server
	shell      *shell.Shell
}

// New creates a Server rendering the given shell.
func New(addr string, sh *shell.Shell) *Server {
	s := &Server{shell: sh}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/index.html", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/index.json", s.handleJSON).Methods(http.MethodGet)
	r.HandleFunc("/status.json", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/launchers/{label:[0-9]+}/fire", s.handleFire).Methods(http.MethodPost)
	r.HandleFunc("/config/toggle", s.handleToggle).Methods(http.MethodPost)
	r.HandleFunc("/config/duration", s.handleDuration).Methods(http.MethodPost)
	r.HandleFunc("/config/enable", s.handleEnable).Methods(http.MethodPost)
	r.HandleFunc("/config/pins/{pin:[0-9]+}/disable", s.handleDisable).Methods(http.MethodPost)
	r.HandleFunc("/config/close", s.handleClose).Methods(http.MethodPost)

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

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, s.shell.View()); err != nil {
		log.Printf("render: %v", err)
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatJSON(s.shell.View(), s.shell.Tracker().Snapshot()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(s.shell.Tracker().Snapshot()))
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	label, _ := strconv.Atoi(mux.Vars(r)["label"])
	// Fire failures are shown on the launcher itself.
	if err := s.shell.Fire(r.Context(), label); errors.Is(err, shell.ErrUnknownLauncher) {
		http.NotFound(w, r)
		return
	}
	back(w, r)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.shell.ToggleConfig()
	back(w, r)
}

func (s *Server) handleDuration(w http.ResponseWriter, r *http.Request) {
	p := s.shell.Panel()
	p.SetDurationInput(r.FormValue("duration"))
	p.SaveDuration(r.Context())
	back(w, r)
}

func (s *Server) handleEnable(w http.ResponseWriter, r *http.Request) {
	p := s.shell.Panel()
	p.SetPinInput(r.FormValue("pin"))
	p.EnablePin(r.Context())
	back(w, r)
}

func (s *Server) handleDisable(w http.ResponseWriter, r *http.Request) {
	pin, err := strconv.Atoi(mux.Vars(r)["pin"])
	if err != nil {
		http.Error(w, "invalid pin", http.StatusBadRequest)
		return
	}
	s.shell.Panel().DisablePin(r.Context(), pin)
	back(w, r)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	s.shell.CloseConfig(r.Context())
	back(w, r)
}

// back redirects the browser to the page after a form post.
func back(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
