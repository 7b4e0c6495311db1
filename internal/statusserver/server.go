// Package statusserver exposes a running wait over HTTP so supervisors can
// see what a blocked pidwait is waiting on.
package statusserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// States reported by /status
const (
	StateValidating = "validating"
	StateWaiting    = "waiting"
	StateDone       = "done"
)

// Status is the /status payload
type Status struct {
	PID            int     `json:"pid"`
	Method         string  `json:"method,omitempty"`
	State          string  `json:"state"`
	Outcome        string  `json:"outcome,omitempty"`
	WaitingSeconds float64 `json:"waiting_seconds"`
}

// Server serves health, status and metrics for one wait
type Server struct {
	mu      sync.RWMutex
	status  Status
	started time.Time

	router   *mux.Router
	srv      *http.Server
	listener net.Listener

	// OnError receives background serve failures
	OnError func(error)
}

// New builds the router. Nothing listens until Start.
func New(pid int, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		status:  Status{PID: pid, State: StateValidating},
		started: time.Now(),
		router:  mux.NewRouter(),
	}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return s
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves in the background
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// A broken listener never interrupts the wait itself.
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && s.OnError != nil {
			s.OnError(err)
		}
	}()
	return nil
}

// Addr returns the bound address, useful with ":0"
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops serving
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// SetWaiting records that the handle is acquired and the wait has begun
func (s *Server) SetWaiting(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = StateWaiting
	s.status.Method = method
}

// SetDone records the final outcome
func (s *Server) SetDone(outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = StateDone
	s.status.Outcome = outcome
}

// Snapshot returns the current status
func (s *Server) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.WaitingSeconds = time.Since(s.started).Seconds()
	return st
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Snapshot())
}
