// Package httpapi serves the optional read-only monitor endpoints: health,
// Prometheus metrics, the latest ranked opportunities, and the live hedge
// book. It is never required for the scan/trade loops to function — it is
// started only when --serve is passed.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quotehedge/contango-scan/internal/evaluator"
	"github.com/quotehedge/contango-scan/internal/hedge"
	"github.com/quotehedge/contango-scan/internal/metrics"
)

// VenueHealth reports the age of the last observed quote for one venue.
type VenueHealth struct {
	Venue        string    `json:"venue"`
	LastUpdate   time.Time `json:"last_update"`
	AgeSeconds   float64   `json:"age_seconds"`
	InstrumentCt int       `json:"instrument_count"`
}

// State is the read-only snapshot source the server's handlers pull from on
// every request. The scan/trade loop owns the concrete values; the server
// never mutates them.
type State struct {
	StartedAt     time.Time
	VenueHealth   func() []VenueHealth
	Opportunities func() []evaluator.Opportunity
	Positions     func() []*hedge.Position
}

// Server wraps a gorilla/mux router exposing the monitor endpoints.
type Server struct {
	router *mux.Router
	http   *http.Server
	state  State
	promReg *prometheus.Registry
}

// New builds the router and binds it to addr; call ListenAndServe to begin serving.
func New(addr string, state State, promReg *prometheus.Registry) *Server {
	s := &Server{state: state, promReg: promReg}
	s.router = mux.NewRouter()
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler(promReg)).Methods(http.MethodGet)
	s.router.HandleFunc("/opportunities", s.handleOpportunities).Methods(http.MethodGet)
	s.router.HandleFunc("/positions", s.handlePositions).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until the server errors or is shut
// down. http.ErrServerClosed is swallowed — a clean Shutdown is not an
// error.
func (s *Server) ListenAndServe() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type healthResponse struct {
	Status    string        `json:"status"`
	Uptime    string        `json:"uptime"`
	Venues    []VenueHealth `json:"venues"`
	Timestamp time.Time     `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	venues := s.state.VenueHealth()
	status := "healthy"
	for _, v := range venues {
		if v.AgeSeconds > 60 {
			status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    status,
		Uptime:    time.Since(s.state.StartedAt).String(),
		Venues:    venues,
		Timestamp: time.Now(),
	})
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Opportunities())
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Positions())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
