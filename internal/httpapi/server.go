package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"holidaze/internal/api"
	"holidaze/internal/booking"

	"github.com/rs/zerolog"
)

// Checker quotes a stay at a venue.
type Checker interface {
	Check(ctx context.Context, venueID, from, to string) (*booking.Quote, error)
}

// Pinger reports readiness of a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the local companion API: health probes plus availability lookups
// a web page or another tool can call instead of the raw Holidaze API.
type Server struct {
	checker Checker
	venues  booking.VenueSource
	ready   Pinger
	logger  zerolog.Logger
}

func NewServer(checker Checker, venues booking.VenueSource, ready Pinger, logger *zerolog.Logger) *Server {
	return &Server{
		checker: checker,
		venues:  venues,
		ready:   ready,
		logger:  logger.With().Str("component", "httpapi").Logger(),
	}
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/venues/{id}/availability", s.handleAvailability)
	mux.HandleFunc("/api/venues/{id}/booked-dates", s.handleBookedDates)
	return mux
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", addr).Msg("companion api listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("companion api: %w", err)
	}
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctxPing, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := s.ready.Ping(ctxPing); err != nil {
			http.Error(w, "session store not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeUpstreamError maps an API failure onto a response.
func (s *Server) writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		writeError(w, apiErr.Status, apiErr.Message)
	case errors.Is(err, api.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, api.Message(err))
	default:
		s.logger.Error().Err(err).Msg("upstream request failed")
		writeError(w, http.StatusBadGateway, "upstream request failed")
	}
}
