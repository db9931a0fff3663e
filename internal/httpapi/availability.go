package httpapi

import (
	"net/http"
	"strings"

	"holidaze/internal/api"
	"holidaze/internal/availability"
)

// AvailabilityResponse is the body of GET /api/venues/{id}/availability.
type AvailabilityResponse struct {
	VenueID   string                    `json:"venueId"`
	DateFrom  string                    `json:"dateFrom"`
	DateTo    string                    `json:"dateTo"`
	Available bool                      `json:"available"`
	Status    availability.Status       `json:"status"`
	Message   string                    `json:"message,omitempty"`
	Conflict  *availability.BookedRange `json:"conflict"`
	Nights    int                       `json:"nights"`
	Total     float64                   `json:"total"`
}

// BookedDatesResponse is the body of GET /api/venues/{id}/booked-dates.
type BookedDatesResponse struct {
	VenueID string                     `json:"venueId"`
	Ranges  []availability.BookedRange `json:"ranges"`
}

// handleAvailability checks a stay against the venue's current bookings.
// GET /api/venues/{id}/availability?dateFrom=YYYY-MM-DD&dateTo=YYYY-MM-DD
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	venueID := strings.TrimSpace(r.PathValue("id"))
	if venueID == "" {
		writeError(w, http.StatusBadRequest, "venue id is required")
		return
	}

	from := r.URL.Query().Get("dateFrom")
	to := r.URL.Query().Get("dateTo")
	quote, err := s.checker.Check(r.Context(), venueID, from, to)
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}

	resp := AvailabilityResponse{
		VenueID:   venueID,
		DateFrom:  from,
		DateTo:    to,
		Available: quote.Verdict.Available(),
		Status:    quote.Verdict.Status,
		Message:   quote.Verdict.Message,
		Nights:    quote.Nights,
		Total:     quote.Total,
	}
	if c := quote.Verdict.Conflict; c != nil {
		resp.Conflict = &availability.BookedRange{
			ID:   c.ID,
			From: availability.Format(c.DateFrom),
			To:   availability.Format(c.DateTo),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleBookedDates lists the venue's bookings as date ranges.
// GET /api/venues/{id}/booked-dates
func (s *Server) handleBookedDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	venueID := strings.TrimSpace(r.PathValue("id"))
	if venueID == "" {
		writeError(w, http.StatusBadRequest, "venue id is required")
		return
	}

	venue, err := s.venues.GetVenue(r.Context(), venueID, api.VenueOptions{Bookings: true})
	if err != nil {
		s.writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BookedDatesResponse{
		VenueID: venueID,
		Ranges:  availability.BookedRanges(venue.BookingRanges()),
	})
}
