package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"holidaze/internal/api"
	"holidaze/internal/availability"
	"holidaze/internal/metrics"
	"holidaze/internal/models"
	"holidaze/internal/session"

	"github.com/rs/zerolog"
)

var (
	ErrNotLoggedIn      = errors.New("log in to book a venue")
	ErrOwnVenue         = errors.New("you cannot book your own venue")
	ErrDatesUnavailable = errors.New("dates unavailable")
)

// VenueSource fetches a venue with its current bookings.
type VenueSource interface {
	GetVenue(ctx context.Context, id string, opts api.VenueOptions) (*models.Venue, error)
}

// BookingCreator submits a reservation.
type BookingCreator interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
}

// SessionReader exposes the signed-in user.
type SessionReader interface {
	Get(ctx context.Context) (session.Session, error)
}

// UnavailableError carries the verdict that blocked a booking.
type UnavailableError struct {
	Verdict availability.Verdict
}

func (e *UnavailableError) Error() string {
	if e.Verdict.Message != "" {
		return e.Verdict.Message
	}
	return "select both check-in and check-out dates"
}

func (e *UnavailableError) Is(target error) bool { return target == ErrDatesUnavailable }

// Quote is the result of checking a stay against a venue.
type Quote struct {
	Venue   *models.Venue
	Verdict availability.Verdict
	Nights  int
	Total   float64
}

// Request is a booking as entered by the user.
type Request struct {
	VenueID  string
	DateFrom string
	DateTo   string
	Guests   int
}

type Service struct {
	venues   VenueSource
	bookings BookingCreator
	session  SessionReader
	logger   zerolog.Logger
}

func NewService(venues VenueSource, bookings BookingCreator, sess SessionReader, logger *zerolog.Logger) *Service {
	return &Service{
		venues:   venues,
		bookings: bookings,
		session:  sess,
		logger:   logger.With().Str("component", "booking").Logger(),
	}
}

// Check fetches the venue fresh and tests the stay against its bookings.
func (s *Service) Check(ctx context.Context, venueID, from, to string) (*Quote, error) {
	venue, err := s.venues.GetVenue(ctx, venueID, api.VenueOptions{Bookings: true, Owner: true})
	if err != nil {
		return nil, fmt.Errorf("load venue %s: %w", venueID, err)
	}

	verdict := availability.Check(from, to, venue.BookingRanges())
	metrics.IncAvailabilityCheck(string(verdict.Status))

	q := &Quote{Venue: venue, Verdict: verdict}
	if verdict.Available() {
		q.Nights = availability.Nights(from, to)
		q.Total = venue.Total(q.Nights)
	}
	return q, nil
}

// Book re-checks the stay and submits it for the signed-in user.
func (s *Service) Book(ctx context.Context, req Request) (*models.Booking, error) {
	sess, err := s.session.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.LoggedIn() {
		metrics.IncBookingCreated("unauthenticated")
		return nil, ErrNotLoggedIn
	}

	quote, err := s.Check(ctx, req.VenueID, req.DateFrom, req.DateTo)
	if err != nil {
		metrics.IncBookingCreated("error")
		return nil, err
	}
	if quote.Venue.OwnedBy(sess.Name) {
		metrics.IncBookingCreated("own_venue")
		return nil, ErrOwnVenue
	}
	if !quote.Verdict.Available() {
		metrics.IncBookingCreated("unavailable")
		return nil, &UnavailableError{Verdict: quote.Verdict}
	}

	start, end, err := availability.ParseRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}
	guests := req.Guests
	if guests < 1 {
		guests = 1
	}

	created, err := s.bookings.CreateBooking(ctx, models.BookingRequest{
		DateFrom: start.Format(time.RFC3339),
		DateTo:   end.Format(time.RFC3339),
		Guests:   guests,
		VenueID:  req.VenueID,
	})
	if err != nil {
		metrics.IncBookingCreated("error")
		return nil, err
	}

	metrics.IncBookingCreated("created")
	s.logger.Info().Str("venue_id", req.VenueID).Str("booking_id", created.ID).
		Str("from", availability.Format(start)).Str("to", availability.Format(end)).
		Int("guests", guests).Msg("booking created")
	return created, nil
}
