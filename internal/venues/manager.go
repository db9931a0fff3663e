package venues

import (
	"context"
	"errors"
	"fmt"

	"holidaze/internal/api"
	"holidaze/internal/models"
	"holidaze/internal/session"

	"github.com/rs/zerolog"
)

var (
	ErrNotLoggedIn = errors.New("log in to manage venues")
	ErrNotManager  = errors.New("only venue managers can manage venues")
	ErrNotOwner    = errors.New("this venue belongs to another manager")
)

// DefaultUpcomingLimit caps the bookings listed per venue.
const DefaultUpcomingLimit = 20

// ManagerAPI is the part of the API a venue manager uses.
type ManagerAPI interface {
	GetProfileVenues(ctx context.Context, name string) ([]models.Venue, error)
	GetVenue(ctx context.Context, id string, opts api.VenueOptions) (*models.Venue, error)
	CreateVenue(ctx context.Context, in models.VenueInput) (*models.Venue, error)
	UpdateVenue(ctx context.Context, id string, in models.VenueInput) (*models.Venue, error)
	DeleteVenue(ctx context.Context, id string) error
}

// SessionReader exposes the signed-in user.
type SessionReader interface {
	Get(ctx context.Context) (session.Session, error)
}

// Manager runs the venue manager dashboard actions.
type Manager struct {
	api     ManagerAPI
	session SessionReader
	logger  zerolog.Logger
}

func NewManager(client ManagerAPI, sess SessionReader, logger *zerolog.Logger) *Manager {
	return &Manager{
		api:     client,
		session: sess,
		logger:  logger.With().Str("component", "venue_manager").Logger(),
	}
}

func (m *Manager) requireManager(ctx context.Context) (session.Session, error) {
	sess, err := m.session.Get(ctx)
	if err != nil {
		return session.Session{}, err
	}
	if !sess.LoggedIn() {
		return session.Session{}, ErrNotLoggedIn
	}
	if !sess.VenueManager {
		return session.Session{}, ErrNotManager
	}
	return sess, nil
}

// MyVenues lists the signed-in manager's venues with their bookings.
func (m *Manager) MyVenues(ctx context.Context) ([]models.Venue, error) {
	sess, err := m.requireManager(ctx)
	if err != nil {
		return nil, err
	}
	return m.api.GetProfileVenues(ctx, sess.Name)
}

func (m *Manager) Create(ctx context.Context, in models.VenueInput) (*models.Venue, error) {
	if _, err := m.requireManager(ctx); err != nil {
		return nil, err
	}
	v, err := m.api.CreateVenue(ctx, in)
	if err != nil {
		return nil, err
	}
	m.logger.Info().Str("venue_id", v.ID).Str("name", v.Name).Msg("venue created")
	return v, nil
}

// requireOwned loads the venue owner and fails with ErrNotOwner unless it is the
// signed-in manager.
func (m *Manager) requireOwned(ctx context.Context, id string) error {
	sess, err := m.requireManager(ctx)
	if err != nil {
		return err
	}
	v, err := m.api.GetVenue(ctx, id, api.VenueOptions{Owner: true})
	if err != nil {
		return fmt.Errorf("load venue %s: %w", id, err)
	}
	if !v.OwnedBy(sess.Name) {
		return ErrNotOwner
	}
	return nil
}

func (m *Manager) Update(ctx context.Context, id string, in models.VenueInput) (*models.Venue, error) {
	if err := m.requireOwned(ctx, id); err != nil {
		return nil, err
	}
	v, err := m.api.UpdateVenue(ctx, id, in)
	if err != nil {
		return nil, err
	}
	m.logger.Info().Str("venue_id", id).Msg("venue updated")
	return v, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.requireOwned(ctx, id); err != nil {
		return err
	}
	if err := m.api.DeleteVenue(ctx, id); err != nil {
		return err
	}
	m.logger.Info().Str("venue_id", id).Msg("venue deleted")
	return nil
}

// UpcomingBookings returns the bookings of one of the manager's venues ordered
// by check-in, at most limit of them.
func (m *Manager) UpcomingBookings(ctx context.Context, venueID string, limit int) (*models.Venue, []models.Booking, error) {
	sess, err := m.requireManager(ctx)
	if err != nil {
		return nil, nil, err
	}
	v, err := m.api.GetVenue(ctx, venueID, api.VenueOptions{Bookings: true, Owner: true})
	if err != nil {
		return nil, nil, fmt.Errorf("load venue %s: %w", venueID, err)
	}
	if !v.OwnedBy(sess.Name) {
		return nil, nil, ErrNotOwner
	}
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	bookings := append([]models.Booking(nil), v.Bookings...)
	models.SortBookings(bookings)
	if len(bookings) > limit {
		bookings = bookings[:limit]
	}
	return v, bookings, nil
}
