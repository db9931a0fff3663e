package account

import (
	"context"
	"errors"
	"strings"

	"holidaze/internal/models"
	"holidaze/internal/session"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotLoggedIn        = errors.New("log in first")
	ErrAvatarURLRequired  = errors.New("avatar URL is required")
	ErrCredentialsMissing = errors.New("email and password are required")
)

// AuthAPI is the part of the API used for sign-in and profiles.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.Profile, error)
	GetProfile(ctx context.Context, name string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, name string, upd models.ProfileUpdate) (*models.Profile, error)
	GetProfileBookings(ctx context.Context, name string) ([]models.Booking, error)
}

// SessionStore is the writable session.
type SessionStore interface {
	Get(ctx context.Context) (session.Session, error)
	Set(ctx context.Context, p session.Patch) error
	Clear(ctx context.Context) error
}

// Overview is the profile page: the user and their own bookings.
type Overview struct {
	Profile  *models.Profile
	Bookings []models.Booking
}

type Service struct {
	api    AuthAPI
	store  SessionStore
	logger zerolog.Logger
}

func NewService(client AuthAPI, store SessionStore, logger *zerolog.Logger) *Service {
	return &Service{
		api:    client,
		store:  store,
		logger: logger.With().Str("component", "account").Logger(),
	}
}

// Login signs in, stores the token and name, then reads the profile to learn
// the role and avatar.
func (s *Service) Login(ctx context.Context, email, password string) (session.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return session.Session{}, ErrCredentialsMissing
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return session.Session{}, err
	}

	patch := session.Patch{
		Token:        session.String(res.AccessToken),
		Name:         session.String(res.Name),
		VenueManager: res.VenueManager,
	}
	patch.AvatarURL, patch.AvatarAlt = avatarPatch(res.Avatar)
	if err := s.store.Set(ctx, patch); err != nil {
		return session.Session{}, err
	}

	profile, err := s.api.GetProfile(ctx, res.Name)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", res.Name).Msg("profile lookup after login failed")
	} else if err := s.store.Set(ctx, profilePatch(profile)); err != nil {
		return session.Session{}, err
	}

	s.logger.Info().Str("name", res.Name).Msg("logged in")
	return s.store.Get(ctx)
}

// Register creates an account. The caller logs in afterwards.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.Profile, error) {
	p, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("name", p.Name).Bool("venue_manager", p.VenueManager).Msg("registered")
	return p, nil
}

// Logout forgets the session.
func (s *Service) Logout(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// UpdateAvatar sets a new avatar image and remembers it in the session.
func (s *Service) UpdateAvatar(ctx context.Context, url, alt string) (*models.Profile, error) {
	sess, err := s.requireLogin(ctx)
	if err != nil {
		return nil, err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrAvatarURLRequired
	}

	profile, err := s.api.UpdateProfile(ctx, sess.Name, models.ProfileUpdate{
		Avatar: &models.Media{URL: url, Alt: strings.TrimSpace(alt)},
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, profilePatch(profile)); err != nil {
		return nil, err
	}
	return profile, nil
}

// LoadProfile fetches the profile and the user's bookings together and
// refreshes the stored role and avatar.
func (s *Service) LoadProfile(ctx context.Context) (*Overview, error) {
	sess, err := s.requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	var out Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.api.GetProfile(gctx, sess.Name)
		out.Profile = p
		return err
	})
	g.Go(func() error {
		b, err := s.api.GetProfileBookings(gctx, sess.Name)
		out.Bookings = b
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	models.SortBookings(out.Bookings)
	if err := s.store.Set(ctx, profilePatch(out.Profile)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) requireLogin(ctx context.Context) (session.Session, error) {
	sess, err := s.store.Get(ctx)
	if err != nil {
		return session.Session{}, err
	}
	if !sess.LoggedIn() {
		return session.Session{}, ErrNotLoggedIn
	}
	return sess, nil
}

func profilePatch(p *models.Profile) session.Patch {
	patch := session.Patch{VenueManager: session.Bool(p.VenueManager)}
	patch.AvatarURL, patch.AvatarAlt = avatarPatch(p.Avatar)
	return patch
}

func avatarPatch(m *models.Media) (url, alt *string) {
	if m == nil {
		return nil, nil
	}
	return session.String(m.URL), session.String(m.Alt)
}
