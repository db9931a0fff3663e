package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"holidaze/internal/events"
	"holidaze/internal/metrics"

	"github.com/rs/zerolog"
)

// Keys under which the session fields are persisted.
const (
	KeyToken        = "token"
	KeyName         = "name"
	KeyVenueManager = "venueManager"
	KeyAvatarURL    = "avatarUrl"
	KeyAvatarAlt    = "avatarAlt"
)

var allKeys = []string{KeyToken, KeyName, KeyVenueManager, KeyAvatarURL, KeyAvatarAlt}

// Backend persists string values by key.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// Session is the signed-in user as remembered between commands.
type Session struct {
	Token        string `json:"token,omitempty"`
	Name         string `json:"name,omitempty"`
	VenueManager bool   `json:"venueManager"`
	AvatarURL    string `json:"avatarUrl,omitempty"`
	AvatarAlt    string `json:"avatarAlt,omitempty"`
}

// LoggedIn reports whether a token is present.
func (s Session) LoggedIn() bool { return s.Token != "" }

// Patch is a partial update. Nil fields are left as they are; an empty token or
// name is ignored, an empty avatar field clears it.
type Patch struct {
	Token        *string
	Name         *string
	VenueManager *bool
	AvatarURL    *string
	AvatarAlt    *string
}

// String and Bool build Patch fields.
func String(v string) *string { return &v }
func Bool(v bool) *bool { return &v }

// Store is the session facade handed to the rest of the client.
type Store struct {
	backend Backend
	bus     *events.EventBus
	logger  zerolog.Logger
	mu      sync.Mutex
}

// NewStore wraps backend. Change notifications go through bus.
func NewStore(backend Backend, bus *events.EventBus, logger *zerolog.Logger) *Store {
	if bus == nil {
		bus = events.NewEventBus()
	}
	return &Store{
		backend: backend,
		bus:     bus,
		logger:  logger.With().Str("component", "session").Logger(),
	}
}

// Get reads the current session. A signed-out user gets the zero Session.
func (s *Store) Get(ctx context.Context) (Session, error) {
	values := make(map[string]string, len(allKeys))
	for _, key := range allKeys {
		v, ok, err := s.backend.Get(ctx, key)
		if err != nil {
			return Session{}, fmt.Errorf("read session %s: %w", key, err)
		}
		if ok {
			values[key] = v
		}
	}
	manager, _ := strconv.ParseBool(values[KeyVenueManager])
	return Session{
		Token:        values[KeyToken],
		Name:         values[KeyName],
		VenueManager: manager,
		AvatarURL:    values[KeyAvatarURL],
		AvatarAlt:    values[KeyAvatarAlt],
	}, nil
}

// Token implements api.TokenSource.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, _, err := s.backend.Get(ctx, KeyToken)
	return v, err
}

// Set applies a partial update and notifies subscribers.
func (s *Store) Set(ctx context.Context, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := map[string]string{}
	var cleared []string
	if p.Token != nil && *p.Token != "" {
		set[KeyToken] = *p.Token
	}
	if p.Name != nil && *p.Name != "" {
		set[KeyName] = *p.Name
	}
	if p.VenueManager != nil {
		set[KeyVenueManager] = strconv.FormatBool(*p.VenueManager)
	}
	for key, v := range map[string]*string{KeyAvatarURL: p.AvatarURL, KeyAvatarAlt: p.AvatarAlt} {
		switch {
		case v == nil:
		case *v == "":
			cleared = append(cleared, key)
		default:
			set[key] = *v
		}
	}

	if len(set) > 0 {
		if err := s.backend.Set(ctx, set); err != nil {
			return fmt.Errorf("write session: %w", err)
		}
	}
	if len(cleared) > 0 {
		if err := s.backend.Delete(ctx, cleared...); err != nil {
			return fmt.Errorf("clear session fields: %w", err)
		}
	}

	metrics.IncSessionChange("set")
	return s.notify(ctx)
}

// Clear signs the user out.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, allKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	metrics.IncSessionChange("clear")
	return s.notify(ctx)
}

// Subscribe calls fn with the new session after every Set or Clear. The returned
// function stops the subscription.
func (s *Store) Subscribe(fn func(Session)) func() {
	return s.bus.Subscribe(events.AuthChange, func(e events.Event) error {
		var sess Session
		if err := json.Unmarshal(e.Payload, &sess); err != nil {
			return err
		}
		fn(sess)
		return nil
	})
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) notify(ctx context.Context) error {
	sess, err := s.Get(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.bus.Publish(events.Event{Type: events.AuthChange, Payload: payload}); err != nil {
		s.logger.Warn().Err(err).Msg("session subscriber failed")
	}
	return nil
}
