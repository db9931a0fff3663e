package session

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"holidaze/internal/database"
	"holidaze/internal/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, backend Backend) *Store {
	t.Helper()
	logger := zerolog.New(io.Discard)
	return NewStore(backend, events.NewEventBus(), &logger)
}

func TestStore_SetPartial(t *testing.T) {
	store := newStore(t, NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Patch{Token: String("tok"), Name: String("kari")}))
	require.NoError(t, store.Set(ctx, Patch{VenueManager: Bool(true)}))

	sess, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{Token: "tok", Name: "kari", VenueManager: true}, sess)
	assert.True(t, sess.LoggedIn())
}

func TestStore_EmptyTokenAndNameAreIgnored(t *testing.T) {
	store := newStore(t, NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Patch{Token: String("tok"), Name: String("kari")}))
	require.NoError(t, store.Set(ctx, Patch{Token: String(""), Name: String("")}))

	sess, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "kari", sess.Name)
}

func TestStore_AvatarCanBeCleared(t *testing.T) {
	store := newStore(t, NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Patch{AvatarURL: String("https://img/a.png"), AvatarAlt: String("me")}))
	require.NoError(t, store.Set(ctx, Patch{AvatarURL: String("")}))

	sess, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, sess.AvatarURL)
	assert.Equal(t, "me", sess.AvatarAlt)
}

func TestStore_ClearAndToken(t *testing.T) {
	store := newStore(t, NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Patch{Token: String("tok"), Name: String("kari"), VenueManager: Bool(true)}))
	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	require.NoError(t, store.Clear(ctx))
	sess, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{}, sess)
	assert.False(t, sess.LoggedIn())

	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestStore_Subscribe(t *testing.T) {
	store := newStore(t, NewMemoryBackend())
	ctx := context.Background()

	var seen []Session
	unsubscribe := store.Subscribe(func(s Session) { seen = append(seen, s) })

	require.NoError(t, store.Set(ctx, Patch{Token: String("tok"), Name: String("kari")}))
	require.NoError(t, store.Clear(ctx))
	unsubscribe()
	require.NoError(t, store.Set(ctx, Patch{Name: String("olav")}))

	require.Len(t, seen, 2)
	assert.Equal(t, "kari", seen[0].Name)
	assert.True(t, seen[0].LoggedIn())
	assert.False(t, seen[1].LoggedIn())
}

type brokenBackend struct{ *MemoryBackend }

func (b *brokenBackend) Set(context.Context, map[string]string) error { return errors.New("disk full") }

func TestStore_WriteErrorSkipsNotification(t *testing.T) {
	store := newStore(t, &brokenBackend{MemoryBackend: NewMemoryBackend()})
	notified := false
	store.Subscribe(func(Session) { notified = true })

	err := store.Set(context.Background(), Patch{Token: String("tok")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, notified)
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := newStore(t, NewRedisBackend(rdb, "holidaze:"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Patch{Token: String("tok"), VenueManager: Bool(false)}))

	raw, err := mr.Get("holidaze:token")
	require.NoError(t, err)
	assert.Equal(t, "tok", raw)
	raw, err = mr.Get("holidaze:venueManager")
	require.NoError(t, err)
	assert.Equal(t, "false", raw)

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists("holidaze:token"))
	assert.NoError(t, store.Ping(ctx))
}

func TestSQLiteBackend(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "session.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := newStore(t, db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, Patch{
		Token:        String("tok"),
		Name:         String("kari"),
		VenueManager: Bool(true),
		AvatarURL:    String("https://img/a.png"),
	}))

	sess, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{Token: "tok", Name: "kari", VenueManager: true, AvatarURL: "https://img/a.png"}, sess)
}
