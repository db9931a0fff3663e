package venues

import (
	"context"
	"io"
	"testing"
	"time"

	"holidaze/internal/api"
	"holidaze/internal/models"
	"holidaze/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetProfileVenues(ctx context.Context, name string) ([]models.Venue, error) {
	args := m.Called(ctx, name)
	venues, _ := args.Get(0).([]models.Venue)
	return venues, args.Error(1)
}

func (m *mockAPI) GetVenue(ctx context.Context, id string, opts api.VenueOptions) (*models.Venue, error) {
	args := m.Called(ctx, id, opts)
	v, _ := args.Get(0).(*models.Venue)
	return v, args.Error(1)
}

func (m *mockAPI) CreateVenue(ctx context.Context, in models.VenueInput) (*models.Venue, error) {
	args := m.Called(ctx, in)
	v, _ := args.Get(0).(*models.Venue)
	return v, args.Error(1)
}

func (m *mockAPI) UpdateVenue(ctx context.Context, id string, in models.VenueInput) (*models.Venue, error) {
	args := m.Called(ctx, id, in)
	v, _ := args.Get(0).(*models.Venue)
	return v, args.Error(1)
}

func (m *mockAPI) DeleteVenue(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type fixedSession session.Session

func (f fixedSession) Get(context.Context) (session.Session, error) { return session.Session(f), nil }

func newManager(m *mockAPI, sess session.Session) *Manager {
	logger := zerolog.New(io.Discard)
	return NewManager(m, fixedSession(sess), &logger)
}

var managerSession = session.Session{Token: "tok", Name: "olav", VenueManager: true}

func TestManager_RoleChecks(t *testing.T) {
	ctx := context.Background()
	m := new(mockAPI)

	_, err := newManager(m, session.Session{}).MyVenues(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = newManager(m, session.Session{Token: "tok", Name: "kari"}).MyVenues(ctx)
	assert.ErrorIs(t, err, ErrNotManager)

	err = newManager(m, session.Session{Token: "tok", Name: "kari"}).Delete(ctx, "v-1")
	assert.ErrorIs(t, err, ErrNotManager)

	m.AssertNotCalled(t, "GetProfileVenues", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "DeleteVenue", mock.Anything, mock.Anything)
}

func TestManager_CRUD(t *testing.T) {
	ctx := context.Background()
	m := new(mockAPI)
	mgr := newManager(m, managerSession)
	in := models.VenueInput{Name: "Loft", Price: 80, MaxGuests: 2}

	m.On("GetProfileVenues", ctx, "olav").Return([]models.Venue{{ID: "v-1"}}, nil).Once()
	m.On("CreateVenue", ctx, in).Return(&models.Venue{ID: "v-2", Name: "Loft"}, nil).Once()
	m.On("GetVenue", ctx, "v-2", api.VenueOptions{Owner: true}).
		Return(&models.Venue{ID: "v-2", Owner: &models.Profile{Name: "olav"}}, nil).Twice()
	m.On("UpdateVenue", ctx, "v-2", in).Return(&models.Venue{ID: "v-2", Name: "Loft"}, nil).Once()
	m.On("DeleteVenue", ctx, "v-2").Return(nil).Once()

	mine, err := mgr.MyVenues(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	created, err := mgr.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "v-2", created.ID)

	_, err = mgr.Update(ctx, "v-2", in)
	require.NoError(t, err)
	require.NoError(t, mgr.Delete(ctx, "v-2"))
	m.AssertExpectations(t)
}

func TestManager_MutationsRequireOwner(t *testing.T) {
	ctx := context.Background()
	m := new(mockAPI)
	mgr := newManager(m, managerSession)
	in := models.VenueInput{Name: "Loft", Price: 80, MaxGuests: 2}

	m.On("GetVenue", ctx, "v-kari", api.VenueOptions{Owner: true}).
		Return(&models.Venue{ID: "v-kari", Owner: &models.Profile{Name: "kari"}}, nil).Twice()

	_, err := mgr.Update(ctx, "v-kari", in)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, mgr.Delete(ctx, "v-kari"), ErrNotOwner)

	m.AssertNotCalled(t, "UpdateVenue", mock.Anything, mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "DeleteVenue", mock.Anything, mock.Anything)
	m.AssertExpectations(t)
}

func TestManager_MutationLookupFails(t *testing.T) {
	ctx := context.Background()
	m := new(mockAPI)
	notFound := &api.Error{Status: 404, Message: "No venue with such ID"}
	m.On("GetVenue", ctx, "v-gone", api.VenueOptions{Owner: true}).Return(nil, notFound).Once()

	err := newManager(m, managerSession).Delete(ctx, "v-gone")
	assert.ErrorIs(t, err, api.ErrNotFound)
	m.AssertNotCalled(t, "DeleteVenue", mock.Anything, mock.Anything)
}

func TestManager_UpcomingBookings(t *testing.T) {
	ctx := context.Background()
	d := func(month time.Month, day int) time.Time { return time.Date(2026, month, day, 0, 0, 0, 0, time.UTC) }

	venue := &models.Venue{
		ID:    "v-1",
		Owner: &models.Profile{Name: "olav"},
		Bookings: []models.Booking{
			{ID: "c", DateFrom: d(9, 1), DateTo: d(9, 3)},
			{ID: "a", DateFrom: d(7, 1), DateTo: d(7, 3)},
			{ID: "b", DateFrom: d(8, 1), DateTo: d(8, 3)},
		},
	}
	opts := api.VenueOptions{Bookings: true, Owner: true}

	t.Run("sorted and capped", func(t *testing.T) {
		m := new(mockAPI)
		m.On("GetVenue", ctx, "v-1", opts).Return(venue, nil).Once()

		_, got, err := newManager(m, managerSession).UpcomingBookings(ctx, "v-1", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "b", got[1].ID)
		assert.Equal(t, "c", venue.Bookings[0].ID, "venue bookings untouched")
	})

	t.Run("other manager's venue", func(t *testing.T) {
		m := new(mockAPI)
		m.On("GetVenue", ctx, "v-1", opts).Return(venue, nil).Once()

		other := session.Session{Token: "tok", Name: "kari", VenueManager: true}
		_, _, err := newManager(m, other).UpcomingBookings(ctx, "v-1", 0)
		assert.ErrorIs(t, err, ErrNotOwner)
	})
}
