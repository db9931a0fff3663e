package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"holidaze/internal/api"
	"holidaze/internal/availability"
	"holidaze/internal/booking"
	"holidaze/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVenues struct {
	venue *models.Venue
	err   error
	calls int
}

func (f *fakeVenues) GetVenue(_ context.Context, id string, _ api.VenueOptions) (*models.Venue, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	v := *f.venue
	v.ID = id
	return &v, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func day(s string) time.Time {
	t, err := time.Parse(availability.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestServer(t *testing.T, venues *fakeVenues, ready Pinger) *httptest.Server {
	t.Helper()
	logger := zerolog.New(io.Discard)
	svc := booking.NewService(venues, nil, nil, &logger)
	srv := httptest.NewServer(NewServer(svc, venues, ready, &logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func cabin() *models.Venue {
	return &models.Venue{
		Name:  "Cabin",
		Price: 100,
		Bookings: []models.Booking{
			{ID: "b-2", DateFrom: day("2026-07-20"), DateTo: day("2026-07-22")},
			{ID: "b-1", DateFrom: day("2026-07-10"), DateTo: day("2026-07-15")},
		},
	}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeVenues{venue: cabin()}, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadyz(t *testing.T) {
	up := newTestServer(t, &fakeVenues{venue: cabin()}, fakePinger{})
	resp, err := http.Get(up.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := newTestServer(t, &fakeVenues{venue: cabin()}, fakePinger{err: errors.New("redis down")})
	resp, err = http.Get(down.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAvailability(t *testing.T) {
	srv := newTestServer(t, &fakeVenues{venue: cabin()}, nil)

	tests := []struct {
		name      string
		query     string
		status    availability.Status
		available bool
		conflict  string
		nights    int
		total     float64
	}{
		{name: "free", query: "dateFrom=2026-07-15&dateTo=2026-07-18", status: availability.StatusAvailable, available: true, nights: 3, total: 300},
		{name: "overlap", query: "dateFrom=2026-07-14&dateTo=2026-07-16", status: availability.StatusConflict, conflict: "b-1"},
		{name: "inverted", query: "dateFrom=2026-07-18&dateTo=2026-07-16", status: availability.StatusInverted},
		{name: "invalid", query: "dateFrom=tomorrow&dateTo=2026-07-16", status: availability.StatusInvalid},
		{name: "incomplete", query: "dateFrom=2026-07-18", status: availability.StatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body AvailabilityResponse
			code := getJSON(t, srv.URL+"/api/venues/v-1/availability?"+tt.query, &body)
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, "v-1", body.VenueID)
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.available, body.Available)
			assert.Equal(t, tt.nights, body.Nights)
			assert.InDelta(t, tt.total, body.Total, 1e-9)
			if tt.conflict == "" {
				assert.Nil(t, body.Conflict)
				return
			}
			require.NotNil(t, body.Conflict)
			assert.Equal(t, tt.conflict, body.Conflict.ID)
			assert.Equal(t, "2026-07-10", body.Conflict.From)
			assert.Equal(t, "2026-07-15", body.Conflict.To)
		})
	}
}

func TestAvailability_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeVenues{venue: cabin()}, nil)

	resp, err := http.Post(srv.URL+"/api/venues/v-1/availability", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAvailability_BlankVenueID(t *testing.T) {
	venues := &fakeVenues{venue: cabin()}
	srv := newTestServer(t, venues, nil)

	var body map[string]string
	code := getJSON(t, srv.URL+"/api/venues/%20/availability", &body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "venue id is required", body["error"])
	assert.Zero(t, venues.calls)
}

func TestAvailability_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found passes through", err: &api.Error{Status: http.StatusNotFound, Message: "No venue with such ID"}, status: http.StatusNotFound},
		{name: "breaker open", err: fmt.Errorf("%w: open", api.ErrUnavailable), status: http.StatusServiceUnavailable},
		{name: "server error", err: &api.Error{Status: http.StatusInternalServerError, Message: "boom"}, status: http.StatusBadGateway},
		{name: "network", err: errors.New("connection refused"), status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeVenues{err: tt.err}, nil)

			var body map[string]string
			code := getJSON(t, srv.URL+"/api/venues/v-1/availability?dateFrom=2026-07-15&dateTo=2026-07-18", &body)
			assert.Equal(t, tt.status, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestBookedDates(t *testing.T) {
	srv := newTestServer(t, &fakeVenues{venue: cabin()}, nil)

	var body BookedDatesResponse
	code := getJSON(t, srv.URL+"/api/venues/v-1/booked-dates", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []availability.BookedRange{
		{ID: "b-1", From: "2026-07-10", To: "2026-07-15"},
		{ID: "b-2", From: "2026-07-20", To: "2026-07-22"},
	}, body.Ranges)
}
