package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	bookings := []BookingRange{
		booking("first", "2026-07-10", "2026-07-15"),
		booking("second", "2026-07-12", "2026-07-18"),
	}

	tests := []struct {
		name     string
		from, to string
		status   Status
		message  string
		ok       bool
	}{
		{name: "both empty", from: "", to: "", status: StatusIncomplete, ok: true},
		{name: "missing check-out", from: "2026-07-01", to: " ", status: StatusIncomplete, ok: true},
		{name: "garbage", from: "soon", to: "2026-07-02", status: StatusInvalid, message: "Invalid date selection."},
		{name: "same day", from: "2026-07-02", to: "2026-07-02", status: StatusInverted, message: "Check-out must be after check-in."},
		{name: "inverted", from: "2026-07-05", to: "2026-07-02", status: StatusInverted, message: "Check-out must be after check-in."},
		{name: "free", from: "2026-07-18", to: "2026-07-20", status: StatusAvailable, ok: true},
		{
			name: "conflict reports first booking", from: "2026-07-13", to: "2026-07-14",
			status: StatusConflict, message: "Those dates are unavailable (overlaps 2026-07-10 → 2026-07-15).",
		},
		{
			name: "conflict with later booking only", from: "2026-07-16", to: "2026-07-17",
			status: StatusConflict, message: "Those dates are unavailable (overlaps 2026-07-12 → 2026-07-18).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Check(tt.from, tt.to, bookings)
			assert.Equal(t, tt.status, v.Status)
			assert.Equal(t, tt.message, v.Message)
			assert.Equal(t, tt.ok, v.OK())
		})
	}
}

func TestCheck_ConflictDetail(t *testing.T) {
	bookings := []BookingRange{booking("taken", "2026-09-01", "2026-09-04")}

	v := Check("2026-08-30", "2026-09-02", bookings)
	require.NotNil(t, v.Conflict)
	assert.Equal(t, "taken", v.Conflict.ID)
	assert.False(t, v.Available())

	v = Check("2026-09-04", "2026-09-06", bookings)
	assert.Nil(t, v.Conflict)
	assert.True(t, v.Available())
}

func TestBookedRanges(t *testing.T) {
	in := []BookingRange{
		booking("c", "2026-09-20", "2026-09-22"),
		booking("a", "2026-09-01", "2026-09-03"),
		booking("b", "2026-09-10", "2026-09-12"),
	}

	got := BookedRanges(in)
	assert.Equal(t, []BookedRange{
		{ID: "a", From: "2026-09-01", To: "2026-09-03"},
		{ID: "b", From: "2026-09-10", To: "2026-09-12"},
		{ID: "c", From: "2026-09-20", To: "2026-09-22"},
	}, got)
	assert.Equal(t, "c", in[0].ID, "input left untouched")
	assert.Empty(t, BookedRanges(nil))
}
