package models

import (
	"sort"
	"time"

	"holidaze/internal/availability"
)

// Booking is a confirmed reservation. DateTo is the check-out day.
type Booking struct {
	ID       string    `json:"id"`
	DateFrom time.Time `json:"dateFrom"`
	DateTo   time.Time `json:"dateTo"`
	Guests   int       `json:"guests"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
	Venue    *Venue    `json:"venue,omitempty"`
	Customer *Profile  `json:"customer,omitempty"`
}

// BookingRequest is the body of POST /holidaze/bookings.
type BookingRequest struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Guests   int    `json:"guests"`
	VenueID  string `json:"venueId"`
}

// Range projects the booking onto the dates it occupies.
func (b *Booking) Range() availability.BookingRange {
	return availability.BookingRange{ID: b.ID, DateFrom: b.DateFrom, DateTo: b.DateTo}
}

// Nights is the length of the stay.
func (b *Booking) Nights() int {
	n := availability.DaysBetween(b.DateFrom, b.DateTo)
	if n < 0 {
		return 0
	}
	return n
}

// BookingRanges projects every booking of the venue.
func (v *Venue) BookingRanges() []availability.BookingRange {
	ranges := make([]availability.BookingRange, 0, len(v.Bookings))
	for i := range v.Bookings {
		ranges = append(ranges, v.Bookings[i].Range())
	}
	return ranges
}

// SortBookings orders bookings by check-in date, keeping the relative order of
// bookings that start the same day.
func SortBookings(bookings []Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return availability.DateOf(bookings[i].DateFrom).Before(availability.DateOf(bookings[j].DateFrom))
	})
}
