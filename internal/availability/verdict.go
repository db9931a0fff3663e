package availability

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Status classifies a checked stay.
type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusInvalid    Status = "invalid"
	StatusInverted   Status = "inverted"
	StatusConflict   Status = "conflict"
	StatusAvailable  Status = "available"
)

const (
	msgInvalid  = "Invalid date selection."
	msgInverted = "Check-out must be after check-in."
)

// Verdict is the outcome of Check, ready to show next to a date picker.
type Verdict struct {
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Conflict *BookingRange `json:"-"`
}

// OK is true when nothing blocks the stay yet: it is free, or a date is still missing.
func (v Verdict) OK() bool {
	return v.Status == StatusAvailable || v.Status == StatusIncomplete
}

// Available is true only for a complete stay that is free.
func (v Verdict) Available() bool {
	return v.Status == StatusAvailable
}

// Check validates a stay typed by a user. An empty field yields StatusIncomplete
// so the form can wait for both dates before complaining.
func Check(from, to string, bookings []BookingRange) Verdict {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return Verdict{Status: StatusIncomplete}
	}

	start, end, err := ParseRange(from, to)
	switch {
	case errors.Is(err, ErrEmptyRange):
		return Verdict{Status: StatusInverted, Message: msgInverted}
	case err != nil:
		return Verdict{Status: StatusInvalid, Message: msgInvalid}
	}

	conflict, ok := FirstConflict(start, end, bookings)
	if !ok {
		return Verdict{Status: StatusAvailable}
	}
	return Verdict{
		Status:   StatusConflict,
		Conflict: &conflict,
		Message: fmt.Sprintf("Those dates are unavailable (overlaps %s → %s).",
			Format(conflict.DateFrom), Format(conflict.DateTo)),
	}
}

// BookedRange is a booking rendered as calendar dates.
type BookedRange struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// BookedRanges lists the bookings as date pairs ordered by check-in.
func BookedRanges(bookings []BookingRange) []BookedRange {
	sorted := make([]BookingRange, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return DateOf(sorted[i].DateFrom).Before(DateOf(sorted[j].DateFrom))
	})

	out := make([]BookedRange, 0, len(sorted))
	for _, b := range sorted {
		out = append(out, BookedRange{ID: b.ID, From: Format(b.DateFrom), To: Format(b.DateTo)})
	}
	return out
}
