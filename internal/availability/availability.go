package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire form of a calendar date.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidDate matches every *InvalidDateError.
	ErrInvalidDate = errors.New("invalid date")
	// ErrEmptyRange is returned for a candidate whose check-out is not after its check-in.
	ErrEmptyRange = errors.New("check-out must be after check-in")
)

// timestampLayouts are the accepted forms of a value longer than a bare date.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
}

// InvalidDateError reports a value that cannot be read as a calendar date.
type InvalidDateError struct {
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	if strings.TrimSpace(e.Value) == "" {
		return "invalid date: empty value"
	}
	return fmt.Sprintf("invalid date %q", e.Value)
}

func (e *InvalidDateError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrInvalidDate) match any InvalidDateError.
func (e *InvalidDateError) Is(target error) bool { return target == ErrInvalidDate }

// BookingRange is an existing reservation. DateFrom is occupied, DateTo is the
// check-out day and is free again.
type BookingRange struct {
	ID       string
	DateFrom time.Time
	DateTo   time.Time
}

// Normalize reads a "YYYY-MM-DD" string or an ISO-8601 timestamp and returns the
// calendar date written in it as a UTC midnight instant. The time of day and any
// offset are discarded, so the date never shifts with the local zone.
func Normalize(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if len(s) < len(DateLayout) {
		return time.Time{}, &InvalidDateError{Value: value}
	}

	day, err := time.Parse(DateLayout, s[:len(DateLayout)])
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: value, Err: err}
	}
	if len(s) > len(DateLayout) {
		if err := parseTimestamp(s); err != nil {
			return time.Time{}, &InvalidDateError{Value: value, Err: err}
		}
	}
	return day, nil
}

func parseTimestamp(s string) error {
	var lastErr error
	for _, layout := range timestampLayouts {
		_, err := time.Parse(layout, s)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// DateOf is Normalize for timestamp values: the calendar date of t in its own
// location, anchored to UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders the calendar date of t as YYYY-MM-DD.
func Format(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

// RangesOverlap reports whether [startA, endA) and [startB, endB) share a day.
func RangesOverlap(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// ParseRange normalizes a candidate stay. It fails with *InvalidDateError when
// either side is unreadable and with ErrEmptyRange when to is not after from.
func ParseRange(from, to string) (start, end time.Time, err error) {
	if start, err = Normalize(from); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = Normalize(to); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, ErrEmptyRange
	}
	return start, end, nil
}

// IsRangeAvailable reports whether the stay from..to can be booked next to the
// given bookings. Unreadable, zero-length and inverted stays are never available.
func IsRangeAvailable(from, to string, bookings []BookingRange) bool {
	start, end, err := ParseRange(from, to)
	if err != nil {
		return false
	}
	_, taken := FirstConflict(start, end, bookings)
	return !taken
}

// FirstConflict returns the first booking, in slice order, that overlaps [from, to).
func FirstConflict(from, to time.Time, bookings []BookingRange) (BookingRange, bool) {
	start, end := DateOf(from), DateOf(to)
	for _, b := range bookings {
		if RangesOverlap(start, end, DateOf(b.DateFrom), DateOf(b.DateTo)) {
			return b, true
		}
	}
	return BookingRange{}, false
}

const secondsPerDay = 24 * 60 * 60

// Nights counts the nights of a stay, or 0 when the stay is not a valid range.
func Nights(from, to string) int {
	start, end, err := ParseRange(from, to)
	if err != nil {
		return 0
	}
	return DaysBetween(start, end)
}

// DaysBetween counts calendar days from the date of start to the date of end,
// negative when end comes first. It works from Unix seconds so spans beyond
// the range of time.Duration stay exact.
func DaysBetween(start, end time.Time) int {
	return int((DateOf(end).Unix() - DateOf(start).Unix()) / secondsPerDay)
}
