package report

import (
	"fmt"
	"io"
	"strings"

	"holidaze/internal/availability"
	"holidaze/internal/models"
)

var bookingColumns = []string{"Booking ID", "Customer", "Check in", "Check out", "Nights", "Guests"}

// ExportBookings writes one sheet per venue listing its bookings by check-in.
func ExportBookings(w io.Writer, venues []models.Venue) error {
	xw := NewExcelizeWriter()
	defer xw.Close()

	if err := writeBookings(xw, venues); err != nil {
		return err
	}
	return xw.Save(w)
}

func writeBookings(xw ExcelWriter, venues []models.Venue) error {
	if len(venues) == 0 {
		if err := xw.AddSheet("Bookings"); err != nil {
			return err
		}
		return xw.WriteHeader(bookingColumns)
	}

	used := map[string]bool{}
	for _, v := range venues {
		name := uniqueSheetName(v.Name, used)
		if err := xw.AddSheet(name); err != nil {
			return err
		}
		if err := xw.WriteHeader(bookingColumns); err != nil {
			return err
		}

		bookings := append([]models.Booking(nil), v.Bookings...)
		models.SortBookings(bookings)
		for _, b := range bookings {
			customer := ""
			if b.Customer != nil {
				customer = b.Customer.Name
			}
			row := []interface{}{
				b.ID,
				customer,
				availability.Format(b.DateFrom),
				availability.Format(b.DateTo),
				b.Nights(),
				b.Guests,
			}
			if err := xw.WriteRow(row); err != nil {
				return fmt.Errorf("venue %s: %w", v.ID, err)
			}
		}
	}
	return nil
}

// uniqueSheetName strips characters Excel rejects, truncates to the length
// limit and appends a counter when the name is taken.
func uniqueSheetName(name string, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Venue"
	}
	base := truncate(name, maxSheetName)

	candidate := base
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
