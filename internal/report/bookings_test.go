package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"holidaze/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func TestExportBookings(t *testing.T) {
	venues := []models.Venue{
		{
			ID:   "v-1",
			Name: "Sea Cabin",
			Bookings: []models.Booking{
				{ID: "b-2", DateFrom: day(8, 1), DateTo: day(8, 4), Guests: 2, Customer: &models.Profile{Name: "kari"}},
				{ID: "b-1", DateFrom: day(7, 10), DateTo: day(7, 15), Guests: 1},
			},
		},
		{ID: "v-2", Name: "Sea Cabin"},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportBookings(&buf, venues))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sea Cabin", "Sea Cabin (2)"}, f.GetSheetList())

	rows, err := f.GetRows("Sea Cabin")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, bookingColumns, rows[0])
	assert.Equal(t, []string{"b-1", "", "2026-07-10", "2026-07-15", "5", "1"}, rows[1])
	assert.Equal(t, []string{"b-2", "kari", "2026-08-01", "2026-08-04", "3", "2"}, rows[2])

	empty, err := f.GetRows("Sea Cabin (2)")
	require.NoError(t, err)
	assert.Len(t, empty, 1)
}

func TestExportBookings_NoVenues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportBookings(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Bookings"}, f.GetSheetList())
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}

	assert.Equal(t, "Loft - Oslo-Centre", uniqueSheetName("Loft : Oslo/Centre", used))
	long := strings.Repeat("x", 40)
	first := uniqueSheetName(long, used)
	second := uniqueSheetName(long, used)
	assert.Len(t, first, 31)
	assert.Len(t, second, 31)
	assert.True(t, strings.HasSuffix(second, " (2)"))
	assert.Equal(t, "Venue", uniqueSheetName("  ", used))
}

func TestWriteRowWithoutSheet(t *testing.T) {
	w := NewExcelizeWriter()
	defer w.Close()
	assert.Error(t, w.WriteRow([]interface{}{"x"}))
}
