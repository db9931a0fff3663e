package account

import (
	"testing"
	"time"

	"holidaze/internal/availability"

	"github.com/stretchr/testify/require"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := availability.Normalize(s)
	require.NoError(t, err)
	return d
}
