package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(503))
	assert.Equal(t, "error", statusClass(0))
}

func TestObserveAPI(t *testing.T) {
	before := testutil.ToFloat64(apiRequests.WithLabelValues("venues.list", "2xx"))

	ObserveAPI("venues.list", 200, 30*time.Millisecond)
	ObserveAPI("venues.list", 201, 10*time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(apiRequests.WithLabelValues("venues.list", "2xx")))
}

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestSetCircuitOpen(t *testing.T) {
	SetCircuitOpen(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(breakerState))
	SetCircuitOpen(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(breakerState))
}
