package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.SetActiveSessions(3)
	m.IncrementEventStreams()
	m.IncrementEventStreams()
	m.DecrementEventStreams()
	m.ObserveGeocode("ok", 120*time.Millisecond)
	m.ObserveGeocode("cache_hit", 0)
	m.RecordPlaceMutation("create", nil)
	m.RecordPlaceMutation("delete", errors.New("boom"))

	assert.InDelta(t, 3, testutil.ToFloat64(m.activeSessions), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.eventStreams), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.geocodeRequests.WithLabelValues("cache_hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.placeMutations.WithLabelValues("delete", "error")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.geocodeDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.SetActiveSessions(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "placemap_active_sessions 1")
}

func TestNewMetrics_Twice(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}
