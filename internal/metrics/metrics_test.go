package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.IncRequestsTotal("/api/collections", 200)
	m.IncRequestsTotal("/api/collections", 201)
	m.IncRequestsTotal("/api/collections", 404)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncCacheMisses()
	m.ObserveRequestDuration("/api/collections", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/collections", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/collections", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheMisses))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a, b := New(), New()
	a.IncCacheHits()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.cacheHits))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.cacheHits))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.IncCacheHits()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tubetrack_page_cache_hits_total 1")
}

func TestHTTPStatusBucket(t *testing.T) {
	assert.Equal(t, "1xx", httpStatusBucket(101))
	assert.Equal(t, "2xx", httpStatusBucket(204))
	assert.Equal(t, "3xx", httpStatusBucket(304))
	assert.Equal(t, "4xx", httpStatusBucket(409))
	assert.Equal(t, "5xx", httpStatusBucket(503))
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	r.IncRequestsTotal("/", 200)
	r.ObserveRequestDuration("/", time.Millisecond)
	r.IncCacheHits()
	r.IncCacheMisses()
}
