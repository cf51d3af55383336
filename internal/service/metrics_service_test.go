package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrapeMetrics(t *testing.T, m *MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetricsServiceNamespacedSeries(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/analytics/overall", http.StatusOK, 15*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveCacheWrite(2 * time.Millisecond)
	m.ObserveDBQuery("overall", 5*time.Millisecond)

	body := scrapeMetrics(t, m)
	assert.Contains(t, body, "feedback_api_http_requests_total")
	assert.Contains(t, body, "feedback_api_view_cache_hits_total")
	assert.Contains(t, body, "feedback_api_view_cache_hit_ratio")
	assert.Contains(t, body, `feedback_api_snapshot_query_duration_seconds_count{view="overall"}`)
	assert.Contains(t, body, "feedback_api_goroutines_total")
}

func TestMetricsServiceSnapshotAggregates(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/analytics/subjects", http.StatusOK, 20*time.Millisecond)
	m.ObserveDBQuery("subjects", 10*time.Millisecond)

	snap := m.Snapshot()
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 1e-9)
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 1e-9)
	assert.Equal(t, uint64(1), snap.DBQueryCount)
	assert.Positive(t, snap.Goroutines)
}

func TestMetricsServiceNilReceiverSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveDBQuery("overall", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, m.Snapshot().RequestsTotal)
}
