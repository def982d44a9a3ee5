package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app_analyser/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so every vec shows up in the exposition
	observability.ObserveHTTP("/v1/dashboard", "GET", 200, 12*time.Millisecond)
	observability.ObserveExternal("playstore", "batchexecute", 200, 300*time.Millisecond)
	observability.ObserveCache("dataset", "hit")
	observability.ObserveAnalysis("Google Play", "ok", 3)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"appanalyser_http_requests_total",
		"appanalyser_external_requests_total",
		"appanalyser_cache_events_total",
		"appanalyser_analyses_total",
		`appanalyser_reviews_analysed_total{source="Google Play"}`,
	} {
		assert.Contains(t, out, name)
	}
}
