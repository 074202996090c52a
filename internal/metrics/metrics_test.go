package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationToggles_Counts(t *testing.T) {
	before := testutil.ToFloat64(RelationToggles.WithLabelValues("favorites", "added"))
	RelationToggles.WithLabelValues("favorites", "added").Inc()

	after := testutil.ToFloat64(RelationToggles.WithLabelValues("favorites", "added"))
	assert.Equal(t, before+1, after)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	ProviderRequests.WithLabelValues("movie", OutcomeOK).Inc()
	HTTPRequests.WithLabelValues("GET", "/api/health", "200").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "cinestream_provider_requests_total"))
	assert.True(t, strings.Contains(body, "cinestream_http_requests_total"))
}
