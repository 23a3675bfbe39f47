package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry, nil)

	require.NotNil(t, metrics)
	metrics.FilesStoredTotal.WithLabelValues("written").Inc()
	metrics.MembershipCacheTotal.WithLabelValues("hit").Inc()

	families, err := registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["chatterbox_files_stored_total"])
	assert.True(t, names["chatterbox_membership_cache_total"])
	assert.True(t, names["chatterbox_db_connections_open"])
}

func TestHTTPMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry, nil)

	router := mux.NewRouter()
	router.Use(HTTPMetricsMiddleware(metrics))
	router.HandleFunc("/api/chats/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, "short and stout")
	})

	for _, id := range []string{"1", "2", "3"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/chats/"+id, nil))
	}

	count := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/chats/{id}", "418"))
	assert.Equal(t, float64(3), count)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.HTTPRequestDuration))
}

func TestMetricsHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry, nil)
	metrics.SigninsTotal.WithLabelValues("success").Inc()

	rr := httptest.NewRecorder()
	MetricsHandler(registry).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `chatterbox_signins_total{result="success"} 1`)
}
