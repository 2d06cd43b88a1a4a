package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewRegistry()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/users/{user_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/users/{user_id}", "GET", "418")))
}

func TestRecordFollowAndHandler(t *testing.T) {
	m := NewRegistry()
	m.RecordFollow("follow", nil)
	m.RecordFollow("follow", errors.New("duplicate"))
	m.WSConnections.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Follows.WithLabelValues("follow", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Follows.WithLabelValues("follow", "error")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `foodnet_follow_operations_total{op="follow",result="ok"} 1`)
	assert.Contains(t, string(body), "foodnet_ws_connections 1")
	assert.Contains(t, string(body), "go_goroutines")
}
