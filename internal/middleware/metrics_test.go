package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	route  string
	method string
	status int
}

type recordingObserver struct {
	seen []observation
}

func (o *recordingObserver) ObserveRequest(route, method string, status int, _ time.Duration) {
	o.seen = append(o.seen, observation{route: route, method: method, status: status})
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	observer := &recordingObserver{}

	r := chi.NewRouter()
	r.Use(Metrics(observer))
	r.Get("/api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	for _, path := range []string{"/api/orders/1", "/api/orders/2", "/nowhere"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, observer.seen, 3)
	assert.Equal(t, observation{route: "/api/orders/{id}", method: http.MethodGet, status: http.StatusAccepted}, observer.seen[0])
	assert.Equal(t, "/api/orders/{id}", observer.seen[1].route)
	assert.Equal(t, http.StatusNotFound, observer.seen[2].status)
}
