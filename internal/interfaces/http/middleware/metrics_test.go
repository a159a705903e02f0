package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method, route string
	status        int
}

type fakeHTTPRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (f *fakeHTTPRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, observation{method, route, status})
}

type fakeGauge struct{ n, peak int }

func (g *fakeGauge) Inc() {
	g.n++
	if g.n > g.peak {
		g.peak = g.n
	}
}
func (g *fakeGauge) Dec() { g.n-- }

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	rec := &fakeHTTPRecorder{}
	gauge := &fakeGauge{}

	r := chi.NewRouter()
	r.Use(Metrics(rec, gauge))
	r.Get("/api/v1/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items/42", nil))

	require.Len(t, rec.obs, 1)
	assert.Equal(t, observation{http.MethodGet, "/api/v1/items/{id}", http.StatusTeapot}, rec.obs[0])
	assert.Equal(t, 0, gauge.n)
	assert.Equal(t, 1, gauge.peak)
}

func TestMetrics_ImplicitOK(t *testing.T) {
	rec := &fakeHTTPRecorder{}
	h := Metrics(rec, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))

	require.Len(t, rec.obs, 1)
	assert.Equal(t, http.StatusOK, rec.obs[0].status)
	assert.Equal(t, "unmatched", rec.obs[0].route)
}

//Personal.AI order the ending
