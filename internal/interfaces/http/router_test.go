package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/internal/application/aggregate"
	"github.com/turtacn/facetmap/internal/application/interaction"
	"github.com/turtacn/facetmap/internal/application/panel"
	"github.com/turtacn/facetmap/internal/application/query"
	"github.com/turtacn/facetmap/internal/domain/filter"
	domain "github.com/turtacn/facetmap/internal/domain/panel"
	"github.com/turtacn/facetmap/internal/domain/savedquery"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/facetmap/internal/interfaces/http/handlers"
	"github.com/turtacn/facetmap/internal/interfaces/http/middleware"
)

type executorFunc func(ctx context.Context, q *query.Query) (*aggregate.FacetResponse, error)

func (f executorFunc) Execute(ctx context.Context, q *query.Query) (*aggregate.FacetResponse, error) {
	return f(ctx, q)
}

type testStack struct {
	router http.Handler
	panel  *panel.Panel
	store  *filter.MemoryStore
}

func newTestStack(t *testing.T, spyable bool) *testStack {
	t.Helper()
	ctx := context.Background()
	log := logging.NewNopLogger()

	store := filter.NewMemoryStore()
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetTimeRange(ctx, filter.TimeRange{Field: "@timestamp", From: from, To: from.Add(time.Hour)}))

	cfg := domain.Defaults()
	cfg.Field = "country"
	cfg.Indices = []string{"logs"}
	cfg.Spyable = spyable

	exec := executorFunc(func(_ context.Context, q *query.Query) (*aggregate.FacetResponse, error) {
		return &aggregate.FacetResponse{
			NumFound:    9,
			FacetFields: map[string][]interface{}{q.Field(): {"US", 6, "FR", 3, "AQ", 0}},
		}, nil
	})

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "router"}, log)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	p, err := panel.New(ctx, cfg, query.NewComposer(store, savedquery.NewMemoryStore(), log), exec,
		panel.WithRecorder(metrics), panel.WithLogger(log))
	require.NoError(t, err)

	ctrl := interaction.NewController(store, p, log)
	router := NewRouter(RouterConfig{
		PanelHandler:   handlers.NewPanelHandler(p, ctrl, log, handlers.WithInteractionRecorder(metrics)),
		FilterHandler:  handlers.NewFilterHandler(store, p, log),
		HealthHandler:  handlers.NewHealthHandler("test"),
		CORS:           &middleware.CORSConfig{AllowedOrigins: []string{"*"}},
		Logger:         log,
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		HTTPRecorder:   metrics,
		InFlight:       metrics.InFlight(),
		MetricsHandler: collector.Handler(),
	})
	return &testStack{router: router, panel: p, store: store}
}

func (s *testStack) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(method, path, rdr))
	return w
}

func TestRouter_HealthEndpoints(t *testing.T) {
	s := newTestStack(t, true)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/readyz", "").Code)
}

func TestRouter_RefreshThenCountsThenClick(t *testing.T) {
	s := newTestStack(t, true)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/panel/counts", "").Code)

	assert.Equal(t, http.StatusAccepted, s.do(t, http.MethodPost, "/api/v1/panel/refresh", "").Code)
	s.panel.Wait()

	w := s.do(t, http.MethodGet, "/api/v1/panel/counts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var counts handlers.CountsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &counts))
	assert.Equal(t, aggregate.CategoryCounts{"US": 6, "FR": 3}, counts.Counts)
	assert.EqualValues(t, 9, counts.Hits)

	w = s.do(t, http.MethodPost, "/api/v1/panel/click", `{"category":"FR"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"applied":true,"field":"country"}`, w.Body.String())
	s.panel.Wait()

	w = s.do(t, http.MethodGet, "/api/v1/filters", "")
	require.Equal(t, http.StatusOK, w.Code)
	var set filter.FilterSet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &set))
	require.Len(t, set.Filters, 1)
	assert.Equal(t, "FR", set.Filters[0].Value)

	// the clicked filter is part of the next composed query
	w = s.do(t, http.MethodGet, "/api/v1/panel/query?format=flat", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `country:\"FR\"`)
}

func TestRouter_ClickOnEmptyCategoryIsNoop(t *testing.T) {
	s := newTestStack(t, true)
	s.do(t, http.MethodPost, "/api/v1/panel/refresh", "")
	s.panel.Wait()

	w := s.do(t, http.MethodPost, "/api/v1/panel/click", `{"category":"AQ"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"applied":false,"field":"country"}`, w.Body.String())

	set, err := s.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, set.Filters)
}

func TestRouter_InspectorHonoursSpyable(t *testing.T) {
	on := newTestStack(t, true)
	w := on.do(t, http.MethodGet, "/api/v1/panel/query", "")
	require.Equal(t, http.StatusOK, w.Code)
	var dsl map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dsl))
	assert.Contains(t, dsl, "query")

	off := newTestStack(t, false)
	assert.Equal(t, http.StatusNotFound, off.do(t, http.MethodGet, "/api/v1/panel/query", "").Code)
	assert.Equal(t, http.StatusNotFound, off.do(t, http.MethodGet, "/api/v1/panel/query?format=flat", "").Code)
}

func TestRouter_MetricsExposeHTTPAndCycles(t *testing.T) {
	s := newTestStack(t, true)
	s.do(t, http.MethodPost, "/api/v1/panel/refresh", "")
	s.panel.Wait()

	w := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `router_panel_cycles_total{outcome="ok"} 1`)
	assert.Contains(t, body, `router_http_requests_total{method="POST",route="/api/v1/panel/refresh",status_code="202"} 1`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	s := newTestStack(t, true)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodGet, "/api/v1/panel/refresh", "").Code)
}

func TestRouter_NilHandlersDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		r := NewRouter(RouterConfig{})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

//Personal.AI order the ending
