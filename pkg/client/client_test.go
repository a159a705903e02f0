package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 5*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

type testLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }

func (l *testLogger) log(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://facetmap.local:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://facetmap.local:8080", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "facetmap-go-sdk/")
	assert.Same(t, c.Panel(), c.Panel())
	assert.Same(t, c.Filters(), c.Filters())
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "ftp://facetmap", "not a url", "facetmap:8080"} {
		_, err := NewClient(base)
		require.Error(t, err, base)
		assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest), base)
	}
}

func TestDo_SetsHeaders(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = io.WriteString(w, `{}`)
	}, WithUserAgent("probe/1"))

	require.NoError(t, c.get(context.Background(), "api/v1/filters", nil))
	require.NotNil(t, got)
	assert.Equal(t, "/api/v1/filters", got.URL.Path)
	assert.Equal(t, "probe/1", got.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.NotEmpty(t, got.Header.Get("X-Request-Id"))
	assert.Empty(t, got.Header.Get("Content-Type"))
}

func TestDo_DecodesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"code":"VALIDATION","message":"filter value is required","detail":"value"}`)
	})

	err := c.post(context.Background(), "/api/v1/filters", map[string]string{}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, "value", apiErr.Detail)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.False(t, apiErr.IsServerError())
	assert.Contains(t, apiErr.Error(), "HTTP 422")
}

func TestDo_NonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no route", http.StatusNotFound)
	})

	err := c.get(context.Background(), "/nope", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "no route", apiErr.Message)
}

func TestDo_RetriesIdempotentServerErrors(t *testing.T) {
	var calls int32
	logger := &testLogger{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"filters":[]}`)
	}, WithLogger(logger))

	var out FilterSet
	require.NoError(t, c.get(context.Background(), "/api/v1/filters", &out))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.NotEmpty(t, logger.msgs)
}

func TestDo_GivesUpAfterRetryMax(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}, WithRetryMax(2))

	err := c.get(context.Background(), "/api/v1/panel/counts", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestDo_PostIsNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.post(context.Background(), "/api/v1/panel/click", map[string]string{"category": "FR"}, nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDo_TransportErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := NewClient(url, WithRetryMax(0))
	require.NoError(t, err)
	err = c.get(context.Background(), "/healthz", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTransport))
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithRetryWait(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.get(ctx, "/readyz", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCalculateBackoff(t *testing.T) {
	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}
	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)

	b5 := c.calculateBackoff(5)
	assert.GreaterOrEqual(t, b5, 300*time.Millisecond)
	assert.Less(t, b5, 375*time.Millisecond)
}

//Personal.AI order the ending
