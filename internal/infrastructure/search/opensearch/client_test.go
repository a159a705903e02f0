package opensearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
)

func newTestServer(statusCode int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
	}))
}

func newTestConfig(addr string) ClientConfig {
	return ClientConfig{
		Addresses:      []string{addr},
		RequestTimeout: time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, ValidateConfig(ClientConfig{Addresses: []string{"http://localhost:9200"}, RequestTimeout: time.Second}))

	err := ValidateConfig(ClientConfig{RequestTimeout: time.Second})
	assert.Equal(t, ErrInvalidConfig, err)

	err = ValidateConfig(ClientConfig{Addresses: []string{"http://localhost:9200"}, MaxRetries: -1, RequestTimeout: time.Second})
	assert.ErrorContains(t, err, "MaxRetries must be >= 0")

	err = ValidateConfig(ClientConfig{Addresses: []string{"http://localhost:9200"}})
	assert.ErrorContains(t, err, "RequestTimeout must be > 0")
}

func TestNewClient_Success(t *testing.T) {
	server := newTestServer(http.StatusOK)
	defer server.Close()

	client, err := NewClient(newTestConfig(server.URL), logging.NewNopLogger())
	require.NoError(t, err)
	assert.True(t, client.IsHealthy())
	assert.NotNil(t, client.GetClient())
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close(), "close is idempotent")
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	server := newTestServer(http.StatusServiceUnavailable)
	defer server.Close()

	client, err := NewClient(newTestConfig(server.URL), nil)
	assert.Nil(t, client)
	assert.True(t, errors.Is(err, ErrConnectionFailed))
}

func TestClient_Ping_Failure(t *testing.T) {
	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(newTestConfig(server.URL), nil)
	require.NoError(t, err)
	defer client.Close()

	failing.Store(true)
	assert.Error(t, client.Ping(context.Background()))
	assert.False(t, client.IsHealthy())
}

//Personal.AI order the ending
