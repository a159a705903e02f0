package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/internal/application/interaction"
	"github.com/turtacn/facetmap/internal/domain/filter"
	"github.com/turtacn/facetmap/internal/testutil"
)

func newTestFilterHandler() (*FilterHandler, *filter.MemoryStore, *int32) {
	store := filter.NewMemoryStore()
	var signals int32
	sig := interaction.SignalFunc(func(context.Context) error {
		atomic.AddInt32(&signals, 1)
		return nil
	})
	return NewFilterHandler(store, sig, testutil.NewMockLogger()), store, &signals
}

func TestFilterHandler_List_Empty(t *testing.T) {
	h, _, _ := newTestFilterHandler()

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/filters", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"filters":[]}`, w.Body.String())
}

func TestFilterHandler_Append(t *testing.T) {
	h, store, signals := newTestFilterHandler()

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"field":"status","value":"500","mandate":"mustNot"}`)
	h.Append(w, httptest.NewRequest(http.MethodPost, "/api/v1/filters", body))

	require.Equal(t, http.StatusCreated, w.Code)
	var got filter.Filter
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.True(t, got.Active)
	assert.Equal(t, filter.MandateMustNot, got.Mandate)

	set, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Filters, 1)
	assert.Equal(t, "status", set.Filters[0].Field)
	assert.Equal(t, int32(1), atomic.LoadInt32(signals))
}

func TestFilterHandler_Append_DefaultsToMustAndHonoursInactive(t *testing.T) {
	h, store, _ := newTestFilterHandler()

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"field":"host","value":"a","active":false}`)
	h.Append(w, httptest.NewRequest(http.MethodPost, "/api/v1/filters", body))

	require.Equal(t, http.StatusCreated, w.Code)
	set, _ := store.List(context.Background())
	require.Len(t, set.Filters, 1)
	assert.Equal(t, filter.MandateMust, set.Filters[0].Mandate)
	assert.False(t, set.Filters[0].Active)
}

func TestFilterHandler_Append_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing field", `{"value":"a"}`},
		{"bad mandate", `{"field":"f","value":"a","mandate":"should"}`},
		{"unknown key", `{"field":"f","colour":"red"}`},
		{"malformed", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, signals := newTestFilterHandler()
			w := httptest.NewRecorder()
			h.Append(w, httptest.NewRequest(http.MethodPost, "/api/v1/filters", bytes.NewBufferString(tt.body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, atomic.LoadInt32(signals))
		})
	}
}

func TestFilterHandler_SetTimeRange(t *testing.T) {
	h, store, signals := newTestFilterHandler()

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"field":"@timestamp","from":"2024-01-01T00:00:00Z","to":"2024-01-02T00:00:00Z"}`)
	h.SetTimeRange(w, httptest.NewRequest(http.MethodPut, "/api/v1/filters/time", body))

	require.Equal(t, http.StatusOK, w.Code)
	set, _ := store.List(context.Background())
	require.NotNil(t, set.Time)
	assert.Equal(t, "@timestamp", set.Time.Field)
	assert.True(t, set.Time.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int32(1), atomic.LoadInt32(signals))
}

func TestFilterHandler_SetTimeRange_Inverted(t *testing.T) {
	h, store, _ := newTestFilterHandler()

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"field":"ts","from":"2024-01-02T00:00:00Z","to":"2024-01-01T00:00:00Z"}`)
	h.SetTimeRange(w, httptest.NewRequest(http.MethodPut, "/api/v1/filters/time", body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	set, _ := store.List(context.Background())
	assert.Nil(t, set.Time)
}

func TestFilterHandler_Clear(t *testing.T) {
	h, store, _ := newTestFilterHandler()
	require.NoError(t, store.Append(context.Background(), filter.NewFilter("a", "b", filter.MandateMust)))

	w := httptest.NewRecorder()
	h.Clear(w, httptest.NewRequest(http.MethodDelete, "/api/v1/filters", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	set, _ := store.List(context.Background())
	assert.Empty(t, set.Filters)
}

//Personal.AI order the ending
