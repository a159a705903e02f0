package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/facetmap/internal/domain/filter"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
)

// Signaler requests a refresh after the filter set changes.
type Signaler interface {
	Signal(ctx context.Context) error
}

// FilterHandler edits the shared filter store.
type FilterHandler struct {
	store    filter.Store
	signaler Signaler
	logger   logging.Logger
}

// NewFilterHandler creates a new FilterHandler. signaler may be nil.
func NewFilterHandler(store filter.Store, signaler Signaler, logger logging.Logger) *FilterHandler {
	return &FilterHandler{store: store, signaler: signaler, logger: logger}
}

// AppendFilterRequest is the body of POST /api/v1/filters. Mandate defaults
// to must and Active to true.
type AppendFilterRequest struct {
	Field   string         `json:"field"`
	Value   string         `json:"value"`
	Mandate filter.Mandate `json:"mandate"`
	Active  *bool          `json:"active,omitempty"`
}

// TimeRangeRequest is the body of PUT /api/v1/filters/time.
type TimeRangeRequest struct {
	Field string    `json:"field"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}

// List handles GET /api/v1/filters.
func (h *FilterHandler) List(w http.ResponseWriter, r *http.Request) {
	set, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list filters", logging.Err(err))
		writeAppError(w, err)
		return
	}
	if set.Filters == nil {
		set.Filters = []filter.Filter{}
	}
	writeJSON(w, http.StatusOK, set)
}

// Append handles POST /api/v1/filters.
func (h *FilterHandler) Append(w http.ResponseWriter, r *http.Request) {
	var req AppendFilterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if req.Mandate == "" {
		req.Mandate = filter.MandateMust
	}

	f := filter.NewFilter(req.Field, req.Value, req.Mandate)
	if req.Active != nil {
		f.Active = *req.Active
	}
	if err := h.store.Append(r.Context(), f); err != nil {
		writeAppError(w, err)
		return
	}
	h.logger.Info("filter appended",
		logging.String("field", f.Field),
		logging.String("mandate", string(f.Mandate)))

	h.signal(r.Context())
	writeJSON(w, http.StatusCreated, f)
}

// SetTimeRange handles PUT /api/v1/filters/time.
func (h *FilterHandler) SetTimeRange(w http.ResponseWriter, r *http.Request) {
	var req TimeRangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	tr := filter.TimeRange{Field: req.Field, From: req.From, To: req.To}
	if err := h.store.SetTimeRange(r.Context(), tr); err != nil {
		writeAppError(w, err)
		return
	}
	h.signal(r.Context())
	writeJSON(w, http.StatusOK, tr)
}

// Clear handles DELETE /api/v1/filters.
func (h *FilterHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear filters", logging.Err(err))
		writeAppError(w, err)
		return
	}
	h.signal(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// signal is best effort: the edit has already been stored.
func (h *FilterHandler) signal(ctx context.Context) {
	if h.signaler == nil {
		return
	}
	if err := h.signaler.Signal(ctx); err != nil {
		h.logger.Warn("refresh signal after filter edit failed", logging.Err(err))
	}
}

//Personal.AI order the ending
