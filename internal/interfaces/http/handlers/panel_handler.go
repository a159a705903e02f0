package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/facetmap/internal/application/aggregate"
	"github.com/turtacn/facetmap/internal/application/interaction"
	"github.com/turtacn/facetmap/internal/application/panel"
	"github.com/turtacn/facetmap/internal/application/query"
	domain "github.com/turtacn/facetmap/internal/domain/panel"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/pkg/errors"
)

// PanelService is the slice of *panel.Panel the handlers use.
type PanelService interface {
	Config() domain.Config
	Compose(ctx context.Context) (*query.Query, error)
	Inspect(ctx context.Context) (string, error)
	Signal(ctx context.Context) error
	Snapshot() (panel.Frame, bool)
	State() panel.State
	Field() string
}

// Clicker applies category clicks.
type Clicker interface {
	Click(ctx context.Context, field string, ev interaction.Event) (bool, error)
	ClickCategory(ctx context.Context, field, category string, counts aggregate.CategoryCounts) (bool, error)
}

// FrameSource returns the last frame another replica rendered.
type FrameSource interface {
	Latest(ctx context.Context, field string) (panel.Frame, bool, error)
}

// InteractionRecorder counts clicks and refresh signals.
type InteractionRecorder interface {
	RecordClick(result string)
	RecordSignal(source string)
}

type nopInteractionRecorder struct{}

func (nopInteractionRecorder) RecordClick(string)  {}
func (nopInteractionRecorder) RecordSignal(string) {}

// PanelHandler serves the inspector, refresh, counts and click endpoints.
type PanelHandler struct {
	panel    PanelService
	clicker  Clicker
	frames   FrameSource
	recorder InteractionRecorder
	logger   logging.Logger
}

// PanelHandlerOption configures optional collaborators.
type PanelHandlerOption func(*PanelHandler)

// WithFrameSource sets the fallback used by Counts before the first local cycle.
func WithFrameSource(fs FrameSource) PanelHandlerOption {
	return func(h *PanelHandler) { h.frames = fs }
}

// WithInteractionRecorder sets the click and signal metrics sink.
func WithInteractionRecorder(r InteractionRecorder) PanelHandlerOption {
	return func(h *PanelHandler) { h.recorder = r }
}

// NewPanelHandler creates a new PanelHandler.
func NewPanelHandler(p PanelService, clicker Clicker, logger logging.Logger, opts ...PanelHandlerOption) *PanelHandler {
	h := &PanelHandler{
		panel:    p,
		clicker:  clicker,
		recorder: nopInteractionRecorder{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// QueryResponse is returned by the flat inspector format.
type QueryResponse struct {
	Field string `json:"field"`
	Flat  string `json:"flat"`
}

// RefreshResponse acknowledges a refresh request.
type RefreshResponse struct {
	State string `json:"state"`
}

// CountsResponse is the last rendered frame plus the live cycle state.
type CountsResponse struct {
	panel.Frame
	State  string `json:"state"`
	Source string `json:"source"`
}

// ClickRequest names the clicked category. When Count is omitted it is
// resolved from the last rendered frame.
type ClickRequest struct {
	Category string `json:"category"`
	Count    *int64 `json:"count,omitempty"`
}

// ClickResponse reports whether a filter was appended.
type ClickResponse struct {
	Applied bool   `json:"applied"`
	Field   string `json:"field"`
}

// Query handles GET /api/v1/panel/query. format=dsl (default) returns the
// structured query, format=flat the flat string.
func (h *PanelHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch format := r.URL.Query().Get("format"); format {
	case "", "dsl":
		body, err := h.panel.Inspect(ctx)
		if err != nil {
			h.logger.Debug("inspect failed", logging.Err(err))
			writeAppError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	case "flat":
		if !h.panel.Config().Spyable {
			writeAppError(w, errors.New(errors.ErrCodeFeatureDisabled, "panel is not spyable"))
			return
		}
		q, err := h.panel.Compose(ctx)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, QueryResponse{Field: q.Field(), Flat: q.Flat()})
	default:
		writeError(w, http.StatusBadRequest, errors.InvalidParam("format must be dsl or flat").WithDetail(format))
	}
}

// Refresh handles POST /api/v1/panel/refresh. It never waits for the cycle.
func (h *PanelHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.panel.Signal(r.Context()); err != nil {
		h.logger.Error("refresh signal failed", logging.Err(err))
		writeAppError(w, err)
		return
	}
	h.recorder.RecordSignal("http")
	writeJSON(w, http.StatusAccepted, RefreshResponse{State: h.panel.State().String()})
}

// Counts handles GET /api/v1/panel/counts.
func (h *PanelHandler) Counts(w http.ResponseWriter, r *http.Request) {
	if f, ok := h.panel.Snapshot(); ok {
		writeJSON(w, http.StatusOK, CountsResponse{Frame: f, State: h.panel.State().String(), Source: "local"})
		return
	}
	if h.frames != nil {
		f, ok, err := h.frames.Latest(r.Context(), h.panel.Field())
		if err != nil {
			h.logger.Warn("frame cache lookup failed", logging.Err(err))
		} else if ok {
			writeJSON(w, http.StatusOK, CountsResponse{Frame: f, State: h.panel.State().String(), Source: "cache"})
			return
		}
	}
	writeAppError(w, errors.NotFound("no frame rendered yet"))
}

// Click handles POST /api/v1/panel/click.
func (h *PanelHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	field := h.panel.Field()
	var (
		applied bool
		err     error
	)
	if req.Count != nil {
		applied, err = h.clicker.Click(r.Context(), field, interaction.Event{Category: req.Category, Count: *req.Count})
	} else {
		var counts aggregate.CategoryCounts
		if f, ok := h.panel.Snapshot(); ok {
			counts = f.Counts
		}
		applied, err = h.clicker.ClickCategory(r.Context(), field, req.Category, counts)
	}
	if err != nil {
		h.recorder.RecordClick("error")
		h.logger.Error("click failed", logging.Err(err), logging.String("category", req.Category))
		writeAppError(w, err)
		return
	}

	if applied {
		h.recorder.RecordClick("applied")
		h.recorder.RecordSignal("click")
	} else {
		h.recorder.RecordClick("ignored")
	}
	writeJSON(w, http.StatusOK, ClickResponse{Applied: applied, Field: field})
}

//Personal.AI order the ending
