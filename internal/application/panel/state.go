// Package panel runs the refresh cycle of a single map panel:
// Idle, then Loading (compose, execute, aggregate), then Rendering, then back
// to Idle. At most one query is in flight; refreshes that arrive meanwhile are
// coalesced into one follow-up cycle.
package panel

import (
	"context"
	"time"

	"github.com/turtacn/facetmap/internal/application/aggregate"
	"github.com/turtacn/facetmap/internal/application/query"
	domain "github.com/turtacn/facetmap/internal/domain/panel"
)

// State of the cycle.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateRendering
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendering:
		return "rendering"
	}
	return "unknown"
}

// Status describes what a Frame shows.
type Status string

const (
	StatusOK     Status = "ok"
	StatusNoData Status = "no_data"
	StatusError  Status = "error"
)

// Cycle outcomes, used as metric labels.
const (
	OutcomeOK        = "ok"
	OutcomeNoData    = "no_data"
	OutcomeError     = "error"
	OutcomeStale     = "stale"
	OutcomeSkipped   = "skipped"
	OutcomeMalformed = "malformed"
)

// Frame is what the renderer receives at the end of a cycle.
type Frame struct {
	CycleID string                   `json:"cycle_id"`
	Status  Status                   `json:"status"`
	Field   string                   `json:"field"`
	Counts  aggregate.CategoryCounts `json:"counts"`
	Hits    int64                    `json:"hits"`
	Colors  []string                 `json:"colors"`
	Exclude []string                 `json:"exclude"`
	Map     string                   `json:"map"`
	Err     string                   `json:"error,omitempty"`
	At      time.Time                `json:"at"`
}

// Label returns the count shown when hovering category.
func (f Frame) Label(category string) int64 {
	return f.Counts.Get(category)
}

// Composer builds the query for a cycle.
type Composer interface {
	Compose(ctx context.Context, cfg domain.Config) (*query.Query, error)
}

// Executor runs a composed query. Transport failures are returned wrapped
// with the transport error code; timeouts are the executor's concern.
type Executor interface {
	Execute(ctx context.Context, q *query.Query) (*aggregate.FacetResponse, error)
}

// Renderer paints a frame.
type Renderer interface {
	Render(ctx context.Context, f Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, f Frame)

func (fn RendererFunc) Render(ctx context.Context, f Frame) { fn(ctx, f) }

// MultiRenderer paints the same frame on each renderer in order.
type MultiRenderer []Renderer

func (m MultiRenderer) Render(ctx context.Context, f Frame) {
	for _, r := range m {
		r.Render(ctx, f)
	}
}

// Recorder receives cycle metrics.
type Recorder interface {
	RecordCycle(outcome string, d time.Duration)
	RecordCoalesced()
	RecordCategories(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordCycle(string, time.Duration) {}
func (nopRecorder) RecordCoalesced()                  {}
func (nopRecorder) RecordCategories(int)              {}

//Personal.AI order the ending
