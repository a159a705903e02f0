// Package interaction turns clicks on rendered categories into new must
// filters and a refresh request.
package interaction

import (
	"context"

	"github.com/turtacn/facetmap/internal/application/aggregate"
	"github.com/turtacn/facetmap/internal/domain/filter"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/pkg/errors"
)

// Event is produced by the render boundary when a category is clicked.
type Event struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// RefreshSignaler requests a new refresh cycle. It must not block on the
// cycle itself.
type RefreshSignaler interface {
	Signal(ctx context.Context) error
}

// SignalFunc adapts a function to RefreshSignaler.
type SignalFunc func(ctx context.Context) error

func (f SignalFunc) Signal(ctx context.Context) error { return f(ctx) }

// Controller appends filters on click. It never re-renders directly.
type Controller struct {
	store    filter.Store
	signaler RefreshSignaler
	logger   logging.Logger
}

// NewController wires a Controller.
func NewController(store filter.Store, signaler RefreshSignaler, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Controller{store: store, signaler: signaler, logger: logger.Named("interaction")}
}

// Click applies ev against field, the facet field of the last query. It
// reports whether the filter set was mutated. A category without documents
// (count zero or below) is a no-op.
func (c *Controller) Click(ctx context.Context, field string, ev Event) (bool, error) {
	if ev.Count <= 0 {
		c.logger.Debug("click ignored, empty category", logging.String("category", ev.Category))
		return false, nil
	}
	if field == "" {
		return false, errors.ErrMissingTargetField
	}

	f := filter.NewFilter(field, ev.Category, filter.MandateMust)
	if err := c.store.Append(ctx, f); err != nil {
		return false, errors.Wrap(err, errors.CodeUnknown, "append click filter")
	}
	c.logger.Info("filter added from click",
		logging.String("field", field),
		logging.String("value", ev.Category),
		logging.Int64("count", ev.Count))

	if err := c.signaler.Signal(ctx); err != nil {
		return true, errors.Wrap(err, errors.CodeUnknown, "signal refresh")
	}
	return true, nil
}

// ClickCategory resolves the count for category from counts and clicks it.
// Categories absent from counts resolve to zero.
func (c *Controller) ClickCategory(ctx context.Context, field, category string, counts aggregate.CategoryCounts) (bool, error) {
	return c.Click(ctx, field, Event{Category: category, Count: counts.Get(category)})
}

//Personal.AI order the ending
