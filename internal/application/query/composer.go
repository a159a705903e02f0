package query

import (
	"context"

	"github.com/turtacn/facetmap/internal/domain/filter"
	"github.com/turtacn/facetmap/internal/domain/panel"
	"github.com/turtacn/facetmap/internal/domain/savedquery"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/pkg/errors"
)

// Composer reads the filter and saved-query stores and builds a Query.
type Composer struct {
	filters filter.Store
	queries savedquery.Store
	logger  logging.Logger
}

// NewComposer wires a Composer. A nil logger discards output.
func NewComposer(filters filter.Store, queries savedquery.Store, logger logging.Logger) *Composer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Composer{filters: filters, queries: queries, logger: logger.Named("composer")}
}

// Compose snapshots the stores and builds the query for cfg.
func (c *Composer) Compose(ctx context.Context, cfg panel.Config) (*Query, error) {
	set, err := c.filters.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "list filters")
	}
	subs, err := c.queries.Resolve(ctx, cfg.Queries.Selection)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "resolve saved queries")
	}

	q, skipped, err := Build(subs, set, cfg)
	if err != nil {
		return nil, err
	}
	for _, f := range skipped {
		c.logger.Warn("filter on time field ignored",
			logging.String("field", f.Field),
			logging.String("value", f.Value),
			logging.String("filter_id", f.ID))
	}
	return q, nil
}

// Build is the pure composition step. It returns the query and the active
// filters that were dropped because they target the time field.
//
// The time range is checked before the target field so an empty filter set
// always reports ErrMissingTimeRange.
func Build(subs []savedquery.SubQuery, set filter.FilterSet, cfg panel.Config) (*Query, []filter.Filter, error) {
	if !set.HasTimeRange() {
		return nil, nil, errors.ErrMissingTimeRange
	}
	if cfg.Field == "" {
		return nil, nil, errors.ErrMissingTargetField
	}

	q := &Query{
		Should: make([]string, 0, len(subs)),
		Facet: Facet{
			Field:   cfg.Field,
			Size:    cfg.Size,
			Exclude: cfg.ExcludeList(),
		},
		Custom:  cfg.Queries.Custom,
		Indices: cfg.ActiveIndices(),
	}
	// a match-all member makes the whole OR group match everything
	for _, s := range subs {
		if s.IsMatchAll() {
			q.Should = q.Should[:0]
			break
		}
		q.Should = append(q.Should, s.Query)
	}

	tr := set.Time
	q.Clauses = append(q.Clauses, Clause{Kind: KindRange, Field: tr.Field, From: tr.From, To: tr.To})

	var (
		either  []Term
		skipped []filter.Filter
	)
	for _, f := range set.Filters {
		if !f.Active {
			continue
		}
		if f.Field == tr.Field {
			skipped = append(skipped, f)
			continue
		}
		switch f.Mandate {
		case filter.MandateMust:
			q.Clauses = append(q.Clauses, Clause{Kind: KindEquality, Field: f.Field, Value: f.Value})
		case filter.MandateMustNot:
			q.Clauses = append(q.Clauses, Clause{Kind: KindNegation, Field: f.Field, Value: f.Value})
		case filter.MandateEither:
			either = append(either, Term{Field: f.Field, Value: f.Value})
		}
	}
	if len(either) > 0 {
		q.Clauses = append(q.Clauses, Clause{Kind: KindDisjunction, Terms: either})
	}
	return q, skipped, nil
}

//Personal.AI order the ending
