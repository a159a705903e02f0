// Package filter models the shared filter set a panel composes its query from:
// an explicit time range plus an ordered list of field filters.
package filter

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/facetmap/pkg/errors"
)

// Mandate is the boolean role of a filter clause.
type Mandate string

const (
	MandateMust    Mandate = "must"
	MandateMustNot Mandate = "mustNot"
	MandateEither  Mandate = "either"
)

// IsValid reports whether m is one of the known mandates.
func (m Mandate) IsValid() bool {
	switch m {
	case MandateMust, MandateMustNot, MandateEither:
		return true
	}
	return false
}

// Filter is one entry in the filter list.
type Filter struct {
	ID      string  `json:"id"`
	Field   string  `json:"field"`
	Value   string  `json:"value"`
	Mandate Mandate `json:"mandate"`
	Active  bool    `json:"active"`
}

// NewFilter returns an active filter with a fresh id.
func NewFilter(field, value string, mandate Mandate) Filter {
	return Filter{
		ID:      uuid.NewString(),
		Field:   field,
		Value:   value,
		Mandate: mandate,
		Active:  true,
	}
}

// Validate checks that the filter can be turned into a query clause.
func (f Filter) Validate() error {
	if f.Field == "" {
		return errors.InvalidParam("filter field is required")
	}
	if !f.Mandate.IsValid() {
		return errors.InvalidParam("invalid mandate").WithDetail(string(f.Mandate))
	}
	return nil
}

// TimeRange is the mandatory time window. It lives outside the generic filter
// list and is always applied as a required range clause.
type TimeRange struct {
	Field string    `json:"field"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}

// Validate checks field presence and ordering of the endpoints.
func (r TimeRange) Validate() error {
	if r.Field == "" {
		return errors.InvalidParam("time range field is required")
	}
	if r.From.IsZero() || r.To.IsZero() {
		return errors.InvalidParam("time range endpoints are required")
	}
	if r.To.Before(r.From) {
		return errors.InvalidParam("time range is inverted").
			WithDetail(fmt.Sprintf("from=%s to=%s", r.From.Format(time.RFC3339), r.To.Format(time.RFC3339)))
	}
	return nil
}

// FilterSet is a point-in-time snapshot of the store.
type FilterSet struct {
	Time    *TimeRange `json:"time,omitempty"`
	Filters []Filter   `json:"filters"`
}

// HasTimeRange reports whether the mandatory time window is present.
func (s FilterSet) HasTimeRange() bool {
	return s.Time != nil
}

// Clone returns a deep copy so callers never share backing arrays with the store.
func (s FilterSet) Clone() FilterSet {
	out := FilterSet{Filters: make([]Filter, len(s.Filters))}
	copy(out.Filters, s.Filters)
	if s.Time != nil {
		tr := *s.Time
		out.Time = &tr
	}
	return out
}

//Personal.AI order the ending
