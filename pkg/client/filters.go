package client

import (
	"context"
	"time"
)

// Mandates accepted by AppendFilter.
const (
	MandateMust    = "must"
	MandateMustNot = "mustNot"
	MandateEither  = "either"
)

// Filter is one entry in the shared filter list.
type Filter struct {
	ID      string `json:"id"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Mandate string `json:"mandate"`
	Active  bool   `json:"active"`
}

// TimeRange is the mandatory time window.
type TimeRange struct {
	Field string    `json:"field"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}

// FilterSet is the time range plus the filter list.
type FilterSet struct {
	Time    *TimeRange `json:"time,omitempty"`
	Filters []Filter   `json:"filters"`
}

// AppendFilterRequest is the body of an append. An empty Mandate means must;
// a nil Active means active.
type AppendFilterRequest struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Mandate string `json:"mandate,omitempty"`
	Active  *bool  `json:"active,omitempty"`
}

// FiltersClient covers /api/v1/filters.
type FiltersClient struct {
	client *Client
}

func (f *FiltersClient) List(ctx context.Context) (*FilterSet, error) {
	var out FilterSet
	if err := f.client.get(ctx, "/api/v1/filters", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *FiltersClient) Append(ctx context.Context, req AppendFilterRequest) (*Filter, error) {
	var out Filter
	if err := f.client.post(ctx, "/api/v1/filters", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetTimeRange replaces the time window.
func (f *FiltersClient) SetTimeRange(ctx context.Context, tr TimeRange) (*TimeRange, error) {
	var out TimeRange
	if err := f.client.put(ctx, "/api/v1/filters/time", tr, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Clear drops every filter and the time range.
func (f *FiltersClient) Clear(ctx context.Context) error {
	return f.client.delete(ctx, "/api/v1/filters")
}

//Personal.AI order the ending
