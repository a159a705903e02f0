package client

import (
	"context"
	"encoding/json"
	"time"
)

// Frame is the last rendered panel frame.
type Frame struct {
	CycleID string           `json:"cycle_id"`
	Status  string           `json:"status"`
	Field   string           `json:"field"`
	Counts  map[string]int64 `json:"counts"`
	Hits    int64            `json:"hits"`
	Colors  []string         `json:"colors"`
	Exclude []string         `json:"exclude"`
	Map     string           `json:"map"`
	Error   string           `json:"error,omitempty"`
	At      time.Time        `json:"at"`
}

// Counts is a frame plus where it came from. Source is "local" for the
// replica's own cycle and "cache" for a frame shared by another replica.
type Counts struct {
	Frame
	State  string `json:"state"`
	Source string `json:"source"`
}

// FlatQuery is the flat-dialect query the next cycle would send.
type FlatQuery struct {
	Field string `json:"field"`
	Flat  string `json:"flat"`
}

// ClickResult reports whether a click appended a filter.
type ClickResult struct {
	Applied bool   `json:"applied"`
	Field   string `json:"field"`
}

type clickRequest struct {
	Category string `json:"category"`
	Count    *int64 `json:"count,omitempty"`
}

// PanelClient covers /api/v1/panel.
type PanelClient struct {
	client *Client
}

// Counts returns the last rendered frame.
func (p *PanelClient) Counts(ctx context.Context) (*Counts, error) {
	var out Counts
	if err := p.client.get(ctx, "/api/v1/panel/counts", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh asks the server to run a cycle and returns the cycle state at the
// time of the request.
func (p *PanelClient) Refresh(ctx context.Context) (string, error) {
	var out struct {
		State string `json:"state"`
	}
	if err := p.client.post(ctx, "/api/v1/panel/refresh", nil, &out); err != nil {
		return "", err
	}
	return out.State, nil
}

// Click filters the panel field on category. The server looks the count up
// in its last frame.
func (p *PanelClient) Click(ctx context.Context, category string) (*ClickResult, error) {
	return p.click(ctx, clickRequest{Category: category})
}

// ClickWithCount filters on category using the count the caller saw.
func (p *PanelClient) ClickWithCount(ctx context.Context, category string, count int64) (*ClickResult, error) {
	return p.click(ctx, clickRequest{Category: category, Count: &count})
}

func (p *PanelClient) click(ctx context.Context, req clickRequest) (*ClickResult, error) {
	var out ClickResult
	if err := p.client.post(ctx, "/api/v1/panel/click", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DSL returns the structured query. The panel must be spyable.
func (p *PanelClient) DSL(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := p.client.get(ctx, "/api/v1/panel/query?format=dsl", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Flat returns the flat query. The panel must be spyable.
func (p *PanelClient) Flat(ctx context.Context) (*FlatQuery, error) {
	var out FlatQuery
	if err := p.client.get(ctx, "/api/v1/panel/query?format=flat", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
