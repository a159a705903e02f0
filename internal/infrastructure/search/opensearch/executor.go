package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/facetmap/internal/application/aggregate"
	"github.com/turtacn/facetmap/internal/application/query"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/pkg/errors"
)

// Executor runs the structured query form.
type Executor struct {
	client *Client
	logger logging.Logger
}

// NewExecutor returns an Executor bound to client.
func NewExecutor(client *Client, logger logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Executor{client: client, logger: logger.Named("opensearch.executor")}
}

// Execute posts the DSL body to _search on the query's indices.
func (e *Executor) Execute(ctx context.Context, q *query.Query) (*aggregate.FacetResponse, error) {
	body, err := q.MarshalDSL()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.client.config.RequestTimeout)
	defer cancel()

	endpoint := "/" + strings.Join(q.Indices, ",") + "/_search"
	osReq := opensearchapi.SearchRequest{
		Index: q.Indices,
		Body:  bytes.NewReader(body),
	}

	start := time.Now()
	resp, err := osReq.Do(ctx, e.client.GetClient())
	if err != nil {
		return nil, errors.Transport(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Transport(fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg)), endpoint)
	}

	out, err := parseSearchResponse(resp.Body, q.Field())
	if err != nil {
		return nil, err
	}
	e.logger.Debug("search executed",
		logging.Strings("indices", q.Indices),
		logging.Int64("took_ms", time.Since(start).Milliseconds()),
		logging.Int64("hits", out.NumFound))
	return out, nil
}

type searchResponse struct {
	Hits struct {
		Total json.RawMessage `json:"total"`
	} `json:"hits"`
	Aggregations map[string]struct {
		Buckets []struct {
			Key         interface{} `json:"key"`
			KeyAsString string      `json:"key_as_string"`
			DocCount    int64       `json:"doc_count"`
		} `json:"buckets"`
	} `json:"aggregations"`
}

// parseSearchResponse maps the terms aggregation onto the alternating
// term/count layout ResultAggregator expects.
func parseSearchResponse(body io.Reader, field string) (*aggregate.FacetResponse, error) {
	var resp searchResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, errors.ErrMalformedFacetPayload.WithCause(err).WithDetail("decode search response")
	}

	total, err := parseTotal(resp.Hits.Total)
	if err != nil {
		return nil, errors.ErrMalformedFacetPayload.WithCause(err).WithDetail("hits.total")
	}

	out := &aggregate.FacetResponse{NumFound: total, FacetFields: map[string][]interface{}{}}
	agg, ok := resp.Aggregations[query.AggregationName]
	if !ok {
		return out, nil
	}
	terms := make([]interface{}, 0, 2*len(agg.Buckets))
	for _, b := range agg.Buckets {
		key := b.KeyAsString
		if key == "" {
			key = fmt.Sprint(b.Key)
		}
		terms = append(terms, key, b.DocCount)
	}
	out.FacetFields[field] = terms
	return out, nil
}

// parseTotal accepts both {"value": n} and a bare number.
func parseTotal(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var obj struct {
		Value int64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n, nil
}

//Personal.AI order the ending
