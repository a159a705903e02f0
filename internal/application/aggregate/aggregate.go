// Package aggregate turns a sparse facet payload into the dense category to
// count mapping the renderer consumes.
package aggregate

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/turtacn/facetmap/pkg/errors"
)

// FacetResponse is the backend payload after transport decoding. FacetFields
// holds, per field, a flat array alternating term and count.
type FacetResponse struct {
	NumFound    int64                    `json:"numFound"`
	FacetFields map[string][]interface{} `json:"facetFields"`
}

// CategoryCounts maps a category, case as returned, to a positive count.
// It never holds zero or negative entries.
type CategoryCounts map[string]int64

// Get returns the count for category, or 0 when absent.
func (c CategoryCounts) Get(category string) int64 {
	return c[category]
}

// Categories returns the keys sorted by descending count, then by name.
func (c CategoryCounts) Categories() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if c[out[i]] != c[out[j]] {
			return c[out[i]] > c[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// Total sums all counts.
func (c CategoryCounts) Total() int64 {
	var n int64
	for _, v := range c {
		n += v
	}
	return n
}

// Aggregate builds CategoryCounts for field. An absent field or numFound of
// zero yields an empty result. An odd-length array is ErrMalformedFacetPayload.
func Aggregate(resp *FacetResponse, field string) (CategoryCounts, error) {
	counts := CategoryCounts{}
	if resp == nil || resp.NumFound == 0 {
		return counts, nil
	}
	terms, ok := resp.FacetFields[field]
	if !ok {
		return counts, nil
	}
	if len(terms)%2 != 0 {
		return CategoryCounts{}, errors.ErrMalformedFacetPayload.
			WithDetail(fmt.Sprintf("field %q has odd length %d", field, len(terms)))
	}
	for i := 0; i < len(terms); i += 2 {
		category, err := toCategory(terms[i])
		if err != nil {
			return CategoryCounts{}, errors.ErrMalformedFacetPayload.WithDetail(fmt.Sprintf("term %d: %v", i, err))
		}
		n, err := toCount(terms[i+1])
		if err != nil {
			return CategoryCounts{}, errors.ErrMalformedFacetPayload.WithDetail(fmt.Sprintf("count %d: %v", i+1, err))
		}
		if n > 0 {
			counts[category] = n
		}
	}
	return counts, nil
}

func toCategory(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int, int64:
		return fmt.Sprint(t), nil
	}
	return "", fmt.Errorf("unexpected term type %T", v)
}

func toCount(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("non-integral count %v", t)
		}
		return int64(t), nil
	case json.Number:
		return t.Int64()
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("unexpected count type %T", v)
}

type solrEnvelope struct {
	Response struct {
		NumFound int64 `json:"numFound"`
	} `json:"response"`
	FacetCounts struct {
		FacetFields map[string][]interface{} `json:"facet_fields"`
	} `json:"facet_counts"`
}

// DecodeSolr reads a Solr select response (wt=json) into a FacetResponse.
func DecodeSolr(r io.Reader) (*FacetResponse, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var env solrEnvelope
	if err := dec.Decode(&env); err != nil {
		return nil, errors.ErrMalformedFacetPayload.WithCause(err).WithDetail("decode solr response")
	}
	return &FacetResponse{
		NumFound:    env.Response.NumFound,
		FacetFields: env.FacetCounts.FacetFields,
	}, nil
}

//Personal.AI order the ending
