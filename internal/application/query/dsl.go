package query

import (
	"bytes"
	"encoding/json"

	"github.com/turtacn/facetmap/pkg/errors"
)

// AggregationName is the key of the terms aggregation in the DSL body.
const AggregationName = "map"

// DSL renders the structured search body: a bool query whose should clauses
// are the saved queries and whose filter clauses mirror Clauses, plus a terms
// aggregation on the facet field. No documents are requested.
func (q *Query) DSL() map[string]interface{} {
	should := make([]interface{}, 0, len(q.Should))
	for _, s := range q.Should {
		should = append(should, map[string]interface{}{
			"query_string": map[string]interface{}{"query": s},
		})
	}
	if len(should) == 0 {
		should = append(should, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	filters := make([]interface{}, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		filters = append(filters, c.dsl())
	}

	terms := map[string]interface{}{
		"field": q.Facet.Field,
		"size":  q.Facet.Size,
	}
	if len(q.Facet.Exclude) > 0 {
		terms["exclude"] = q.Facet.Exclude
	}

	return map[string]interface{}{
		"size":             0,
		"track_total_hits": true,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
				"filter":               filters,
			},
		},
		"aggs": map[string]interface{}{
			AggregationName: map[string]interface{}{"terms": terms},
		},
	}
}

// MarshalDSL returns the compact JSON body for execution.
func (q *Query) MarshalDSL() ([]byte, error) {
	b, err := json.Marshal(q.DSL())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal query dsl")
	}
	return b, nil
}

// Inspect returns the structured query as indented JSON for debugging.
func (q *Query) Inspect() (string, error) {
	b, err := q.MarshalDSL()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "indent query dsl")
	}
	return out.String(), nil
}

func (c Clause) dsl() map[string]interface{} {
	switch c.Kind {
	case KindRange:
		return map[string]interface{}{
			"range": map[string]interface{}{
				c.Field: map[string]interface{}{
					"gte":    formatTimestamp(c.From),
					"lte":    formatTimestamp(c.To),
					"format": "strict_date_optional_time",
				},
			},
		}
	case KindEquality:
		return Term{c.Field, c.Value}.dsl()
	case KindNegation:
		return map[string]interface{}{
			"bool": map[string]interface{}{
				"must_not": []interface{}{Term{c.Field, c.Value}.dsl()},
			},
		}
	case KindDisjunction:
		should := make([]interface{}, len(c.Terms))
		for i, t := range c.Terms {
			should[i] = t.dsl()
		}
		return map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		}
	}
	return map[string]interface{}{}
}

func (t Term) dsl() map[string]interface{} {
	return map[string]interface{}{
		"match_phrase": map[string]interface{}{t.Field: t.Value},
	}
}

//Personal.AI order the ending
