// Package query composes the panel's backend request from saved queries, the
// shared filter set and the panel config. One canonical Query value is built
// and then rendered as either the flat Solr parameter string or the structured
// search DSL, so both forms always carry the same clauses.
package query

import (
	"strings"
	"time"
)

// TimestampLayout renders range endpoints at millisecond precision with a
// literal Z offset.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Fixed flat-dialect parameters.
const (
	DefaultField = "message"
	ResponseType = "json"
)

// ClauseKind tags the variants of Clause.
type ClauseKind int

const (
	KindRange ClauseKind = iota
	KindEquality
	KindNegation
	KindDisjunction
)

func (k ClauseKind) String() string {
	switch k {
	case KindRange:
		return "range"
	case KindEquality:
		return "equality"
	case KindNegation:
		return "negation"
	case KindDisjunction:
		return "disjunction"
	}
	return "unknown"
}

// Term is a single field:value pair.
type Term struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Clause is one required filter clause. Which fields are set depends on Kind:
// Range uses Field/From/To, Equality and Negation use Field/Value, and
// Disjunction uses Terms.
type Clause struct {
	Kind  ClauseKind `json:"kind"`
	Field string     `json:"field,omitempty"`
	Value string     `json:"value,omitempty"`
	From  time.Time  `json:"from,omitempty"`
	To    time.Time  `json:"to,omitempty"`
	Terms []Term     `json:"terms,omitempty"`
}

// Facet is the terms aggregation requested alongside the filters.
type Facet struct {
	Field   string   `json:"field"`
	Size    int      `json:"size"`
	Exclude []string `json:"exclude"`
}

// Query is the composed request for one refresh cycle.
type Query struct {
	// Should holds the resolved saved-query strings, OR'd together. Empty
	// means match everything.
	Should []string `json:"should"`

	// Clauses are in emission order: the time range first, then must and
	// mustNot clauses in filter order, then at most one disjunction.
	Clauses []Clause `json:"clauses"`

	Facet Facet `json:"facet"`

	// Custom is appended verbatim to the flat form.
	Custom string `json:"custom,omitempty"`

	Indices []string `json:"indices"`
}

// Field returns the target facet field.
func (q *Query) Field() string {
	return q.Facet.Field
}

// TimeRange returns the range clause. Compose always emits one first.
func (q *Query) TimeRange() Clause {
	for _, c := range q.Clauses {
		if c.Kind == KindRange {
			return c
		}
	}
	return Clause{}
}

// MainQuery renders Should as a single flat-dialect query string.
func (q *Query) MainQuery() string {
	switch len(q.Should) {
	case 0:
		return "*:*"
	case 1:
		return q.Should[0]
	}
	parts := make([]string, len(q.Should))
	for i, s := range q.Should {
		parts[i] = "(" + s + ")"
	}
	return strings.Join(parts, " OR ")
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

//Personal.AI order the ending
