package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is one key=value pair of the flat form. Order is significant.
type Param struct {
	Key   string
	Value string
}

// FlatParams returns the flat-dialect parameters in wire order, without the
// custom fragment.
func (q *Query) FlatParams() []Param {
	params := []Param{
		{"q", q.MainQuery()},
		{"df", DefaultField},
		{"wt", ResponseType},
	}
	rest := q.Clauses
	if len(rest) > 0 && rest[0].Kind == KindRange {
		params = append(params, Param{"fq", rest[0].flat()})
		rest = rest[1:]
	}
	params = append(params,
		Param{"rows", "0"},
		Param{"facet", "true"},
		Param{"facet.field", q.Facet.Field},
		Param{"facet.limit", strconv.Itoa(q.Facet.Size)},
	)
	if len(q.Facet.Exclude) > 0 {
		params = append(params, Param{"facet.excludeTerms", strings.Join(q.Facet.Exclude, ",")})
	}
	for _, c := range rest {
		params = append(params, Param{"fq", c.flat()})
	}
	return params
}

// Flat renders the human-readable flat query: parameters joined unescaped,
// followed by the custom fragment.
func (q *Query) Flat() string {
	var sb strings.Builder
	for i, p := range q.FlatParams() {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.Key)
		sb.WriteByte('=')
		sb.WriteString(p.Value)
	}
	sb.WriteString(q.Custom)
	return sb.String()
}

// Encode renders the flat query for transport. Parameter values are URL
// escaped; the custom fragment is appended as-is.
func (q *Query) Encode() string {
	var sb strings.Builder
	for i, p := range q.FlatParams() {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	sb.WriteString(q.Custom)
	return sb.String()
}

func (c Clause) flat() string {
	switch c.Kind {
	case KindRange:
		return c.Field + ":[" + formatTimestamp(c.From) + " TO " + formatTimestamp(c.To) + "]"
	case KindEquality:
		return Term{c.Field, c.Value}.flat()
	case KindNegation:
		return "-" + Term{c.Field, c.Value}.flat()
	case KindDisjunction:
		parts := make([]string, len(c.Terms))
		for i, t := range c.Terms {
			parts[i] = t.flat()
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	}
	return ""
}

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func (t Term) flat() string {
	return t.Field + `:"` + phraseEscaper.Replace(t.Value) + `"`
}

//Personal.AI order the ending
