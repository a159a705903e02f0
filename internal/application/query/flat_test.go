package query

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/internal/domain/filter"
)

func baseQuery(t *testing.T, mutate func(*filter.FilterSet)) *Query {
	t.Helper()
	set := filter.FilterSet{Time: &filter.TimeRange{Field: "ts", From: day0, To: day1}}
	if mutate != nil {
		mutate(&set)
	}
	q, _, err := Build(nil, set, panelConfig("country_code", 10))
	require.NoError(t, err)
	return q
}

func TestFlat_TimestampsNormalisedToUTC(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	set := filter.FilterSet{Time: &filter.TimeRange{
		Field: "ts",
		From:  time.Date(2021, 1, 1, 1, 0, 0, 0, cet),
		To:    time.Date(2021, 1, 1, 13, 30, 15, 250_000_000, cet),
	}}
	q, _, err := Build(nil, set, panelConfig("country_code", 10))
	require.NoError(t, err)
	assert.Contains(t, q.Flat(), "fq=ts:[2021-01-01T00:00:00.000Z TO 2021-01-01T12:30:15.250Z]")
}

func TestFlat_ExcludeAfterLimit(t *testing.T) {
	q := baseQuery(t, nil)
	q.Facet.Exclude = []string{"US", "FR"}
	assert.Contains(t, q.Flat(), "&facet.limit=10&facet.excludeTerms=US,FR")

	q.Facet.Exclude = nil
	assert.NotContains(t, q.Flat(), "excludeTerms")
}

func TestFlat_CustomFragmentAppendedVerbatim(t *testing.T) {
	q := baseQuery(t, func(s *filter.FilterSet) {
		s.Filters = append(s.Filters, active("status", "error", filter.MandateMust))
	})
	q.Custom = "&fq=type:[* TO *]&debug=true"

	assert.True(t, strings.HasSuffix(q.Flat(), `&fq=status:"error"&fq=type:[* TO *]&debug=true`))
	assert.True(t, strings.HasSuffix(q.Encode(), "&fq=type:[* TO *]&debug=true"), "custom is not escaped")
}

func TestFlat_ValuesAreEscapedInsidePhrase(t *testing.T) {
	q := baseQuery(t, func(s *filter.FilterSet) {
		s.Filters = append(s.Filters, active("msg", `say "hi" \o/`, filter.MandateMustNot))
	})
	assert.True(t, strings.HasSuffix(q.Flat(), `&fq=-msg:"say \"hi\" \\o/"`))
}

func TestEncode_RoundTripsThroughURLParsing(t *testing.T) {
	q := baseQuery(t, func(s *filter.FilterSet) {
		s.Filters = append(s.Filters,
			active("status", "error", filter.MandateMust),
			active("host", "a&b", filter.MandateEither),
		)
	})

	values, err := url.ParseQuery(q.Encode())
	require.NoError(t, err)
	assert.Equal(t, "*:*", values.Get("q"))
	assert.Equal(t, "message", values.Get("df"))
	assert.Equal(t, "0", values.Get("rows"))
	assert.Equal(t, []string{
		"ts:[2021-01-01T00:00:00.000Z TO 2021-01-02T00:00:00.000Z]",
		`status:"error"`,
		`(host:"a&b")`,
	}, values["fq"])
}

func TestFlatParams_Order(t *testing.T) {
	keys := make([]string, 0)
	for _, p := range baseQuery(t, nil).FlatParams() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"q", "df", "wt", "fq", "rows", "facet", "facet.field", "facet.limit"}, keys)
}

//Personal.AI order the ending
