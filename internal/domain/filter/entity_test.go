package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/pkg/errors"
)

func TestMandate_IsValid(t *testing.T) {
	assert.True(t, MandateMust.IsValid())
	assert.True(t, MandateMustNot.IsValid())
	assert.True(t, MandateEither.IsValid())
	assert.False(t, Mandate("should").IsValid())
	assert.False(t, Mandate("").IsValid())
}

func TestNewFilter(t *testing.T) {
	f := NewFilter("country_code", "US", MandateMust)
	assert.NotEmpty(t, f.ID)
	assert.True(t, f.Active)
	assert.NoError(t, f.Validate())
}

func TestFilter_Validate(t *testing.T) {
	err := Filter{Value: "x", Mandate: MandateMust}.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	err = Filter{Field: "status", Value: "x", Mandate: "maybe"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maybe")
}

func TestTimeRange_Validate(t *testing.T) {
	from := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	assert.NoError(t, TimeRange{Field: "@timestamp", From: from, To: to}.Validate())
	assert.Error(t, TimeRange{From: from, To: to}.Validate())
	assert.Error(t, TimeRange{Field: "@timestamp", To: to}.Validate())
	assert.Error(t, TimeRange{Field: "@timestamp", From: to, To: from}.Validate())
}

func TestFilterSet_Clone(t *testing.T) {
	tr := TimeRange{Field: "ts", From: time.Unix(0, 0), To: time.Unix(10, 0)}
	orig := FilterSet{Time: &tr, Filters: []Filter{NewFilter("a", "b", MandateMust)}}

	clone := orig.Clone()
	clone.Filters[0].Value = "changed"
	clone.Time.Field = "other"

	assert.Equal(t, "b", orig.Filters[0].Value)
	assert.Equal(t, "ts", orig.Time.Field)
	assert.True(t, clone.HasTimeRange())
	assert.False(t, FilterSet{}.HasTimeRange())
}

//Personal.AI order the ending
