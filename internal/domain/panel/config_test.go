package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/internal/domain/savedquery"
	"github.com/turtacn/facetmap/pkg/errors"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, 100, d.Size)
	assert.Equal(t, []string{"#A0E2E2", "#265656"}, d.Colors)
	assert.Equal(t, MapWorld, d.Map)
	assert.True(t, d.Spyable)
	assert.Equal(t, 0, d.IndexLimit)
	assert.Equal(t, savedquery.ModeAll, d.Queries.Mode)
	assert.Equal(t, "*:*", d.Queries.Query)
	assert.Empty(t, d.Queries.Custom)
	assert.NoError(t, d.Validate())
}

func TestWithDefaults_KeepsEdits(t *testing.T) {
	c := Config{Field: "country_code", Size: 10, Map: MapUS}.WithDefaults()
	assert.Equal(t, "country_code", c.Field)
	assert.Equal(t, 10, c.Size)
	assert.Equal(t, MapUS, c.Map)
	assert.Len(t, c.Colors, 2)
	assert.Equal(t, savedquery.ModeAll, c.Queries.Mode)
	assert.NotNil(t, c.Exclude)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero size", func(c *Config) { c.Size = 0 }, "size"},
		{"negative index limit", func(c *Config) { c.IndexLimit = -1 }, "index_limit"},
		{"unknown map", func(c *Config) { c.Map = "mars" }, "map"},
		{"one color", func(c *Config) { c.Colors = []string{"#fff"} }, "colors"},
		{"bad color", func(c *Config) { c.Colors = []string{"#fff", "blue"} }, "colors"},
		{"bad mode", func(c *Config) { c.Queries.Mode = "some" }, "mode"},
		{"empty field is allowed", func(c *Config) { c.Field = "" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExcludeList(t *testing.T) {
	c := Config{Exclude: []string{"US", " ", "FR", "US", " DE "}}
	assert.Equal(t, []string{"US", "FR", "DE"}, c.ExcludeList())
	assert.Empty(t, Config{}.ExcludeList())
}

func TestActiveIndices(t *testing.T) {
	c := Config{Indices: []string{"a", "b", "c"}}
	assert.Equal(t, []string{"a", "b", "c"}, c.ActiveIndices())

	c.IndexLimit = 2
	assert.Equal(t, []string{"a", "b"}, c.ActiveIndices())

	c.IndexLimit = 5
	assert.Len(t, c.ActiveIndices(), 3)
}

//Personal.AI order the ending
