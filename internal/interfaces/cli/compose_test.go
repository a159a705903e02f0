package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeCommand_Flat(t *testing.T) {
	srv, last := newSolr(t)
	path := writeConfig(t, srv.URL, "")

	out, err := runCLI(t, "-c", path, "compose")
	require.NoError(t, err)

	assert.Contains(t, out, "q=*:*")
	assert.Contains(t, out, "fq=timestamp_tdt:[")
	assert.Contains(t, out, "facet.field=country")
	assert.Contains(t, out, "facet.limit=10")
	assert.Empty(t, *last, "compose must not execute the query")
}

func TestComposeCommand_Encoded(t *testing.T) {
	srv, _ := newSolr(t)
	path := writeConfig(t, srv.URL, "")

	out, err := runCLI(t, "-c", path, "compose", "--format", "encoded")
	require.NoError(t, err)
	assert.Contains(t, out, "q=%2A%3A%2A")
	assert.NotContains(t, out, " TO ")
}

func TestComposeCommand_DSLAsJSON(t *testing.T) {
	srv, _ := newSolr(t)
	path := writeConfig(t, srv.URL, "")

	out, err := runCLI(t, "-c", path, "-o", "json", "compose", "--format", "dsl")
	require.NoError(t, err)

	var res struct {
		Field   string                 `json:"field"`
		Indices []string               `json:"indices"`
		DSL     map[string]interface{} `json:"dsl"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "country", res.Field)
	assert.Equal(t, []string{"logs"}, res.Indices)
	assert.Contains(t, res.DSL, "query")
	assert.Contains(t, res.DSL, "aggs")
}

func TestComposeCommand_SavedQuerySelection(t *testing.T) {
	srv, _ := newSolr(t)
	path := writeConfig(t, srv.URL, `  queries:
    mode: selected
    ids: [errors]
saved_queries:
  - id: errors
    query: "level:error"
`)

	out, err := runCLI(t, "-c", path, "compose")
	require.NoError(t, err)
	assert.Contains(t, out, "level:error")
}

func TestComposeCommand_UnknownFormat(t *testing.T) {
	srv, _ := newSolr(t)
	path := writeConfig(t, srv.URL, "")

	_, err := runCLI(t, "-c", path, "compose", "--format", "sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported query format")
}

//Personal.AI order the ending
