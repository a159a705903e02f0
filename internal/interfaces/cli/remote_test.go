package cli

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/internal/testutil"
	"github.com/turtacn/facetmap/pkg/client"
)

func newAPI(t *testing.T) (*Runtime, string) {
	t.Helper()
	solrSrv, _ := newSolr(t)
	rt, err := NewRuntime(context.Background(), runtimeConfig(solrSrv.URL), testutil.NewMockLogger())
	require.NoError(t, err)
	api := httptest.NewServer(rt.Router("test"))
	t.Cleanup(func() {
		api.Close()
		_ = rt.Close()
	})
	return rt, api.URL
}

func TestRefreshCmd(t *testing.T) {
	_, url := newAPI(t)

	out, err := runCLI(t, "--server", url, "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: refresh requested (panel ")
}

func TestRefreshCmd_ServerDown(t *testing.T) {
	_, err := runCLI(t, "--server", "http://127.0.0.1:1", "refresh")
	assert.Error(t, err)
}

func TestClickCmd(t *testing.T) {
	rt, url := newAPI(t)
	require.NoError(t, rt.Panel.Refresh(context.Background()))

	out, err := runCLI(t, "--server", url, "click", "US")
	require.NoError(t, err)
	assert.Contains(t, out, `filtered country on "US"`)

	out, err = runCLI(t, "--server", url, "click", "AQ")
	require.NoError(t, err)
	assert.Contains(t, out, "AQ has no documents")

	out, err = runCLI(t, "--server", url, "click", "ZZ", "--count", "4")
	require.NoError(t, err)
	assert.Contains(t, out, `filtered country on "ZZ"`)

	set, err := rt.Filters.List(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Filters, 2)
	assert.Equal(t, "US", set.Filters[0].Value)
	assert.Equal(t, "ZZ", set.Filters[1].Value)
}

func TestClickCmd_RequiresCategory(t *testing.T) {
	_, err := runCLI(t, "--server", "http://127.0.0.1:1", "click")
	assert.Error(t, err)
}

func TestFiltersCmd_ListAndClear(t *testing.T) {
	rt, url := newAPI(t)
	require.NoError(t, rt.Panel.Refresh(context.Background()))
	_, err := runCLI(t, "--server", url, "click", "FR")
	require.NoError(t, err)

	out, err := runCLI(t, "--server", url, "filters")
	require.NoError(t, err)
	assert.Contains(t, out, "time  timestamp_tdt [")
	assert.Contains(t, out, `must    country:"FR"`)

	out, err = runCLI(t, "--server", url, "-o", "json", "filters")
	require.NoError(t, err)
	var set client.FilterSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	require.Len(t, set.Filters, 1)
	assert.Equal(t, client.MandateMust, set.Filters[0].Mandate)
	require.NotNil(t, set.Time)

	out, err = runCLI(t, "--server", url, "-o", "table", "filters")
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(out), "MANDATE")
	assert.Contains(t, out, "FR")

	out, err = runCLI(t, "--server", url, "filters", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: filters cleared")

	out, err = runCLI(t, "--server", url, "filters")
	require.NoError(t, err)
	assert.Contains(t, out, "no filters")
}

func TestFilterList_InactiveMarker(t *testing.T) {
	l := FilterList{&client.FilterSet{Filters: []client.Filter{
		{ID: "a", Field: "level", Value: "debug", Mandate: client.MandateMustNot, Active: false},
	}}}
	assert.Equal(t, `mustNot level:"debug" (inactive)`, l.String())
	assert.Equal(t, [][]string{{"a", "level", "debug", "mustNot", "false"}}, l.TableRows())
}
//Personal.AI order the ending
