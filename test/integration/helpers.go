// Package integration exercises the wired runtime end to end: the REST API
// over a real chi router, the Go client, the shared Redis state and the
// search backends. Local tests run in-process against a fake Solr and
// miniredis; tests against real services require FACETMAP_INTEGRATION_TEST.
package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/internal/config"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/internal/interfaces/cli"
	"github.com/turtacn/facetmap/pkg/client"
	pkgErrors "github.com/turtacn/facetmap/pkg/errors"
)

const (
	// EnvIntegrationEnabled controls whether tests against real services run.
	EnvIntegrationEnabled = "FACETMAP_INTEGRATION_TEST"

	// EnvSolrURL overrides the default Solr base URL.
	EnvSolrURL = "FACETMAP_TEST_SOLR_URL"

	// EnvSolrCollection overrides the default Solr collection.
	EnvSolrCollection = "FACETMAP_TEST_SOLR_COLLECTION"

	// EnvOpenSearchURL enables the OpenSearch backend tests.
	EnvOpenSearchURL = "FACETMAP_TEST_OPENSEARCH_URL"

	// EnvRedisAddr enables the shared-state tests against a real Redis.
	EnvRedisAddr = "FACETMAP_TEST_REDIS_ADDR"

	// EnvKafkaBrokers enables the refresh bus tests.
	EnvKafkaBrokers = "FACETMAP_TEST_KAFKA_BROKERS"

	// EnvIndex names the index or collection the backend tests facet on.
	EnvIndex = "FACETMAP_TEST_INDEX"

	DefaultSolrURL        = "http://localhost:8983/solr"
	DefaultSolrCollection = "logs"
	DefaultIndex          = "logs"

	// TestTimeout is the maximum duration for a single integration test.
	TestTimeout = 60 * time.Second

	// PollInterval is how often WaitFor re-checks its condition.
	PollInterval = 20 * time.Millisecond
)

// SkipIfNoIntegration skips the calling test when the integration flag is unset.
func SkipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationEnabled) == "" {
		t.Skipf("skipping integration test: set %s=1 to enable", EnvIntegrationEnabled)
	}
}

// RequireEnv skips the calling test unless name is set and returns its value.
func RequireEnv(t *testing.T, name string) string {
	t.Helper()
	v := os.Getenv(name)
	if v == "" {
		t.Skipf("%s not set", name)
	}
	return v
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// FakeSolr serves the select and ping handlers of one collection with
// configurable facet counts.
type FakeSolr struct {
	*httptest.Server

	mu      sync.Mutex
	field   string
	counts  [][2]interface{}
	fail    bool
	queries []url.Values
}

// NewFakeSolr starts a Solr stand-in for collection that facets on field.
func NewFakeSolr(t *testing.T, collection, field string) *FakeSolr {
	t.Helper()
	f := &FakeSolr{field: field}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/" + collection + "/select":
			f.serveSelect(w, r)
		case "/" + collection + "/admin/ping":
			_, _ = io.WriteString(w, `{"status":"OK"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.Server.Close)
	return f
}

// SetCounts replaces the facet counts returned for the next selects. Pairs
// keep their order.
func (f *FakeSolr) SetCounts(pairs ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts = f.counts[:0]
	for i := 0; i+1 < len(pairs); i += 2 {
		f.counts = append(f.counts, [2]interface{}{pairs[i], pairs[i+1]})
	}
}

// Fail makes the next selects answer 500.
func (f *FakeSolr) Fail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

// LastQuery returns the parameters of the latest select, GET or POST, or
// nil.
func (f *FakeSolr) LastQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return nil
	}
	return f.queries[len(f.queries)-1]
}

// Selects counts the select requests served so far.
func (f *FakeSolr) Selects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *FakeSolr) serveSelect(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = r.ParseForm()
	f.queries = append(f.queries, r.Form)
	if f.fail {
		http.Error(w, `{"error":{"msg":"boom"}}`, http.StatusInternalServerError)
		return
	}

	var total int64
	parts := make([]string, 0, 2*len(f.counts))
	for _, c := range f.counts {
		n := toInt64(c[1])
		total += n
		parts = append(parts, fmt.Sprintf("%q", c[0]), fmt.Sprintf("%d", n))
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"responseHeader":{"status":0},"response":{"numFound":%d,"docs":[]},"facet_counts":{"facet_fields":{%q:[%s]}}}`,
		total, f.field, strings.Join(parts, ","))
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	default:
		return 0
	}
}

// TestEnvironment is the shared configuration replicas are started from.
type TestEnvironment struct {
	Ctx    context.Context
	Cfg    *config.Config
	Logger logging.Logger
	Solr   *FakeSolr
	Redis  *miniredis.Miniredis
}

// Replica is one running facetmap instance reachable over HTTP.
type Replica struct {
	Runtime *cli.Runtime
	Server  *httptest.Server
	Client  *client.Client
}

// NewLocalEnvironment wires a Solr stand-in and miniredis so several
// replicas share filters and frames the way a deployment does.
func NewLocalEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	t.Cleanup(cancel)

	solr := NewFakeSolr(t, DefaultSolrCollection, "country")
	solr.SetCounts("US", 6, "FR", 3, "AQ", 0)
	mr := miniredis.RunT(t)

	cfg := baseConfig()
	cfg.Backend.Solr.BaseURL = solr.URL
	cfg.Backend.Solr.Collection = DefaultSolrCollection
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	return &TestEnvironment{Ctx: ctx, Cfg: cfg, Logger: logging.NewNopLogger(), Solr: solr, Redis: mr}
}

// SetupTestEnvironment targets the real services named by the environment.
// Redis is used when EnvRedisAddr is set.
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	SkipIfNoIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	t.Cleanup(cancel)

	cfg := baseConfig()
	cfg.Backend.Solr.BaseURL = envOr(EnvSolrURL, DefaultSolrURL)
	cfg.Backend.Solr.Collection = envOr(EnvSolrCollection, DefaultSolrCollection)
	cfg.Panel.Indices = []string{envOr(EnvIndex, DefaultIndex)}
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = addr
		cfg.Redis.Namespace = NextTestID("it")
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            logging.LevelDebug,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	require.NoError(t, err)
	return &TestEnvironment{Ctx: ctx, Cfg: cfg, Logger: logger}
}

func baseConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Backend.Kind = config.BackendSolr
	cfg.Backend.Timeout = 5 * time.Second
	cfg.Metrics.Namespace = "it"
	cfg.Time.Field = "timestamp_tdt"
	cfg.Time.Window = time.Hour
	cfg.Panel.Field = "country"
	cfg.Panel.Indices = []string{DefaultIndex}
	return cfg
}

// StartReplica builds a runtime from a copy of the environment config,
// serves its router and returns a client pointed at it. mutate may adjust
// the copy first.
func (env *TestEnvironment) StartReplica(t *testing.T, mutate ...func(*config.Config)) *Replica {
	t.Helper()
	cfg := *env.Cfg
	for _, m := range mutate {
		m(&cfg)
	}

	rt, err := cli.NewRuntime(env.Ctx, &cfg, env.Logger)
	require.NoError(t, err)
	srv := httptest.NewServer(rt.Router("integration"))
	c, err := client.NewClient(srv.URL, client.WithRetryWait(time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)

	t.Cleanup(func() {
		srv.Close()
		_ = rt.Close()
	})
	return &Replica{Runtime: rt, Server: srv, Client: c}
}

// WaitFor polls cond until it holds or timeout elapses.
func WaitFor(t *testing.T, description string, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(PollInterval)
	}
	t.Fatalf("timed out after %s waiting for %s", timeout, description)
}

// WaitForCycle waits until the replica has rendered a frame whose cycle id
// differs from prev.
func WaitForCycle(t *testing.T, r *Replica, prev string) *client.Counts {
	t.Helper()
	var got *client.Counts
	WaitFor(t, "a new panel frame", 5*time.Second, func() bool {
		c, err := r.Client.Panel().Counts(context.Background())
		if err != nil || c.Source != "local" || c.CycleID == prev {
			return false
		}
		got = c
		return true
	})
	return got
}

// AssertErrorCode asserts err carries the expected application error code.
func AssertErrorCode(t *testing.T, err error, expected pkgErrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	require.True(t, pkgErrors.IsCode(err, expected), "expected code %s, got %s (%v)", expected, pkgErrors.GetCode(err), err)
}

var testIDSeq struct {
	mu sync.Mutex
	n  int
}

// NextTestID returns a unique identifier with the given prefix.
func NextTestID(prefix string) string {
	testIDSeq.mu.Lock()
	defer testIDSeq.mu.Unlock()
	testIDSeq.n++
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), testIDSeq.n)
}

//Personal.AI order the ending
