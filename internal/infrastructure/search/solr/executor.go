// Package solr executes the flat form of a panel query against a Solr
// select handler.
package solr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/facetmap/internal/application/aggregate"
	"github.com/turtacn/facetmap/internal/application/query"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/pkg/errors"
)

const userAgent = "facetmap/solr"

// maxGETLength is the encoded query length above which the request is sent
// as a form POST instead.
const maxGETLength = 4096

// Config holds the Solr endpoint settings.
type Config struct {
	BaseURL    string
	Collection string
	Username   string
	Password   string
	Timeout    time.Duration
}

// Executor runs flat-dialect queries. It never retries.
type Executor struct {
	baseURL    string
	collection string
	username   string
	password   string
	httpClient *http.Client
	logger     logging.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) {
		if c != nil {
			e.httpClient = c
		}
	}
}

// NewExecutor validates cfg and returns an Executor.
func NewExecutor(cfg Config, logger logging.Logger, opts ...Option) (*Executor, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "solr base_url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errors.New(errors.ErrCodeValidation, "solr base_url must be an http or https URL").WithDetail(cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	e := &Executor{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		collection: cfg.Collection,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("solr"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute sends the query to <base>/<collection>/select and decodes the facet
// payload. The panel's indices name the collections; when there is more than
// one, the first hosts the request and the rest are listed in "collection".
func (e *Executor) Execute(ctx context.Context, q *query.Query) (*aggregate.FacetResponse, error) {
	collection, extra := e.route(q.Indices)
	if collection == "" {
		return nil, errors.ErrNoIndices
	}
	endpoint := e.baseURL + "/" + url.PathEscape(collection) + "/select"

	encoded := q.Encode()
	if extra != "" {
		encoded += "&collection=" + url.QueryEscape(extra)
	}

	req, err := e.newRequest(ctx, endpoint, encoded)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "build solr request")
	}

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, errors.Transport(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Transport(fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body)), endpoint)
	}

	out, err := aggregate.DecodeSolr(resp.Body)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("solr select executed",
		logging.String("collection", collection),
		logging.Int("status", resp.StatusCode),
		logging.Int64("hits", out.NumFound),
		logging.Duration("took", time.Since(start)))
	return out, nil
}

// Ping calls the admin ping handler of the default collection.
func (e *Executor) Ping(ctx context.Context) error {
	endpoint := e.baseURL + "/" + url.PathEscape(e.collection) + "/admin/ping"
	req, err := e.newRequest(ctx, endpoint, "wt=json")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "build solr ping request")
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return errors.Transport(err, endpoint)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return errors.Transport(fmt.Errorf("status %d", resp.StatusCode), endpoint)
	}
	return nil
}

func (e *Executor) route(indices []string) (string, string) {
	if len(indices) == 0 {
		return e.collection, ""
	}
	if len(indices) == 1 {
		return indices[0], ""
	}
	return indices[0], strings.Join(indices, ",")
}

func (e *Executor) newRequest(ctx context.Context, endpoint, encoded string) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	if len(encoded) > maxGETLength {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+encoded, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if e.username != "" {
		req.SetBasicAuth(e.username, e.password)
	}
	return req, nil
}

//Personal.AI order the ending
