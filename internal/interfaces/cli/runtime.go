package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/facetmap/internal/application/interaction"
	"github.com/turtacn/facetmap/internal/application/panel"
	"github.com/turtacn/facetmap/internal/application/query"
	"github.com/turtacn/facetmap/internal/config"
	"github.com/turtacn/facetmap/internal/domain/filter"
	"github.com/turtacn/facetmap/internal/domain/savedquery"
	"github.com/turtacn/facetmap/internal/infrastructure/database/redis"
	"github.com/turtacn/facetmap/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/facetmap/internal/infrastructure/search/opensearch"
	"github.com/turtacn/facetmap/internal/infrastructure/search/solr"
	httpapi "github.com/turtacn/facetmap/internal/interfaces/http"
	"github.com/turtacn/facetmap/internal/interfaces/http/handlers"
	"github.com/turtacn/facetmap/internal/interfaces/http/middleware"
	"github.com/turtacn/facetmap/pkg/errors"
)

// Runtime is the wired object graph shared by serve and the one-shot
// commands.
type Runtime struct {
	Config     *config.Config
	Logger     logging.Logger
	Panel      *panel.Panel
	Controller *interaction.Controller
	Filters    filter.Store
	Queries    savedquery.Store
	Frames     *redis.FrameCache
	Collector  prometheus.MetricsCollector
	Metrics    *prometheus.AppMetrics
	Checkers   []handlers.HealthChecker

	producer *kafka.Producer
	closers  []func() error
}

// NewRuntime builds the executor, stores, panel and interaction controller
// described by cfg. ctx bounds background cycles. Callers must Close the
// returned Runtime.
func NewRuntime(ctx context.Context, cfg *config.Config, logger logging.Logger) (_ *Runtime, err error) {
	rt := &Runtime{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = rt.Close()
		}
	}()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		EnableProcessMetrics: cfg.Metrics.Enabled,
		EnableGoMetrics:      cfg.Metrics.Enabled,
	}, logger)
	if err != nil {
		return nil, err
	}
	rt.Collector = collector
	rt.Metrics = prometheus.NewAppMetrics(collector)

	executor, err := rt.buildExecutor(cfg)
	if err != nil {
		return nil, err
	}

	if err := rt.buildStores(cfg); err != nil {
		return nil, err
	}
	if err := rt.seed(ctx, cfg); err != nil {
		return nil, err
	}

	renderers := panel.MultiRenderer{panel.RendererFunc(func(_ context.Context, f panel.Frame) {
		logger.Debug("frame rendered",
			logging.String("field", f.Field),
			logging.Int("categories", len(f.Counts)),
			logging.Int64("hits", f.Hits))
	})}
	if rt.Frames != nil {
		renderers = append(renderers, rt.Frames)
	}

	rt.Panel, err = panel.New(ctx, cfg.Panel, query.NewComposer(rt.Filters, rt.Queries, logger), executor,
		panel.WithRenderer(renderers),
		panel.WithRecorder(rt.Metrics),
		panel.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	var signaler interaction.RefreshSignaler = rt.Panel
	if cfg.Kafka.Enabled {
		p, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:    cfg.Kafka.Brokers,
			MaxRetries: cfg.Kafka.MaxRetries,
			Security:   kafkaSecurity(cfg.Kafka.Security),
		}, logger)
		if err != nil {
			return nil, err
		}
		rt.producer = p
		rt.closers = append(rt.closers, p.Close)
		signaler = kafka.NewRefreshPublisher(p, cfg.Panel.Field, "filters_changed")
	}
	rt.Controller = interaction.NewController(rt.Filters, signaler, logger)
	return rt, nil
}

func (rt *Runtime) buildExecutor(cfg *config.Config) (panel.Executor, error) {
	switch cfg.Backend.Kind {
	case config.BackendOpenSearch:
		oc := cfg.Backend.OpenSearch
		client, err := opensearch.NewClient(opensearch.ClientConfig{
			Addresses:          oc.Addresses,
			Username:           oc.Username,
			Password:           oc.Password,
			InsecureSkipVerify: oc.InsecureSkipVerify,
			MaxRetries:         oc.MaxRetries,
			RequestTimeout:     cfg.Backend.Timeout,
		}, rt.Logger)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, client.Close)
		rt.Checkers = append(rt.Checkers, handlers.CheckFunc{Component: "opensearch", Fn: client.Ping})
		return opensearch.NewExecutor(client, rt.Logger), nil
	case config.BackendSolr:
		s := cfg.Backend.Solr
		e, err := solr.NewExecutor(solr.Config{
			BaseURL:    s.BaseURL,
			Collection: s.Collection,
			Username:   s.Username,
			Password:   s.Password,
			Timeout:    cfg.Backend.Timeout,
		}, rt.Logger)
		if err != nil {
			return nil, err
		}
		rt.Checkers = append(rt.Checkers, handlers.CheckFunc{Component: "solr", Fn: e.Ping})
		return e, nil
	default:
		return nil, errors.InvalidParam("unsupported backend kind").WithDetail(cfg.Backend.Kind)
	}
}

func (rt *Runtime) buildStores(cfg *config.Config) error {
	if !cfg.Redis.Enabled {
		rt.Filters = filter.NewMemoryStore()
		rt.Queries = savedquery.NewMemoryStore()
		return nil
	}
	client, err := redis.NewClient(&redis.RedisConfig{
		Mode:      cfg.Redis.Mode,
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
	}, rt.Logger)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, client.Close)
	rt.Checkers = append(rt.Checkers, handlers.CheckFunc{Component: "redis", Fn: client.Ping})
	rt.Filters = redis.NewFilterStore(client, cfg.Redis.Namespace, rt.Logger)
	rt.Queries = redis.NewSavedQueryStore(client, cfg.Redis.Namespace)
	rt.Frames = redis.NewFrameCache(client, rt.Logger, redis.WithFrameTTL(cfg.Redis.FrameTTL))
	return nil
}

// seed stores the configured saved queries and, unless a shared store
// already carries one, the initial time range ending now.
func (rt *Runtime) seed(ctx context.Context, cfg *config.Config) error {
	for _, q := range cfg.SavedQueries {
		if err := rt.Queries.Save(ctx, q); err != nil {
			return err
		}
	}
	set, err := rt.Filters.List(ctx)
	if err != nil {
		return err
	}
	if set.HasTimeRange() {
		return nil
	}
	now := time.Now().UTC()
	return rt.Filters.SetTimeRange(ctx, filter.TimeRange{
		Field: cfg.Time.Field,
		From:  now.Add(-cfg.Time.Window),
		To:    now,
	})
}

// Router mounts the REST API over the runtime.
func (rt *Runtime) Router(version string) http.Handler {
	cfg := rt.Config
	panelOpts := []handlers.PanelHandlerOption{handlers.WithInteractionRecorder(rt.Metrics)}
	if rt.Frames != nil {
		panelOpts = append(panelOpts, handlers.WithFrameSource(rt.Frames))
	}

	// filter edits go through the same signaler as clicks so replicas agree
	var signaler handlers.Signaler = rt.Panel
	if rt.producer != nil {
		signaler = kafka.NewRefreshPublisher(rt.producer, cfg.Panel.Field, "filters_edited")
	}

	rc := httpapi.RouterConfig{
		PanelHandler:  handlers.NewPanelHandler(rt.Panel, rt.Controller, rt.Logger, panelOpts...),
		FilterHandler: handlers.NewFilterHandler(rt.Filters, signaler, rt.Logger),
		HealthHandler: handlers.NewHealthHandler(version, rt.Checkers...),
		Logger:        rt.Logger,
		LoggingConfig: middleware.DefaultLoggingConfig(),
		HTTPRecorder:  rt.Metrics,
		InFlight:      rt.Metrics.InFlight(),
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.Server.CORSOrigins
		rc.CORS = &cors
	}
	if cfg.Metrics.Enabled {
		rc.MetricsHandler = rt.Collector.Handler()
		rc.MetricsPath = cfg.Metrics.Path
	}
	return httpapi.NewRouter(rc)
}

func kafkaSecurity(s config.KafkaSecurityConfig) kafka.SecurityConfig {
	return kafka.SecurityConfig{
		SASLEnabled:   s.SASLEnabled,
		SASLMechanism: s.SASLMechanism,
		SASLUsername:  s.SASLUsername,
		SASLPassword:  s.SASLPassword,
		TLSEnabled:    s.TLSEnabled,
		TLSCertPath:   s.TLSCertPath,
	}
}

// Close waits for background cycles and releases connections in reverse
// order of acquisition.
func (rt *Runtime) Close() error {
	if rt.Panel != nil {
		rt.Panel.Wait()
	}
	var first error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	rt.closers = nil
	return first
}

//Personal.AI order the ending
