package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	BackendSolr       = "solr"
	BackendOpenSearch = "opensearch"
)

const (
	DefaultServerPort      = 8080
	DefaultShutdownTimeout = 15 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultBackendKind    = BackendSolr
	DefaultBackendTimeout = 30 * time.Second
	DefaultSolrBaseURL    = "http://localhost:8983/solr"
	DefaultSolrCollection = "logs"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisNamespace = "default"
	DefaultFrameTTL       = 10 * time.Minute

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "facetmap"

	DefaultMetricsNamespace = "facetmap"
	DefaultMetricsPath      = "/metrics"

	DefaultTimeField  = "@timestamp"
	DefaultTimeWindow = 15 * time.Minute
)

// ApplyDefaults fills every zero-value field in cfg. Explicit values win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Backend.Kind == "" {
		cfg.Backend.Kind = DefaultBackendKind
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = DefaultBackendTimeout
	}
	if cfg.Backend.Solr.BaseURL == "" {
		cfg.Backend.Solr.BaseURL = DefaultSolrBaseURL
	}
	if cfg.Backend.Solr.Collection == "" {
		cfg.Backend.Solr.Collection = DefaultSolrCollection
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.Namespace == "" {
		cfg.Redis.Namespace = DefaultRedisNamespace
	}
	if cfg.Redis.FrameTTL == 0 {
		cfg.Redis.FrameTTL = DefaultFrameTTL
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Time.Field == "" {
		cfg.Time.Field = DefaultTimeField
	}
	if cfg.Time.Window == 0 {
		cfg.Time.Window = DefaultTimeWindow
	}

	cfg.Panel = cfg.Panel.WithDefaults()
}

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Panel.Spyable = true
	cfg.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// registerDefaults teaches viper every scalar key so FACETMAP_* variables
// bind even when the key is absent from the file.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("backend.kind", DefaultBackendKind)
	v.SetDefault("backend.timeout", DefaultBackendTimeout)
	v.SetDefault("backend.solr.base_url", DefaultSolrBaseURL)
	v.SetDefault("backend.solr.collection", DefaultSolrCollection)
	v.SetDefault("backend.solr.username", "")
	v.SetDefault("backend.solr.password", "")
	v.SetDefault("backend.opensearch.addresses", []string{})
	v.SetDefault("backend.opensearch.username", "")
	v.SetDefault("backend.opensearch.password", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.namespace", DefaultRedisNamespace)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{DefaultKafkaBroker})
	v.SetDefault("kafka.group_id", DefaultKafkaGroupID)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.path", DefaultMetricsPath)
	v.SetDefault("time.field", DefaultTimeField)
	v.SetDefault("time.window", DefaultTimeWindow)
	v.SetDefault("panel.field", "")
	v.SetDefault("panel.spyable", true)
	v.SetDefault("panel.map", "world")
	v.SetDefault("panel.size", 100)
}

//Personal.AI order the ending
