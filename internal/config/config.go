// Package config defines the service configuration. No I/O lives here, only
// plain data types and validation.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/turtacn/facetmap/internal/domain/panel"
	"github.com/turtacn/facetmap/internal/domain/savedquery"
)

// Version is stamped at build time.
var Version = "dev"

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// SolrConfig points at a Solr core or collection.
type SolrConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Collection string `mapstructure:"collection"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
}

// OpenSearchConfig holds OpenSearch cluster connection parameters.
type OpenSearchConfig struct {
	Addresses          []string `mapstructure:"addresses"`
	Username           string   `mapstructure:"username"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	MaxRetries         int      `mapstructure:"max_retries"`
}

// BackendConfig selects the search engine that executes composed queries.
type BackendConfig struct {
	Kind       string           `mapstructure:"kind"` // "solr" | "opensearch"
	Timeout    time.Duration    `mapstructure:"timeout"`
	Solr       SolrConfig       `mapstructure:"solr"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
}

// RedisConfig enables the shared filter store and frame cache.
type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Mode      string        `mapstructure:"mode"`
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Namespace string        `mapstructure:"namespace"`
	FrameTTL  time.Duration `mapstructure:"frame_ttl"`
}

// KafkaConfig enables the cross-replica refresh bus.
type KafkaConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	Brokers          []string `mapstructure:"brokers"`
	GroupID          string   `mapstructure:"group_id"`
	AutoCreateTopics bool     `mapstructure:"auto_create_topics"`
	DeadLetter       bool     `mapstructure:"dead_letter"`
	MaxRetries       int      `mapstructure:"max_retries"`

	Security KafkaSecurityConfig `mapstructure:"security"`
}

// KafkaSecurityConfig holds SASL and TLS settings for the refresh bus.
type KafkaSecurityConfig struct {
	SASLEnabled   bool   `mapstructure:"sasl_enabled"`
	SASLMechanism string `mapstructure:"sasl_mechanism"` // PLAIN | SCRAM-SHA-256 | SCRAM-SHA-512
	SASLUsername  string `mapstructure:"sasl_username"`
	SASLPassword  string `mapstructure:"sasl_password"`
	TLSEnabled    bool   `mapstructure:"tls_enabled"`
	TLSCertPath   string `mapstructure:"tls_cert_path"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// TimeConfig seeds the mandatory time range at startup: the last Window of
// data on Field.
type TimeConfig struct {
	Field  string        `mapstructure:"field"`
	Window time.Duration `mapstructure:"window"`
}

// Config is the root configuration structure.
type Config struct {
	Server       ServerConfig          `mapstructure:"server"`
	Log          LogConfig             `mapstructure:"log"`
	Backend      BackendConfig         `mapstructure:"backend"`
	Redis        RedisConfig           `mapstructure:"redis"`
	Kafka        KafkaConfig           `mapstructure:"kafka"`
	Metrics      MetricsConfig         `mapstructure:"metrics"`
	Time         TimeConfig            `mapstructure:"time"`
	Panel        panel.Config          `mapstructure:"panel"`
	SavedQueries []savedquery.SubQuery `mapstructure:"saved_queries"`
}

// Validate returns the first semantic error in c. Callers should refuse to
// start on any error.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	switch c.Backend.Kind {
	case BackendSolr:
		if _, err := url.ParseRequestURI(c.Backend.Solr.BaseURL); err != nil {
			return fmt.Errorf("config: backend.solr.base_url %q is invalid: %w", c.Backend.Solr.BaseURL, err)
		}
	case BackendOpenSearch:
		if len(c.Backend.OpenSearch.Addresses) == 0 {
			return fmt.Errorf("config: backend.opensearch.addresses must contain at least one address")
		}
	default:
		return fmt.Errorf("config: backend.kind %q is invalid; expected solr|opensearch", c.Backend.Kind)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("config: backend.timeout must be > 0")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required")
		}
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required")
	}

	if c.Time.Field == "" {
		return fmt.Errorf("config: time.field is required")
	}
	if c.Time.Window <= 0 {
		return fmt.Errorf("config: time.window must be > 0")
	}

	if err := c.Panel.Validate(); err != nil {
		return fmt.Errorf("config: panel: %w", err)
	}
	for i, q := range c.SavedQueries {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("config: saved_queries[%d]: %w", i, err)
		}
	}
	return nil
}

//Personal.AI order the ending
