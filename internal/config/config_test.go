package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/internal/config"
	"github.com/turtacn/facetmap/internal/domain/savedquery"
)

func validConfig() *config.Config {
	return config.NewDefaultConfig()
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   string
	}{
		{"port", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"log level", func(c *config.Config) { c.Log.Level = "verbose" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"backend kind", func(c *config.Config) { c.Backend.Kind = "elastic" }, "backend.kind"},
		{"solr url", func(c *config.Config) { c.Backend.Solr.BaseURL = "not a url" }, "backend.solr.base_url"},
		{"opensearch addresses", func(c *config.Config) { c.Backend.Kind = config.BackendOpenSearch }, "backend.opensearch.addresses"},
		{"backend timeout", func(c *config.Config) { c.Backend.Timeout = -time.Second }, "backend.timeout"},
		{"redis addr", func(c *config.Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "redis.addr"},
		{"kafka brokers", func(c *config.Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"kafka group", func(c *config.Config) { c.Kafka.Enabled = true; c.Kafka.GroupID = "" }, "kafka.group_id"},
		{"time field", func(c *config.Config) { c.Time.Field = "" }, "time.field"},
		{"time window", func(c *config.Config) { c.Time.Window = 0 }, "time.window"},
		{"panel colors", func(c *config.Config) { c.Panel.Colors = []string{"#fff"} }, "panel"},
		{"panel map", func(c *config.Config) { c.Panel.Map = "mars" }, "panel"},
		{"saved query id", func(c *config.Config) { c.SavedQueries = []savedquery.SubQuery{{Query: "a:b"}} }, "saved_queries[0]"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_Validate_DisabledSectionsAreNotChecked(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Kafka.Brokers = nil
	cfg.Redis.Addr = ""
	assert.NoError(t, cfg.Validate())
}

//Personal.AI order the ending
