package middleware

import (
	"net/http"

	chicors "github.com/go-chi/cors"
)

// CORSConfig is a narrow surface over go-chi/cors.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig allows the dashboard's verbs and no origins.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}
}

// CORS builds the middleware. Wildcard origins are never combined with
// credentials.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowCreds := cfg.AllowCredentials
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowCreds = false
			break
		}
	}
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: allowCreds,
		MaxAge:           cfg.MaxAge,
	})
}

//Personal.AI order the ending
