package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	// Database connection string (DSN). Postgres URLs and SQLite paths
	// are both accepted.
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Deployment environment: "development" or "production". Production
	// turns on the Secure cookie attribute.
	Environment string

	// Enable debug logging
	Debug bool

	// Maximum database connection pool size
	MaxDBConnections int

	// Origins allowed to call the API with credentials
	CORSAllowedOrigins []string

	// Session token configuration
	Session SessionConfig

	// Gateway behavior configuration
	Gateway GatewayConfig

	// Telemetry configuration
	Observability ObservabilityConfig
}

// SessionConfig holds the session token settings.
type SessionConfig struct {
	// Secret is the shared HS256 signing secret. Required: an empty
	// secret is a configuration error, not a per-request condition.
	Secret string
}

// GatewayConfig holds access-gateway settings.
type GatewayConfig struct {
	// UnauthorizedPath is where authenticated but under-privileged users
	// are redirected.
	UnauthorizedPath string
}

// ObservabilityConfig holds OpenTelemetry settings.
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// OTLPEndpoint is the OTLP/HTTP collector address (host:port). Empty
	// disables trace export.
	OTLPEndpoint string
	// OTLPInsecure disables TLS towards the collector (local development)
	OTLPInsecure bool
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration through Viper: POSAPI_-prefixed environment
// variables take precedence over an optional config file. Callers that
// want file support set viper.SetConfigFile and ReadInConfig before
// calling Load.
func Load() (*Config, error) {
	v := viper.GetViper()
	v.SetEnvPrefix("POSAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_addr", "localhost:8080")
	v.SetDefault("environment", "development")
	v.SetDefault("debug", false)
	v.SetDefault("max_db_connections", 25)
	v.SetDefault("cors_allowed_origins", "http://localhost:3000")
	v.SetDefault("gateway.unauthorized_path", "/dashboard")
	v.SetDefault("observability.service_name", "posapi")
	v.SetDefault("observability.service_version", "dev")
	v.SetDefault("observability.environment", "development")

	cfg := &Config{
		DatabaseURL:        v.GetString("database_url"),
		ServerAddr:         v.GetString("server_addr"),
		Environment:        v.GetString("environment"),
		Debug:              v.GetBool("debug"),
		MaxDBConnections:   v.GetInt("max_db_connections"),
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		Session: SessionConfig{
			Secret: v.GetString("session.secret"),
		},
		Gateway: GatewayConfig{
			UnauthorizedPath: v.GetString("gateway.unauthorized_path"),
		},
		Observability: ObservabilityConfig{
			ServiceName:    v.GetString("observability.service_name"),
			ServiceVersion: v.GetString("observability.service_version"),
			Environment:    v.GetString("observability.environment"),
			OTLPEndpoint:   v.GetString("observability.otlp_endpoint"),
			OTLPInsecure:   v.GetBool("observability.otlp_insecure"),
		},
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required")
	}
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("session.secret is required")
	}
	if !strings.HasPrefix(cfg.Gateway.UnauthorizedPath, "/") {
		return nil, fmt.Errorf("gateway.unauthorized_path must be an absolute path")
	}

	return cfg, nil
}

// splitList parses a comma-separated value into trimmed entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
