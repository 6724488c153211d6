package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/disease-predictor/internal/domain"
)

// EnvPrefix is prepended to every environment override, e.g.
// DISEASE_PREDICTOR_SERVER_PORT.
const EnvPrefix = "DISEASE_PREDICTOR"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

// NewManager creates a new configuration manager. An empty configFile
// searches the default locations; a missing file is not an error.
func NewManager(configFile string) (*Manager, error) {
	m := &Manager{configFile: configFile}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from .env, the config file and the environment
func (m *Manager) loadConfig() error {
	// A .env file is optional
	_ = godotenv.Load()

	v := viper.New()
	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/disease-predictor/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Model defaults
	for _, d := range domain.AllDomains {
		prefix := "models." + string(d)
		v.SetDefault(prefix+".path", fmt.Sprintf("models/%s.json", d))
		v.SetDefault(prefix+".endpoint", "")
		v.SetDefault(prefix+".timeout", "30s")
		v.SetDefault(prefix+".rate_limit", 0)
	}

	// Report defaults
	v.SetDefault("report.offer_policy", domain.OfferNegativeOnly)
	v.SetDefault("report.ttl", "15m")

	// Cache defaults
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.max_items", 256)
	v.SetDefault("cache.max_retries", 3)
	v.SetDefault("cache.pool_size", 10)
	v.SetDefault("cache.pool_timeout", "4s")

	// Audit defaults
	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.driver", domain.AuditDriverSQLite)
	v.SetDefault("audit.sqlite_path", "data/audit.db")
	v.SetDefault("audit.migrations_path", "")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "disease_predictor")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "30m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// ConfigFileUsed returns the path of the loaded config file, if any
func (m *Manager) ConfigFileUsed() string {
	return m.v.ConfigFileUsed()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	for _, d := range domain.AllDomains {
		source := config.Models.Source(d)
		if source.Endpoint == "" {
			continue
		}
		u, err := url.Parse(source.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid inference endpoint for %s: %q", d, source.Endpoint)
		}
		if source.RateLimit < 0 {
			return fmt.Errorf("invalid rate limit for %s: %d", d, source.RateLimit)
		}
	}

	switch config.Report.OfferPolicy {
	case domain.OfferNegativeOnly, domain.OfferAlways:
	default:
		return fmt.Errorf("invalid report offer policy: %q", config.Report.OfferPolicy)
	}
	if config.Report.TTL <= 0 {
		return fmt.Errorf("report ttl must be positive")
	}

	if config.Audit.Enabled {
		switch config.Audit.Driver {
		case domain.AuditDriverSQLite:
			if config.Audit.SQLitePath == "" {
				return fmt.Errorf("audit sqlite_path is required")
			}
		case domain.AuditDriverPostgres:
			if config.Database.Host == "" {
				return fmt.Errorf("database host is required")
			}
			if config.Database.Database == "" {
				return fmt.Errorf("database name is required")
			}
			if config.Database.Username == "" {
				return fmt.Errorf("database username is required")
			}
		default:
			return fmt.Errorf("invalid audit driver: %q", config.Audit.Driver)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	switch strings.ToLower(config.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	return nil
}

// IsProduction reports whether the server runs in production, which enables
// gin release mode and HSTS.
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}
