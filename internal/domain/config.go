package domain

import (
	"time"
)

// Report offer policies
const (
	// OfferNegativeOnly offers a document only when the prediction is negative
	OfferNegativeOnly = "negative_only"
	// OfferAlways offers a document for every documented prediction
	OfferAlways = "always"
)

// Audit store drivers
const (
	AuditDriverSQLite   = "sqlite"
	AuditDriverPostgres = "postgres"
)

// Config represents the main application configuration
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Models      ModelsConfig   `mapstructure:"models"`
	Report      ReportConfig   `mapstructure:"report"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Audit       AuditConfig    `mapstructure:"audit"`
	Database    DatabaseConfig `mapstructure:"database"`
	Logging     LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// ModelsConfig holds one model source per domain
type ModelsConfig struct {
	Diabetes   ModelSource `mapstructure:"diabetes"`
	Heart      ModelSource `mapstructure:"heart"`
	Parkinsons ModelSource `mapstructure:"parkinsons"`
}

// Source returns the configured model source of a domain
func (m ModelsConfig) Source(d Domain) ModelSource {
	switch d {
	case DomainDiabetes:
		return m.Diabetes
	case DomainHeart:
		return m.Heart
	case DomainParkinsons:
		return m.Parkinsons
	default:
		return ModelSource{}
	}
}

// ModelSource points at a local artifact or a remote inference endpoint.
// Endpoint wins when both are set.
type ModelSource struct {
	Path      string        `mapstructure:"path"`
	Endpoint  string        `mapstructure:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"`
}

// ReportConfig controls document generation
type ReportConfig struct {
	OfferPolicy string        `mapstructure:"offer_policy"`
	TTL         time.Duration `mapstructure:"ttl"`
}

// CacheConfig represents the rendered document cache configuration
type CacheConfig struct {
	RedisURL    string        `mapstructure:"redis_url"`
	MaxItems    int           `mapstructure:"max_items"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// AuditConfig represents the prediction audit trail configuration
type AuditConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Driver         string `mapstructure:"driver"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// DatabaseConfig represents Postgres connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
