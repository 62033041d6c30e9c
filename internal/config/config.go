// Package config provides centralized configuration management for specsync.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"errors"
	"strconv"
	"time"

	"github.com/JonMunkholm/specsync/internal/core"
	"github.com/JonMunkholm/specsync/internal/sheet"
)

// ErrConfigurationMissing is returned when a required setting is not set.
// It is fatal: nothing is fetched or written.
var ErrConfigurationMissing = errors.New("configuration missing")

// Sheet sources.
const (
	SourceGoogle = "google"
	SourceXLSX   = "xlsx"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendYAML     = "yaml"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Sheets   SheetsConfig
	Sync     SyncSettings
	Store    StoreConfig
	Server   ServerConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// SheetsConfig selects and configures the spreadsheet source.
type SheetsConfig struct {
	// Source is google or xlsx (default: google)
	Source string `env:"SHEETS_SOURCE" default:"google"`

	// SpreadsheetID is the Google spreadsheet id (required for google)
	SpreadsheetID string `env:"SPREADSHEET_ID" envAlt:"GOOGLE_SHEET_ID"`

	// CredentialsFile is a service-account JSON file (required for google)
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE" envAlt:"GOOGLE_APPLICATION_CREDENTIALS"`

	// XLSXPath is an exported workbook (required for xlsx)
	XLSXPath string `env:"SHEETS_XLSX_PATH"`

	// FetchTimeout bounds a single tab fetch (default: 30s)
	FetchTimeout time.Duration `env:"SHEETS_FETCH_TIMEOUT" default:"30s"`
}

// SyncSettings holds the status column conventions and workflow options.
type SyncSettings struct {
	// StatusColumn is the header of the flag column (default: x)
	StatusColumn string `env:"SYNC_STATUS_COLUMN" default:"x"`

	// CreateToken marks a row ready to create (default: w)
	CreateToken string `env:"SYNC_CREATE_TOKEN" default:"w"`

	// UpdateToken marks a row ready to re-sync (default: u)
	UpdateToken string `env:"SYNC_UPDATE_TOKEN" default:"u"`

	// UpdateMode honours UpdateToken rows (default: false)
	UpdateMode bool `env:"SYNC_UPDATE_MODE" default:"false"`

	// WorkflowType is assigned to new workflows (default: content_moderation)
	WorkflowType string `env:"SYNC_WORKFLOW_TYPE" default:"content_moderation"`

	// WorkflowsFlaggedOnly limits workflow rows to flagged ones (default: true)
	WorkflowsFlaggedOnly bool `env:"SYNC_WORKFLOWS_FLAGGED_ONLY" default:"true"`

	// MaxConcurrentRuns bounds parallel sync runs against the store (default: 1)
	MaxConcurrentRuns int `env:"SYNC_MAX_CONCURRENT_RUNS" default:"1"`

	// RunWait is how long a run waits for a free slot (default: 30s)
	RunWait time.Duration `env:"SYNC_RUN_WAIT" default:"30s"`

	// Interval re-runs a full sync while serving; 0 disables (default: 0s)
	Interval time.Duration `env:"SYNC_INTERVAL" default:"0s"`
}

// StoreConfig selects and configures the entity store.
type StoreConfig struct {
	// Backend is memory, postgres, redis or yaml (default: memory)
	Backend string `env:"STORE_BACKEND" default:"memory"`

	// DatabaseURL is the PostgreSQL connection string (required for postgres)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// RedisURL is the Redis connection URL (required for redis)
	RedisURL string `env:"REDIS_URL"`

	// ConfigDir receives <kind>.<id>.yml files (default: config/sync)
	ConfigDir string `env:"STORE_CONFIG_DIR" default:"config/sync"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 5m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a sync request, all kinds included (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// SecurityConfig holds settings for the HTTP sync API.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey rejects sync requests without a valid X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`

	// RateLimit is the number of requests per minute per client (default: 60)
	RateLimit int `env:"RATE_LIMIT_PER_MINUTE" default:"60"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// SyncConfig returns the explicit sync configuration passed to the engine.
// The status column goes through the same normalization as sheet headers.
func (c *Config) SyncConfig() core.SyncConfig {
	return core.SyncConfig{
		Filter: core.FilterConfig{
			StatusColumn: sheet.NormalizeHeader(c.Sync.StatusColumn),
			CreateToken:  c.Sync.CreateToken,
			UpdateToken:  c.Sync.UpdateToken,
			UpdateMode:   c.Sync.UpdateMode,
		},
		WorkflowType:         c.Sync.WorkflowType,
		WorkflowsFlaggedOnly: c.Sync.WorkflowsFlaggedOnly,
		MaxConcurrentRuns:    c.Sync.MaxConcurrentRuns,
		RunWait:              c.Sync.RunWait,
	}
}
