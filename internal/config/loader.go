package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("%w: %s is not set", ErrConfigurationMissing, envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures. Missing required
// settings make the error wrap ErrConfigurationMissing.
func (c *Config) Validate() error {
	var missing, errs []string

	// Sheets validation
	switch strings.ToLower(c.Sheets.Source) {
	case SourceGoogle:
		if c.Sheets.SpreadsheetID == "" {
			missing = append(missing, "SPREADSHEET_ID is required for SHEETS_SOURCE=google")
		}
		if c.Sheets.CredentialsFile == "" {
			missing = append(missing, "GOOGLE_CREDENTIALS_FILE is required for SHEETS_SOURCE=google")
		}
	case SourceXLSX:
		if c.Sheets.XLSXPath == "" {
			missing = append(missing, "SHEETS_XLSX_PATH is required for SHEETS_SOURCE=xlsx")
		}
	default:
		errs = append(errs, fmt.Sprintf("SHEETS_SOURCE (%q) must be one of: google, xlsx", c.Sheets.Source))
	}
	if c.Sheets.FetchTimeout <= 0 {
		errs = append(errs, "SHEETS_FETCH_TIMEOUT must be positive")
	}

	// Sync validation
	if c.Sync.StatusColumn == "" {
		missing = append(missing, "SYNC_STATUS_COLUMN is required")
	}
	if c.Sync.CreateToken == "" {
		missing = append(missing, "SYNC_CREATE_TOKEN is required")
	}
	if c.Sync.UpdateMode && c.Sync.UpdateToken == "" {
		missing = append(missing, "SYNC_UPDATE_TOKEN is required when SYNC_UPDATE_MODE is true")
	}
	if c.Sync.CreateToken != "" && c.Sync.CreateToken == c.Sync.UpdateToken {
		errs = append(errs, "SYNC_CREATE_TOKEN and SYNC_UPDATE_TOKEN must differ")
	}
	if c.Sync.MaxConcurrentRuns <= 0 {
		errs = append(errs, fmt.Sprintf("SYNC_MAX_CONCURRENT_RUNS (%d) must be positive", c.Sync.MaxConcurrentRuns))
	}
	if c.Sync.RunWait <= 0 {
		errs = append(errs, "SYNC_RUN_WAIT must be positive")
	}
	if c.Sync.Interval < 0 {
		errs = append(errs, "SYNC_INTERVAL must be non-negative")
	}

	// Store validation
	switch strings.ToLower(c.Store.Backend) {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL is required for STORE_BACKEND=postgres")
		}
		if c.Store.MaxConns < c.Store.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Store.MaxConns, c.Store.MinConns))
		}
		if c.Store.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Store.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
	case BackendRedis:
		if c.Store.RedisURL == "" {
			missing = append(missing, "REDIS_URL is required for STORE_BACKEND=redis")
		}
	case BackendYAML:
		if c.Store.ConfigDir == "" {
			missing = append(missing, "STORE_CONFIG_DIR is required for STORE_BACKEND=yaml")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND (%q) must be one of: memory, postgres, redis, yaml", c.Store.Backend))
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		missing = append(missing, "API_KEYS is required when REQUIRE_API_KEY is true")
	}
	if c.Security.RateLimit <= 0 {
		errs = append(errs, "RATE_LIMIT_PER_MINUTE must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	all := append(missing, errs...)
	if len(missing) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrConfigurationMissing, strings.Join(all, "\n  - "))
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(all, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Connection URLs and credential paths are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Sheets: {Source: %q, SpreadsheetID: %q, Credentials: %s}, ",
		c.Sheets.Source, c.Sheets.SpreadsheetID, mask(c.Sheets.CredentialsFile)))
	b.WriteString(fmt.Sprintf("Sync: {StatusColumn: %q, UpdateMode: %v, WorkflowType: %q}, ",
		c.Sync.StatusColumn, c.Sync.UpdateMode, c.Sync.WorkflowType))
	b.WriteString(fmt.Sprintf("Store: {Backend: %q, DatabaseURL: %s, RedisURL: %s, ConfigDir: %q}, ",
		c.Store.Backend, mask(c.Store.DatabaseURL), mask(c.Store.RedisURL), c.Store.ConfigDir))
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: %d, TrustedProxies: %d}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys), len(c.Security.TrustedProxies)))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return `""`
	}
	return "[MASKED]"
}
