// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// Reporting timezone for ingestion timestamps and window anchoring.
	Timezone string `mapstructure:"timezone"`

	// File paths
	DatabasePath string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings
	GeoDBPath    string `mapstructure:"geodbpath"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseMaxOpenConns int `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int `mapstructure:"dbmaxidleconns"`

	// Active-user rolling window spans in days (the daily window is fixed
	// at the current day). Two historical revisions disagreed by one day,
	// so these are explicit knobs rather than literals in the calculator.
	WAUWindowDays int `mapstructure:"wauwindowdays"`
	MAUWindowDays int `mapstructure:"mauwindowdays"`

	// Ranking settings
	TrackedServices       []string `mapstructure:"trackedservices"`
	RankingTimeoutSeconds int      `mapstructure:"rankingtimeoutseconds"`
}

// Load reads configuration from the environment, applying defaults and
// validating the result. It is called once at process start; the returned
// Config is passed explicitly to the components that need it.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("appname", "weblytics")
	v.SetDefault("appport", "8000")
	v.SetDefault("environment", Development)
	v.SetDefault("loglevel", string(LogLevelDebug))
	v.SetDefault("timezone", "Asia/Seoul")
	v.SetDefault("storagepath", "storage")
	v.SetDefault("geodbpath", "storage/GeoLite2-City.mmdb")
	v.SetDefault("logsdir", "logs")
	v.SetDefault("logsmaxsizeinmb", 20)
	v.SetDefault("logsmaxbackups", 10)
	v.SetDefault("logsmaxageindays", 30)
	v.SetDefault("dbmaxopenconns", 0)
	v.SetDefault("dbmaxidleconns", 0)
	v.SetDefault("wauwindowdays", 6)
	v.SetDefault("mauwindowdays", 30)
	v.SetDefault("trackedservices", "")
	v.SetDefault("rankingtimeoutseconds", 5)

	// Bind environment variables
	v.BindEnv("appname", "WEBLYTICS_APP_NAME")
	v.BindEnv("appport", "WEBLYTICS_APP_PORT")
	v.BindEnv("environment", "WEBLYTICS_ENV")
	v.BindEnv("loglevel", "WEBLYTICS_LOG_LEVEL")
	v.BindEnv("timezone", "WEBLYTICS_TIMEZONE")
	v.BindEnv("storagepath", "WEBLYTICS_STORAGE_PATH")
	v.BindEnv("geodbpath", "WEBLYTICS_GEO_DB_PATH")
	v.BindEnv("logsdir", "WEBLYTICS_LOGS_DIR")
	v.BindEnv("logsmaxsizeinmb", "WEBLYTICS_LOGS_MAX_SIZE_IN_MB")
	v.BindEnv("logsmaxbackups", "WEBLYTICS_LOGS_MAX_BACKUPS")
	v.BindEnv("logsmaxageindays", "WEBLYTICS_LOGS_MAX_AGE_IN_DAYS")
	v.BindEnv("dbmaxopenconns", "WEBLYTICS_DB_MAX_OPEN_CONNS")
	v.BindEnv("dbmaxidleconns", "WEBLYTICS_DB_MAX_IDLE_CONNS")
	v.BindEnv("wauwindowdays", "WEBLYTICS_WAU_WINDOW_DAYS")
	v.BindEnv("mauwindowdays", "WEBLYTICS_MAU_WINDOW_DAYS")
	v.BindEnv("trackedservices", "WEBLYTICS_TRACKED_SERVICES")
	v.BindEnv("rankingtimeoutseconds", "WEBLYTICS_RANKING_TIMEOUT_SECONDS")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	// Tracked services arrive as a comma-separated env value.
	if raw := v.GetString("trackedservices"); raw != "" {
		cfg.TrackedServices = splitAndTrim(raw)
	} else {
		cfg.TrackedServices = nil
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	cfg.DatabaseName = cfg.GetDatabasePath()
	return cfg, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	services := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			services = append(services, trimmed)
		}
	}
	return services
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	if c.WAUWindowDays <= 0 || c.MAUWindowDays <= 0 {
		return fmt.Errorf("window spans must be positive (wau=%d, mau=%d)", c.WAUWindowDays, c.MAUWindowDays)
	}
	if c.WAUWindowDays > c.MAUWindowDays {
		return fmt.Errorf("wau window (%d days) cannot exceed mau window (%d days)", c.WAUWindowDays, c.MAUWindowDays)
	}

	return nil
}

// Location returns the reporting timezone. Validation at load time
// guarantees the name resolves.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment.
// Tests run with a single connection for stability; otherwise allow
// concurrent readers for parallel stats queries.
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}
	if c.Environment == Test {
		return 1
	}
	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment.
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}
	if c.Environment == Test {
		return 1
	}
	return 5
}

// RankingTimeout returns the bound on a single top-services fan-out.
func (c *Config) RankingTimeout() time.Duration {
	return time.Duration(c.RankingTimeoutSeconds) * time.Second
}
