package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the energy sync service.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	API       APIConfig       `yaml:"api"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Journal   JournalConfig   `yaml:"journal"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig contains metering API connection settings.
type APIConfig struct {
	// URL is the consumption endpoint of the metering API.
	URL string `yaml:"url"`

	// UsagePointID identifies the metering point whose readings are synced.
	UsagePointID string `yaml:"usage_point_id"`

	// BearerToken authenticates requests to the metering API.
	BearerToken string `yaml:"bearer_token"`

	// Timeout is the request timeout in seconds.
	Timeout int `yaml:"timeout"`

	// RateLimitDelay is the pause before each API request, in seconds.
	// The upstream API enforces per-token rate limits; a short pause
	// keeps the daily request clear of them.
	RateLimitDelay float64 `yaml:"rate_limit_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// JournalConfig contains run journal settings.
type JournalConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the filesystem path to the SQLite journal file.
	Path string `yaml:"path"`

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int `yaml:"busy_timeout"`
}

// MQTTConfig contains settings for the optional run status notifier.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`

	// StatusTopic is where each run summary is published (retained).
	StatusTopic string `yaml:"status_topic"`
}

// SchedulerConfig contains the daily trigger settings.
type SchedulerConfig struct {
	// DailyAt is the fixed wall-clock trigger time in "HH:MM" (UTC).
	DailyAt string `yaml:"daily_at"`

	// PollInterval is how often the loop checks for a due trigger (seconds).
	PollInterval int `yaml:"poll_interval"`

	// RunOnStartup triggers one immediate run when the loop starts.
	RunOnStartup bool `yaml:"run_on_startup"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MACONSO_SECTION_KEY
// For example: MACONSO_USAGE_POINT_ID, MACONSO_INFLUXDB_TOKEN
//
// A missing config file is not an error: deployments that configure the
// service entirely through the environment run without one. Any other read
// or parse failure is fatal.
//
// Parameters:
//   - path: Path to the YAML configuration file (may not exist)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be parsed or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parsing config file: %w", unmarshalErr)
		}
	case os.IsNotExist(err):
		// Environment-only deployment.
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:            "https://conso.boris.sh/api/daily_consumption",
			Timeout:        30,
			RateLimitDelay: 1.0,
		},
		InfluxDB: InfluxDBConfig{
			URL:    "http://localhost:8086",
			Bucket: "energy_data",
		},
		Journal: JournalConfig{
			Enabled:     true,
			Path:        "./data/energy-sync.db",
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Port:        1883,
			ClientID:    "energy-sync",
			QoS:         1,
			StatusTopic: "energy-sync/status",
		},
		Scheduler: SchedulerConfig{
			DailyAt:      "10:30",
			PollInterval: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: MACONSO_SECTION_KEY
//
// A malformed numeric value is fatal: silently keeping the default would
// mask a typo in the deployment environment.
func applyEnvOverrides(cfg *Config) error {
	// API
	if v := os.Getenv("MACONSO_API_URL"); v != "" {
		cfg.API.URL = v
	}
	if v := os.Getenv("MACONSO_USAGE_POINT_ID"); v != "" {
		cfg.API.UsagePointID = v
	}
	if v := os.Getenv("MACONSO_BEARER_TOKEN"); v != "" {
		cfg.API.BearerToken = v
	}
	if v := os.Getenv("MACONSO_RATE_LIMIT_DELAY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MACONSO_RATE_LIMIT_DELAY: invalid value %q: %w", v, err)
		}
		cfg.API.RateLimitDelay = f
	}

	// InfluxDB
	if v := os.Getenv("MACONSO_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("MACONSO_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("MACONSO_INFLUXDB_ORG"); v != "" {
		cfg.InfluxDB.Org = v
	}
	if v := os.Getenv("MACONSO_INFLUXDB_BUCKET"); v != "" {
		cfg.InfluxDB.Bucket = v
	}

	// Journal
	if v := os.Getenv("MACONSO_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// MQTT - setting a host via the environment implies the notifier is wanted
	if v := os.Getenv("MACONSO_MQTT_HOST"); v != "" {
		cfg.MQTT.Host = v
		cfg.MQTT.Enabled = true
	}
	if v := os.Getenv("MACONSO_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("MACONSO_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}

	// Scheduler
	if v := os.Getenv("MACONSO_RUN_ON_STARTUP"); v != "" {
		cfg.Scheduler.RunOnStartup = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("MACONSO_DAILY_AT"); v != "" {
		cfg.Scheduler.DailyAt = v
	}

	// Logging
	if v := os.Getenv("MACONSO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// API validation
	if c.API.URL == "" {
		errs = append(errs, "api.url is required")
	}
	if c.API.UsagePointID == "" {
		errs = append(errs, "api.usage_point_id is required (set MACONSO_USAGE_POINT_ID environment variable)")
	}
	if c.API.BearerToken == "" {
		errs = append(errs, "api.bearer_token is required (set MACONSO_BEARER_TOKEN environment variable)")
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, "api.timeout must be positive")
	}
	if c.API.RateLimitDelay < 0 {
		errs = append(errs, "api.rate_limit_delay must not be negative")
	}

	// InfluxDB validation
	if c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required")
	}
	if c.InfluxDB.Token == "" {
		errs = append(errs, "influxdb.token is required (set MACONSO_INFLUXDB_TOKEN environment variable)")
	}
	if c.InfluxDB.Org == "" {
		errs = append(errs, "influxdb.org is required (set MACONSO_INFLUXDB_ORG environment variable)")
	}
	if c.InfluxDB.Bucket == "" {
		errs = append(errs, "influxdb.bucket is required")
	}

	// Journal validation
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when journal is enabled")
	}

	// MQTT validation
	if c.MQTT.Enabled {
		if c.MQTT.Host == "" {
			errs = append(errs, "mqtt.host is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.StatusTopic == "" {
			errs = append(errs, "mqtt.status_topic is required when mqtt is enabled")
		}
	}

	// Scheduler validation
	if _, err := time.Parse("15:04", c.Scheduler.DailyAt); err != nil {
		errs = append(errs, fmt.Sprintf("scheduler.daily_at must be HH:MM, got %q", c.Scheduler.DailyAt))
	}
	if c.Scheduler.PollInterval <= 0 {
		errs = append(errs, "scheduler.poll_interval must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetAPITimeout returns the metering API request timeout as a Duration.
func (c *Config) GetAPITimeout() time.Duration {
	return time.Duration(c.API.Timeout) * time.Second
}

// GetRateLimitDelay returns the pre-request pause as a Duration.
func (c *Config) GetRateLimitDelay() time.Duration {
	return time.Duration(c.API.RateLimitDelay * float64(time.Second))
}

// GetPollInterval returns the scheduler poll interval as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Scheduler.PollInterval) * time.Second
}
