package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	Admin         AdminConfig         `yaml:"admin"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process event bus.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
}

// ScoringConfig controls leaderboard computation.
type ScoringConfig struct {
	// PointsBase is "finishers" (leaderboard size) or "users" (registered users).
	PointsBase       string        `yaml:"points_base"`
	CacheEnabled     bool          `yaml:"cache_enabled"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
	SnapshotYears    []int         `yaml:"snapshot_years"`
}

// AdminConfig holds settings for the operator CLI.
type AdminConfig struct {
	Timezone string `yaml:"timezone"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

const (
	defaultHTTPAddr         = ":8080"
	defaultRateLimit        = 10
	defaultRateBurst        = 20
	defaultPointsBase       = "finishers"
	defaultSnapshotInterval = 15 * time.Minute
	defaultTimezone         = "America/New_York"
)

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_LIMIT value: %w", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("HTTP_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_BURST value: %w", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("SCORING_POINTS_BASE"); v != "" {
		cfg.Scoring.PointsBase = v
	}
	if v := os.Getenv("SCORING_CACHE_ENABLED"); v != "" {
		cfg.Scoring.CacheEnabled = v == "true"
	}
	if v := os.Getenv("SCORING_SNAPSHOT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SCORING_SNAPSHOT_INTERVAL value: %w", err)
		}
		cfg.Scoring.SnapshotInterval = d
	}
	if v := os.Getenv("SCORING_SNAPSHOT_YEARS"); v != "" {
		years, err := parseYears(v)
		if err != nil {
			return err
		}
		cfg.Scoring.SnapshotYears = years
	}
	if v := os.Getenv("ADMIN_TIMEZONE"); v != "" {
		cfg.Admin.Timezone = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaultHTTPAddr
	}
	if c.HTTP.RateLimit <= 0 {
		c.HTTP.RateLimit = defaultRateLimit
	}
	if c.HTTP.RateBurst <= 0 {
		c.HTTP.RateBurst = defaultRateBurst
	}
	if c.Scoring.PointsBase == "" {
		c.Scoring.PointsBase = defaultPointsBase
	}
	if c.Scoring.SnapshotInterval <= 0 {
		c.Scoring.SnapshotInterval = defaultSnapshotInterval
	}
	if c.Admin.Timezone == "" {
		c.Admin.Timezone = defaultTimezone
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Scoring.PointsBase {
	case "finishers", "users":
	default:
		return fmt.Errorf("invalid scoring.points_base %q: want \"finishers\" or \"users\"", c.Scoring.PointsBase)
	}
	if _, err := time.LoadLocation(c.Admin.Timezone); err != nil {
		return fmt.Errorf("invalid admin.timezone %q: %w", c.Admin.Timezone, err)
	}
	return nil
}

// IsDevelopment reports whether the service runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Observability.Environment == "development"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseYears(v string) ([]int, error) {
	var years []int
	for _, part := range splitList(v) {
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid SCORING_SNAPSHOT_YEARS entry %q: %w", part, err)
		}
		years = append(years, y)
	}
	return years, nil
}
