package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata" // 컨테이너에 zoneinfo가 없을 수 있음

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port     string
	Env      string // development, staging, production
	Timezone string

	// Database (history store, optional)
	Database DatabaseConfig

	// Redis (quote snapshot, optional)
	Redis RedisConfig

	// Market data
	Quotes   QuoteConfig
	Pricing  PricingConfig
	Forecast ForecastConfig

	// Catalog override (empty = embedded catalog)
	CatalogFile string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	Enabled     bool
	SnapshotTTL time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// QuoteConfig holds quote provider and refresh cycle settings
type QuoteConfig struct {
	BaseURL         string
	BatchSize       int
	BatchTimeout    time.Duration
	RefreshInterval time.Duration
	MaxParallel     int
	RatePerMinute   int
	StaleAfter      time.Duration
}

// PricingConfig holds option pricing inputs
type PricingConfig struct {
	RiskFreeRate float64
}

// ForecastConfig selects forecast strategies
type ForecastConfig struct {
	Seed          int64  // 0 = time seeded
	Signals       string // random, indicator
	HistorySource string // synthetic, postgres
	HistoryLength int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port:     getEnv("PORT", "8089"),
		Env:      getEnv("ENV", "development"),
		Timezone: getEnv("TIMEZONE", "Asia/Kolkata"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			Enabled:     getEnvAsBool("REDIS_ENABLED", false),
			SnapshotTTL: getEnvAsDuration("REDIS_SNAPSHOT_TTL", "24h"),
		},

		Quotes: QuoteConfig{
			BaseURL:         getEnv("QUOTE_API_BASE_URL", "https://quantedge-api.onrender.com"),
			BatchSize:       getEnvAsInt("QUOTE_BATCH_SIZE", 30),
			BatchTimeout:    getEnvAsDuration("QUOTE_BATCH_TIMEOUT", "15s"),
			RefreshInterval: getEnvAsDuration("QUOTE_REFRESH_INTERVAL", "60s"),
			MaxParallel:     getEnvAsInt("QUOTE_MAX_PARALLEL", 4),
			RatePerMinute:   getEnvAsInt("QUOTE_RATE_PER_MINUTE", 20),
			StaleAfter:      getEnvAsDuration("QUOTE_STALE_AFTER", "5m"),
		},

		Pricing: PricingConfig{
			RiskFreeRate: getEnvAsFloat("RISK_FREE_RATE", 0.065),
		},

		Forecast: ForecastConfig{
			Seed:          int64(getEnvAsInt("FORECAST_SEED", 0)),
			Signals:       getEnv("FORECAST_SIGNALS", "random"),
			HistorySource: getEnv("HISTORY_SOURCE", "synthetic"),
			HistoryLength: getEnvAsInt("HISTORY_LENGTH", 30),
		},

		CatalogFile: getEnv("CATALOG_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Forecast.HistorySource {
	case "synthetic":
	case "postgres":
		// 히스토리를 DB에서 읽을 때만 DATABASE_URL 필수
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when HISTORY_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("HISTORY_SOURCE must be one of: synthetic, postgres")
	}

	if c.Forecast.Signals != "random" && c.Forecast.Signals != "indicator" {
		return fmt.Errorf("FORECAST_SIGNALS must be one of: random, indicator")
	}

	if c.Quotes.BaseURL == "" {
		return fmt.Errorf("QUOTE_API_BASE_URL is required")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}

	return nil
}

// Location returns the market timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
