package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (contract store, only needed for the postgres resolver)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Membership resolver
	Resolver ResolverConfig

	// Staleness thresholds ("event=minutes|never" lists, empty = defaults)
	ContractThresholds     string
	ProductGroupThresholds string

	// Currency sweep
	Sweep SweepConfig

	// CLI client
	APIBaseURL string

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ResolverConfig holds membership resolver configuration
// ⭐ SSOT: 계약 멤버십 조회 설정은 여기서만
type ResolverConfig struct {
	Kind          string // static, postgres, http
	BaseURL       string // http resolver endpoint
	Timeout       time.Duration
	RatePerSecond int // http resolver local rate limit
	CacheTTL      time.Duration
	StaticMembers string // "groupA=c1|c2;groupB=c3"
}

// SweepConfig holds currency sweep scheduling configuration
type SweepConfig struct {
	Enabled  bool
	Schedule string   // cron expression (with seconds field)
	Groups   []string // product groups checked by the sweep
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "contract_store"),
			User:            getEnv("DB_USER", "freshness"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Membership resolver
		Resolver: ResolverConfig{
			Kind:          getEnv("RESOLVER_KIND", "static"),
			BaseURL:       getEnv("RESOLVER_BASE_URL", ""),
			Timeout:       getEnvAsDuration("RESOLVER_TIMEOUT", "5s"),
			RatePerSecond: getEnvAsInt("RESOLVER_RATE_PER_SECOND", 10),
			CacheTTL:      getEnvAsDuration("RESOLVER_CACHE_TTL", "1m"),
			StaticMembers: getEnv("RESOLVER_STATIC_MEMBERS", ""),
		},

		// Thresholds
		ContractThresholds:     getEnv("CONTRACT_THRESHOLDS", ""),
		ProductGroupThresholds: getEnv("PRODUCT_GROUP_THRESHOLDS", ""),

		// Currency sweep
		Sweep: SweepConfig{
			Enabled:  getEnvAsBool("SWEEP_ENABLED", true),
			Schedule: getEnv("SWEEP_SCHEDULE", "0 */10 * * * *"),
			Groups:   getEnvAsList("SWEEP_GROUPS", ""),
		},

		// CLI client
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8090"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	// Validate resolver kind
	switch c.Resolver.Kind {
	case "static", "postgres", "http":
	default:
		return fmt.Errorf("RESOLVER_KIND must be one of: static, postgres, http")
	}

	// Database URL is required only for the postgres resolver
	if c.Resolver.Kind == "postgres" && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when RESOLVER_KIND=postgres")
	}

	// HTTP resolver needs an endpoint
	if c.Resolver.Kind == "http" && c.Resolver.BaseURL == "" {
		return fmt.Errorf("RESOLVER_BASE_URL is required when RESOLVER_KIND=http")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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

func getEnvAsList(key string, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
