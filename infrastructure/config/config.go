package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Service configuration
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	Port        int    `yaml:"port"`
	LogLevel    string `yaml:"log_level"`
	Debug       bool   `yaml:"debug"`

	// Postgres configuration
	DatabaseURL string `yaml:"database_url"`
	DBMaxConns  int    `yaml:"db_max_conns"`
	DBMinConns  int    `yaml:"db_min_conns"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Authentication
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// HTTP edge
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimitRPS       float64  `yaml:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`

	// Events
	EventBusName string `yaml:"event_bus_name"`
	AWSRegion    string `yaml:"aws_region"`

	// Observability
	TracingEnabled    bool    `yaml:"tracing_enabled"`
	TracingEndpoint   string  `yaml:"tracing_endpoint"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate"`
	MetricsEnabled    bool    `yaml:"metrics_enabled"`

	// ConfigFile is the optional YAML overlay, watched for changes
	ConfigFile string `yaml:"-"`
}

// CacheConfig holds the Redis connection and the read-through TTLs
type CacheConfig struct {
	RedisURL         string        `yaml:"redis_url"`
	KeyPrefix        string        `yaml:"key_prefix"`
	OperationTimeout time.Duration `yaml:"operation_timeout"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout"`
	FailureThreshold int           `yaml:"failure_threshold"`
	TTLList          time.Duration `yaml:"ttl_list"`
	TTLDetail        time.Duration `yaml:"ttl_detail"`
	TTLReference     time.Duration `yaml:"ttl_reference"`
}

// Defaults returns the configuration used before any source is applied
func Defaults() *Config {
	return &Config{
		ServiceName: "questions-service",
		Environment: "development",
		Port:        3003,
		LogLevel:    "info",
		DBMaxConns:  10,
		DBMinConns:  1,
		Cache: CacheConfig{
			OperationTimeout: 250 * time.Millisecond,
			BreakerTimeout:   30 * time.Second,
			FailureThreshold: 3,
			TTLList:          5 * time.Minute,
			TTLDetail:        time.Hour,
			TTLReference:     time.Hour,
		},
		JWTIssuer:          "questions-service",
		CORSAllowedOrigins: []string{"*"},
		RateLimitRPS:       20,
		RateLimitBurst:     40,
		AWSRegion:          "us-east-1",
		TracingSampleRate:  1.0,
		MetricsEnabled:     true,
	}
}

// LoadConfig loads configuration from defaults, the optional CONFIG_FILE
// overlay and environment variables, in that order of precedence.
func LoadConfig() (*Config, error) {
	return Reload(getEnv("CONFIG_FILE", ""))
}

func applyEnv(cfg *Config) {
	cfg.ServiceName = getEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Debug = getEnvBool("DEBUG", cfg.Debug)

	// Postgres
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.DBMaxConns = getEnvInt("DB_MAX_CONNS", cfg.DBMaxConns)
	cfg.DBMinConns = getEnvInt("DB_MIN_CONNS", cfg.DBMinConns)

	// Cache
	cfg.Cache.RedisURL = getEnv("REDIS_URL", cfg.Cache.RedisURL)
	cfg.Cache.KeyPrefix = getEnv("CACHE_KEY_PREFIX", cfg.Cache.KeyPrefix)
	cfg.Cache.OperationTimeout = getEnvDuration("CACHE_OPERATION_TIMEOUT", cfg.Cache.OperationTimeout)
	cfg.Cache.BreakerTimeout = getEnvDuration("CACHE_BREAKER_TIMEOUT", cfg.Cache.BreakerTimeout)
	cfg.Cache.FailureThreshold = getEnvInt("CACHE_FAILURE_THRESHOLD", cfg.Cache.FailureThreshold)
	cfg.Cache.TTLList = getEnvDuration("CACHE_TTL_LIST", cfg.Cache.TTLList)
	cfg.Cache.TTLDetail = getEnvDuration("CACHE_TTL_DETAIL", cfg.Cache.TTLDetail)
	cfg.Cache.TTLReference = getEnvDuration("CACHE_TTL_REFERENCE", cfg.Cache.TTLReference)

	// Authentication
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)

	// HTTP edge
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)
	cfg.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)

	// Events
	cfg.EventBusName = getEnv("EVENT_BUS_NAME", cfg.EventBusName)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)

	// Observability
	cfg.TracingEnabled = getEnvBool("TRACING_ENABLED", cfg.TracingEnabled)
	cfg.TracingEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.TracingEndpoint)
	cfg.TracingSampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.TracingSampleRate)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", cfg.MetricsEnabled)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Environment)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBMinConns < 0 || c.DBMaxConns < 1 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid pool bounds: DB_MIN_CONNS=%d DB_MAX_CONNS=%d", c.DBMinConns, c.DBMaxConns)
	}
	if c.Cache.TTLList <= 0 || c.Cache.TTLDetail <= 0 || c.Cache.TTLReference <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if c.IsProduction() {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required in production")
		}
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
	} else if c.DatabaseURL == "" && c.Environment != "development" {
		return fmt.Errorf("DATABASE_URL is required outside development")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Address is the listen address of the HTTP server
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("300ms", "5m") or whole seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
