package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var envKeys = []string{
	"CONFIG_FILE", "ENVIRONMENT", "SERVICE_NAME", "PORT", "LOG_LEVEL", "DEBUG",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "REDIS_URL", "CACHE_KEY_PREFIX",
	"CACHE_OPERATION_TIMEOUT", "CACHE_BREAKER_TIMEOUT", "CACHE_FAILURE_THRESHOLD",
	"CACHE_TTL_LIST", "CACHE_TTL_DETAIL", "CACHE_TTL_REFERENCE", "JWT_SECRET", "JWT_ISSUER",
	"CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "EVENT_BUS_NAME", "AWS_REGION",
	"TRACING_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "TRACING_SAMPLE_RATE", "METRICS_ENABLED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "questions-service", cfg.ServiceName)
	assert.Equal(t, 3003, cfg.Port)
	assert.Equal(t, ":3003", cfg.Address())
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 250*time.Millisecond, cfg.Cache.OperationTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTLs().List)
	assert.Equal(t, time.Hour, cfg.Cache.TTLs().Detail)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("DEBUG", "true")
	t.Setenv("CACHE_TTL_LIST", "90s")
	t.Setenv("CACHE_TTL_DETAIL", "120")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CACHE_FAILURE_THRESHOLD", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTLList)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTLDetail)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, uint32(5), cfg.Cache.Redis().FailureThreshold)
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
cache:
  key_prefix: "pmp:"
  ttl_list: 30s
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "warn", cfg.LogLevel, "environment wins over the file")
	assert.Equal(t, "pmp:", cfg.Cache.KeyPrefix)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTLList)
	assert.Equal(t, time.Hour, cfg.Cache.TTLDetail, "absent keys keep defaults")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	production := func() *Config {
		cfg := Defaults()
		cfg.Environment = "production"
		cfg.DatabaseURL = "postgres://localhost/pmp"
		cfg.Cache.RedisURL = "redis://localhost:6379"
		cfg.JWTSecret = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid production", func(*Config) {}, ""},
		{"production without database", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"production without redis", func(c *Config) { c.Cache.RedisURL = "" }, "REDIS_URL"},
		{"production without jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"staging without database", func(c *Config) { c.Environment = "staging"; c.DatabaseURL = "" }, "DATABASE_URL"},
		{"unknown environment", func(c *Config) { c.Environment = "qa" }, "ENVIRONMENT"},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"zero ttl", func(c *Config) { c.Cache.TTLDetail = 0 }, "TTL"},
		{"pool bounds", func(c *Config) { c.DBMinConns = 20 }, "pool"},
		{"rate limit", func(c *Config) { c.RateLimitBurst = 0 }, "RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := production()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl_list: 30s\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	w, err := NewWatcher(cfg, zap.NewNop())
	require.NoError(t, err)
	w.WithDebounce(100 * time.Millisecond)
	t.Cleanup(func() { w.Close() })

	changed := make(chan *Config, 4)
	w.OnChange(func(c *Config) { changed <- c })

	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\ncache:\n  ttl_list: 45s\n"), 0o600))

	select {
	case next := <-changed:
		assert.Equal(t, 45*time.Second, next.Cache.TTLList)
		assert.Equal(t, "debug", next.LogLevel)
		assert.Equal(t, next, w.Current())
	case <-time.After(5 * time.Second):
		t.Fatal("configuration change was not delivered")
	}
}

func TestWatcher_InvalidReloadKeepsLastConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl_list: 30s\n"), 0o600))

	cfg, err := Reload(path)
	require.NoError(t, err)

	w, err := NewWatcher(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	called := false
	w.OnChange(func(*Config) { called = true })

	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl_list: -1s\n"), 0o600))
	w.reload()

	assert.False(t, called)
	assert.Equal(t, 30*time.Second, w.Current().Cache.TTLList)
}

func TestWatcher_DisabledWithoutFile(t *testing.T) {
	w, err := NewWatcher(Defaults(), zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}
