package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"questions-service/infrastructure/cache"
)

// LoadFile overlays the YAML document at path onto cfg. Keys absent from the
// file keep their current value.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Reload rebuilds the configuration from its sources. It is used by the
// watcher after the overlay file changes.
func Reload(path string) (*Config, error) {
	cfg := Defaults()
	cfg.ConfigFile = path
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// TTLs converts the cache section to the read-through expirations
func (c CacheConfig) TTLs() cache.TTLs {
	return cache.TTLs{
		List:      c.TTLList,
		Detail:    c.TTLDetail,
		Reference: c.TTLReference,
	}
}

// Redis converts the cache section to the Redis client settings
func (c CacheConfig) Redis() cache.RedisConfig {
	return cache.RedisConfig{
		URL:              c.RedisURL,
		KeyPrefix:        c.KeyPrefix,
		OperationTimeout: c.OperationTimeout,
		BreakerTimeout:   c.BreakerTimeout,
		FailureThreshold: uint32(c.FailureThreshold),
	}
}
