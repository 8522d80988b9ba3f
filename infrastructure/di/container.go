package di

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	querybus "questions-service/application/queries/bus"
	"questions-service/application/services"
	"questions-service/infrastructure/config"
	"questions-service/infrastructure/persistence/cached"
	"questions-service/pkg/auth"
	"questions-service/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	LogLevel        zap.AtomicLevel
	Metrics         *observability.Collector
	Tracer          *observability.TracerProvider
	Persistence     *Persistence
	Cache           CacheStore
	Repository      *cached.Repository
	QueryBus        *querybus.QueryBus
	Publisher       EventPublisher
	PracticeService *services.PracticeService
	AdminService    *services.AdminService
	RateLimiter     *auth.TokenBucketLimiter
	Watcher         *config.Watcher
	Router          http.Handler
}

// Close releases resources in dependency order: the config watcher first,
// the tracer last so spans from the teardown are still flushed.
func (c *Container) Close(ctx context.Context) {
	if c.Watcher != nil {
		if err := c.Watcher.Close(); err != nil {
			c.Logger.Warn("Failed to stop config watcher", zap.Error(err))
		}
	}
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	if c.RateLimiter != nil {
		c.RateLimiter.Close()
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.Logger.Warn("Failed to close cache", zap.Error(err))
		}
	}
	if c.Persistence != nil {
		c.Persistence.Close()
	}
	if c.Tracer != nil {
		if err := c.Tracer.Shutdown(ctx); err != nil {
			c.Logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	_ = c.Logger.Sync()
}
