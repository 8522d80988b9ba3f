//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"questions-service/infrastructure/config"
)

// InfrastructureSet provides logging, telemetry and the backing stores
var InfrastructureSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideMetrics,
	ProvideTracer,
	ProvidePersistence,
	ProvideCache,
	ProvideCachedRepository,
	ProvideEventPublisher,
	ProvideConfigWatcher,
)

// ApplicationSet provides the query bus and the services
var ApplicationSet = wire.NewSet(
	ProvideQueryBus,
	ProvidePracticeService,
	ProvideAdminService,
)

// HTTPSet provides the router and its middleware collaborators
var HTTPSet = wire.NewSet(
	ProvideJWTValidator,
	ProvideRateLimiter,
	ProvideErrorHandler,
	ProvideRouter,
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	InfrastructureSet,
	ApplicationSet,
	HTTPSet,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
