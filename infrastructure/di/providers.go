package di

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"questions-service/application/ports"
	querybus "questions-service/application/queries/bus"
	queryhandlers "questions-service/application/queries/handlers"
	"questions-service/application/services"
	"questions-service/infrastructure/cache"
	"questions-service/infrastructure/config"
	"questions-service/infrastructure/messaging/eventbridge"
	"questions-service/infrastructure/persistence/cached"
	"questions-service/infrastructure/persistence/memory"
	"questions-service/infrastructure/persistence/postgres"
	"questions-service/interfaces/http/rest"
	"questions-service/pkg/auth"
	"questions-service/pkg/errors"
	"questions-service/pkg/observability"
)

// CacheStore is a cache the container owns and closes
type CacheStore interface {
	ports.Cache
	Status() string
	Close() error
}

// EventPublisher is a publisher the container owns and closes
type EventPublisher interface {
	ports.EventPublisher
	Close() error
}

// Persistence is the selected backing store: Postgres, or the seeded
// in-memory store for local development without a database.
type Persistence struct {
	Content  cached.Store
	Practice ports.PracticeRepository
	Health   ports.HealthChecker
	Pool     *pgxpool.Pool
}

// Close releases the connection pool, if any
func (p *Persistence) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// ProvideLogLevel parses the configured level into an adjustable level
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return level, nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
	), nil
}

// ProvideMetrics creates the Prometheus collector. Series are recorded even
// when the /metrics route is disabled.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(strings.ReplaceAll(cfg.ServiceName, "-", "_"))
}

// ProvideTracer installs the OpenTelemetry provider
func ProvideTracer(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	return observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.TracingEndpoint,
		SampleRate:  cfg.TracingSampleRate,
	})
}

// ProvidePersistence connects to Postgres. In development an empty
// DATABASE_URL selects the in-memory store seeded with demo content.
func ProvidePersistence(
	ctx context.Context,
	cfg *config.Config,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*Persistence, error) {
	if cfg.DatabaseURL == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("DATABASE_URL is required in %s", cfg.Environment)
		}
		logger.Warn("DATABASE_URL not set, serving seeded in-memory content")
		store := memory.NewStore()
		store.SeedDemo(time.Now().UTC())
		return &Persistence{Content: store, Practice: store, Health: store}, nil
	}

	pool, err := postgres.NewPool(ctx, postgres.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: int32(cfg.DBMaxConns),
		MinConns: int32(cfg.DBMinConns),
	}, logger)
	if err != nil {
		return nil, err
	}

	return &Persistence{
		Content:  postgres.NewContentRepository(pool, logger, metrics),
		Practice: postgres.NewPracticeRepository(pool, logger, metrics),
		Health:   postgres.NewHealthChecker(pool),
		Pool:     pool,
	}, nil
}

// ProvideCache connects to Redis, or keeps entries in process when
// REDIS_URL is empty. An unreachable Redis is not a startup failure.
func ProvideCache(
	ctx context.Context,
	cfg *config.Config,
	metrics *observability.Collector,
	logger *zap.Logger,
) (CacheStore, error) {
	if cfg.Cache.RedisURL == "" {
		logger.Info("REDIS_URL not set, using in-process cache")
		return cache.NewMemoryCache(logger, metrics), nil
	}
	redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.Redis(), logger, metrics)
	if err != nil {
		return nil, err
	}
	return redisCache, nil
}

// ProvideCachedRepository wraps the content store with the read-through cache
func ProvideCachedRepository(
	persistence *Persistence,
	c CacheStore,
	cfg *config.Config,
	logger *zap.Logger,
) *cached.Repository {
	return cached.NewRepository(persistence.Content, c, cfg.Cache.TTLs(), logger)
}

// ProvideQueryBus creates the query bus with every read handler registered
func ProvideQueryBus(
	repo *cached.Repository,
	persistence *Persistence,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.NewMetricsMiddleware(metrics),
		querybus.TracingMiddleware{},
	)
	if err := queryhandlers.RegisterAll(queryBus, repo, persistence.Practice, logger); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return queryBus, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideEventPublisher publishes to EventBridge, or only logs when no bus
// is configured.
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (EventPublisher, error) {
	if cfg.EventBusName == "" {
		return eventbridge.NewNoopPublisher(logger), nil
	}
	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger), nil
}

// ProvidePracticeService creates the practice session service
func ProvidePracticeService(
	persistence *Persistence,
	publisher EventPublisher,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.PracticeService {
	return services.NewPracticeService(persistence.Practice, publisher, metrics, logger)
}

// ProvideAdminService creates the question authoring service. Writes go
// through the cached repository so they invalidate.
func ProvideAdminService(repo *cached.Repository, publisher EventPublisher, logger *zap.Logger) *services.AdminService {
	return services.NewAdminService(repo, publisher, logger)
}

// ProvideJWTValidator returns nil when no secret is configured, which leaves
// the admin routes open. Validate refuses that outside development.
func ProvideJWTValidator(cfg *config.Config, logger *zap.Logger) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, admin routes are not authenticated")
		return nil, nil
	}
	return auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
}

// ProvideRateLimiter creates the per-client token bucket limiter
func ProvideRateLimiter(cfg *config.Config) *auth.TokenBucketLimiter {
	return auth.NewTokenBucketLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *errors.ErrorHandler {
	return errors.NewErrorHandler(logger, cfg.Debug)
}

// ProvideConfigWatcher applies reloaded cache TTLs and log level at runtime
func ProvideConfigWatcher(
	cfg *config.Config,
	level zap.AtomicLevel,
	repo *cached.Repository,
	logger *zap.Logger,
) (*config.Watcher, error) {
	watcher, err := config.NewWatcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	watcher.OnChange(func(next *config.Config) {
		repo.SetTTLs(next.Cache.TTLs())
	})
	watcher.OnChange(func(next *config.Config) {
		lvl, err := zapcore.ParseLevel(next.LogLevel)
		if err != nil {
			logger.Warn("Ignoring invalid log level", zap.String("level", next.LogLevel))
			return
		}
		level.SetLevel(lvl)
	})
	return watcher, nil
}

// ProvideRouter builds the HTTP handler
func ProvideRouter(
	cfg *config.Config,
	queryBus *querybus.QueryBus,
	practice *services.PracticeService,
	admin *services.AdminService,
	persistence *Persistence,
	c CacheStore,
	errorHandler *errors.ErrorHandler,
	validator *auth.JWTValidator,
	limiter *auth.TokenBucketLimiter,
	metrics *observability.Collector,
	logger *zap.Logger,
) http.Handler {
	deps := rest.RouterDeps{
		ServiceName:     cfg.ServiceName,
		QueryBus:        queryBus,
		PracticeService: practice,
		AdminService:    admin,
		Database:        persistence.Health,
		Cache:           c,
		ErrorHandler:    errorHandler,
		Validator:       validator,
		Limiter:         limiter,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Logger:          logger,
	}
	if cfg.MetricsEnabled {
		deps.Metrics = metrics
	}
	return rest.NewRouter(deps).Setup()
}
