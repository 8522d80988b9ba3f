package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	pkgerrors "questions-service/pkg/errors"
	"questions-service/pkg/observability"
)

const tracerName = "questions-service/postgres"

// Postgres error codes mapped to domain errors
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// Config configures the connection pool
type Config struct {
	URL      string
	MaxConns int32
	MinConns int32
}

// Metrics receives the outcome of every database call
type Metrics interface {
	RecordDBOperation(operation string, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordDBOperation(string, time.Duration, error) {}

// NewPool opens a pgx pool and verifies the server answers
func NewPool(ctx context.Context, cfg Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	logger.Info("Connected to Postgres",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return pool, nil
}

// HealthChecker pings the pool
type HealthChecker struct {
	pool *pgxpool.Pool
}

// NewHealthChecker creates a HealthChecker for pool
func NewHealthChecker(pool *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{pool: pool}
}

// Ping implements ports.HealthChecker
func (h *HealthChecker) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// instrumented holds what every repository needs to trace and time its calls
type instrumented struct {
	pool    *pgxpool.Pool
	logger  *zap.Logger
	metrics Metrics
}

func newInstrumented(pool *pgxpool.Pool, logger *zap.Logger, metrics Metrics) instrumented {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return instrumented{pool: pool, logger: logger, metrics: metrics}
}

// observe opens a span for operation and returns a func that closes it and
// records the duration. Call it with a pointer to the named error result.
func (i instrumented) observe(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	start := time.Now()
	attrs = append(attrs, attribute.String("db.system", "postgresql"), attribute.String("db.operation", operation))
	ctx, span := observability.StartSpan(ctx, tracerName, "postgres."+operation, attrs...)

	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		// domain outcomes such as not found are not database failures
		failed := err
		if pkgerrors.GetAppError(err) != nil && !pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase) {
			failed = nil
		}
		i.metrics.RecordDBOperation(operation, time.Since(start), failed)
		observability.EndSpan(span, failed)
	}
}

// dbError converts a driver error into a domain error and logs the cause
func (i instrumented) dbError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if pkgerrors.GetAppError(err) != nil {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return pkgerrors.NewConflictError("record already exists").WithCause(err)
	}

	i.logger.Error("Database operation failed",
		zap.String("operation", operation),
		zap.Error(err),
	)
	return pkgerrors.NewDatabaseError(operation, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// where collects AND-ed conditions with positional arguments
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder index for an argument appended after the filters
func (w *where) next(arg interface{}) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}
