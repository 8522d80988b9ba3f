package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"questions-service/application/ports"
	querybus "questions-service/application/queries/bus"
	"questions-service/application/services"
	"questions-service/interfaces/http/rest/handlers"
	"questions-service/interfaces/http/rest/middleware"
	"questions-service/pkg/auth"
	"questions-service/pkg/errors"
	"questions-service/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	serviceName     string
	queryBus        *querybus.QueryBus
	practiceService *services.PracticeService
	adminService    *services.AdminService
	database        ports.HealthChecker
	cache           handlers.CacheStatus
	errorHandler    *errors.ErrorHandler
	validator       *auth.JWTValidator
	limiter         *auth.TokenBucketLimiter
	metrics         *observability.Collector
	allowedOrigins  []string
	logger          *zap.Logger
}

// RouterDeps groups the collaborators of the router
type RouterDeps struct {
	ServiceName     string
	QueryBus        *querybus.QueryBus
	PracticeService *services.PracticeService
	AdminService    *services.AdminService
	Database        ports.HealthChecker
	Cache           handlers.CacheStatus
	ErrorHandler    *errors.ErrorHandler
	// Validator is nil when no JWT secret is configured
	Validator      *auth.JWTValidator
	Limiter        *auth.TokenBucketLimiter
	Metrics        *observability.Collector
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		serviceName:     deps.ServiceName,
		queryBus:        deps.QueryBus,
		practiceService: deps.PracticeService,
		adminService:    deps.AdminService,
		database:        deps.Database,
		cache:           deps.Cache,
		errorHandler:    deps.ErrorHandler,
		validator:       deps.Validator,
		limiter:         deps.Limiter,
		metrics:         deps.Metrics,
		allowedOrigins:  deps.AllowedOrigins,
		logger:          deps.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Tracing(rt.serviceName))
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}
	router.Use(rt.errorHandler.Middleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.Handle(w, r, errors.NewNotFoundError("route"))
	})

	health := handlers.NewHealthHandler(rt.serviceName, rt.database, rt.cache, rt.logger)
	router.Get("/health", health.Health)
	router.Get("/ready", health.Ready)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	content := handlers.NewContentHandler(rt.queryBus, rt.errorHandler, rt.logger)
	router.Route("/questions", func(r chi.Router) {
		r.Get("/", content.ListQuestions)
		r.Get("/domains/list", content.ListDomains)
		r.Get("/{id}", content.GetQuestion)
	})
	router.Route("/flashcards", func(r chi.Router) {
		r.Get("/", content.ListFlashcards)
		r.Get("/categories/list", content.ListCategories)
		r.Get("/{id}", content.GetFlashcard)
	})

	practice := handlers.NewPracticeHandler(rt.practiceService, rt.queryBus, rt.errorHandler, rt.logger)
	router.Route("/practice", func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.limiter, rt.errorHandler))
		r.Get("/tests", practice.ListTests)
		r.Post("/sessions", practice.StartSession)
		r.Get("/sessions/{id}", practice.GetSession)
		r.Post("/sessions/{id}/answer", practice.SubmitAnswer)
		r.Post("/sessions/{id}/complete", practice.CompleteSession)
	})

	admin := handlers.NewAdminHandler(rt.adminService, rt.queryBus, rt.errorHandler, rt.logger)
	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.limiter, rt.errorHandler))
		r.Use(middleware.RequireRole(rt.validator, rt.errorHandler, rt.logger, auth.RoleAdmin))
		r.Get("/questions", admin.ListQuestions)
		r.Post("/questions", admin.CreateQuestion)
		r.Put("/questions/{id}", admin.UpdateQuestion)
		r.Patch("/questions/{id}/toggle", admin.ToggleQuestion)
	})

	return router
}
