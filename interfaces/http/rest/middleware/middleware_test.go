package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"questions-service/pkg/auth"
	pkgerrors "questions-service/pkg/errors"
)

type recordedRequest struct {
	method, route, status string
}

type recordingMetrics struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (m *recordingMetrics) RecordHTTPRequest(method, route, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method, route, status})
}

func signed(t *testing.T, secret, subject string, roles ...string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestRequireRole(t *testing.T) {
	validator, err := auth.NewJWTValidator("secret", "")
	require.NoError(t, err)
	responder := pkgerrors.NewErrorHandler(zap.NewNop(), false)

	var seen string
	handler := RequireRole(validator, responder, zap.NewNop(), auth.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = auth.SubjectFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signed(t, "other", "u1", "ADMIN"), http.StatusUnauthorized},
		{"missing role", "Bearer " + signed(t, "secret", "u1", "STUDENT"), http.StatusForbidden},
		{"admin", "Bearer " + signed(t, "secret", "u1", "admin"), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/admin/questions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, "u1", seen)
			} else {
				assert.Empty(t, seen)
			}
		})
	}
}

func TestRequireRole_NilValidatorPassesThrough(t *testing.T) {
	handler := RequireRole(nil, pkgerrors.NewErrorHandler(zap.NewNop(), false), zap.NewNop(), auth.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/questions", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit_PerClientIP(t *testing.T) {
	limiter := auth.NewTokenBucketLimiter(0.001, 1)
	defer limiter.Close()
	handler := RateLimit(limiter, pkgerrors.NewErrorHandler(zap.NewNop(), false))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/practice/tests", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000").Code)
	limited := call("10.0.0.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000").Code)
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	metrics := &recordingMetrics{}
	router := chi.NewRouter()
	router.Use(Metrics(metrics))
	router.Get("/questions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/questions/a", "/questions/b", "/health"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []recordedRequest{
		{"GET", "/questions/{id}", "404"},
		{"GET", "/questions/{id}", "404"},
		{"GET", "/health", "200"},
	}, metrics.requests)
}

func TestTracing_NamesSpanAfterRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	router := chi.NewRouter()
	router.Use(Tracing("questions-service"))
	router.Post("/practice/sessions/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	router.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/practice/sessions/abc/complete", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "POST /practice/sessions/{id}/complete", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.response.status_code", 500))
	assert.Equal(t, "Error", spans[0].Status().Code.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:4411"
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	req.RemoteAddr = "192.0.2.8"
	assert.Equal(t, "192.0.2.8", ClientIP(req))
}
