package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "questions-service/pkg/errors"
)

type stubDatabase struct{ err error }

func (s stubDatabase) Ping(context.Context) error { return s.err }

type stubCache string

func (s stubCache) Status() string { return string(s) }

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name         string
		dbErr        error
		cache        string
		expectedCode int
		expectedBody ReadinessResponse
	}{
		{
			name:         "all up",
			cache:        "connected",
			expectedCode: http.StatusOK,
			expectedBody: ReadinessResponse{Status: "ready", Checks: map[string]string{"database": "up", "cache": "connected"}},
		},
		{
			name:         "degraded cache is still ready",
			cache:        "disconnected",
			expectedCode: http.StatusOK,
			expectedBody: ReadinessResponse{Status: "ready", Checks: map[string]string{"database": "up", "cache": "disconnected"}},
		},
		{
			name:         "database down",
			dbErr:        errors.New("dial tcp: connection refused"),
			cache:        "connected",
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: ReadinessResponse{
				Status:  "not_ready",
				Type:    string(pkgerrors.ErrorTypeUnavailable),
				Message: "service 'database' is unavailable",
				Checks:  map[string]string{"database": "down", "cache": "connected"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("questions-service", stubDatabase{err: tt.dbErr}, stubCache(tt.cache), zap.NewNop())
			rec := httptest.NewRecorder()

			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.expectedCode, rec.Code)
			var body ReadinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedBody, body)
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}
