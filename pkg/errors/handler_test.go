package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestErrorHandler_AppErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    ErrorType
	}{
		{"validation", NewValidationError("bad limit"), http.StatusBadRequest, ErrorTypeValidation},
		{"not found", NewNotFoundError("question"), http.StatusNotFound, ErrorTypeNotFound},
		{"conflict", NewSessionStateError("s1", "COMPLETED"), http.StatusConflict, ErrorTypeConflict},
		{"forbidden", NewForbiddenError(""), http.StatusForbidden, ErrorTypeForbidden},
		{"wrapped", fmt.Errorf("query handler failed: %w", NewNotFoundError("flashcard")), http.StatusNotFound, ErrorTypeNotFound},
	}

	h := NewErrorHandler(zap.NewNop(), false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/questions", nil)

			h.Handle(rec, req, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeResponse(t, rec)
			assert.True(t, resp.Error)
			assert.Equal(t, string(tt.typ), resp.Type)
		})
	}
}

func TestErrorHandler_SuppressesDetailsOutsideDebug(t *testing.T) {
	cause := stderrors.New("dial tcp 10.0.0.5:5432: connection refused")

	t.Run("database error hides cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewErrorHandler(zap.NewNop(), false).Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), NewDatabaseError("ListQuestions", cause))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	})

	t.Run("unknown error is generic", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewErrorHandler(zap.NewNop(), false).Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), cause)

		resp := decodeResponse(t, rec)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "An internal error occurred", resp.Message)
		assert.Equal(t, string(ErrorTypeInternal), resp.Type)
	})

	t.Run("debug exposes cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewErrorHandler(zap.NewNop(), true).Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), NewDatabaseError("ListQuestions", cause))

		resp := decodeResponse(t, rec)
		assert.Equal(t, cause.Error(), resp.Details["cause"])
	})
}

func TestErrorHandler_MiddlewareRecoversPanics(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	wrapped := Wrap(NewNotFoundError("test"), "start session")
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, "start session: test not found", GetAppError(wrapped).Message)

	plain := Wrap(stderrors.New("boom"), "publish")
	assert.True(t, IsType(plain, ErrorTypeInternal))
}
