package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"questions-service/application/queries"
	querybus "questions-service/application/queries/bus"
	"questions-service/application/services"
	"questions-service/domain/core/entities"
)

// PracticeHandler serves the practice session endpoints
type PracticeHandler struct {
	service  *services.PracticeService
	queryBus *querybus.QueryBus
	errors   ErrorResponder
	logger   *zap.Logger
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(
	service *services.PracticeService,
	queryBus *querybus.QueryBus,
	errors ErrorResponder,
	logger *zap.Logger,
) *PracticeHandler {
	return &PracticeHandler{
		service:  service,
		queryBus: queryBus,
		errors:   errors,
		logger:   logger,
	}
}

// ListTests handles GET /practice/tests
func (h *PracticeHandler) ListTests(w http.ResponseWriter, r *http.Request) {
	tests, err := querybus.AskFor[[]entities.PracticeTestSummary](r.Context(), h.queryBus, queries.ListPracticeTestsQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, tests)
}

// StartSession handles POST /practice/sessions
func (h *PracticeHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req services.StartSessionInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.service.StartSession(r.Context(), req)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, result)
}

// GetSession handles GET /practice/sessions/{id}
func (h *PracticeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	result, err := querybus.AskFor[*queries.GetSessionResult](r.Context(), h.queryBus, queries.GetSessionQuery{
		SessionID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// SubmitAnswer handles POST /practice/sessions/{id}/answer
func (h *PracticeHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitAnswerInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	req.SessionID = chi.URLParam(r, "id")

	answer, err := h.service.SubmitAnswer(r.Context(), req)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, answer)
}

// CompleteSession handles POST /practice/sessions/{id}/complete
func (h *PracticeHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CompleteSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}
