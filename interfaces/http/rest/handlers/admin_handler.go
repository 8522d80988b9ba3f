package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"questions-service/application/ports"
	"questions-service/application/queries"
	querybus "questions-service/application/queries/bus"
	"questions-service/application/services"
	"questions-service/pkg/auth"
	"questions-service/pkg/common"
)

// AdminHandler serves question authoring. Routes are mounted behind the
// admin role check.
type AdminHandler struct {
	service  *services.AdminService
	queryBus *querybus.QueryBus
	errors   ErrorResponder
	logger   *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	service *services.AdminService,
	queryBus *querybus.QueryBus,
	errors ErrorResponder,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		service:  service,
		queryBus: queryBus,
		errors:   errors,
		logger:   logger,
	}
}

// ListQuestions handles GET /admin/questions. Inactive questions are
// included and the result is never cached.
func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	page, err := common.ExtractPageRequest(r, common.AdminPageBounds)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := querybus.AskFor[*ports.QuestionPage](r.Context(), h.queryBus, queries.ListQuestionsQuery{
		DomainID:        r.URL.Query().Get("domain"),
		Page:            page,
		IncludeInactive: true,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// CreateQuestion handles POST /admin/questions
func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req services.CreateQuestionInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	question, err := h.service.CreateQuestion(r.Context(), req, auth.SubjectFromContext(r.Context()))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, question)
}

// UpdateQuestion handles PUT /admin/questions/{id}
func (h *AdminHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateQuestionInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	question, err := h.service.UpdateQuestion(r.Context(), chi.URLParam(r, "id"), req, auth.SubjectFromContext(r.Context()))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, question)
}

// ToggleQuestion handles PATCH /admin/questions/{id}/toggle
func (h *AdminHandler) ToggleQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.ToggleQuestion(r.Context(), chi.URLParam(r, "id"), auth.SubjectFromContext(r.Context()))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, question)
}
