package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"questions-service/application/ports"
	"questions-service/application/queries"
	querybus "questions-service/application/queries/bus"
	"questions-service/domain/core/entities"
	"questions-service/domain/core/valueobjects"
	"questions-service/pkg/common"
)

// ContentHandler serves the read-only question and flashcard endpoints
type ContentHandler struct {
	queryBus *querybus.QueryBus
	errors   ErrorResponder
	logger   *zap.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(queryBus *querybus.QueryBus, errors ErrorResponder, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		queryBus: queryBus,
		errors:   errors,
		logger:   logger,
	}
}

// ListQuestions handles GET /questions
func (h *ContentHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	page, err := common.ExtractPageRequest(r, common.ContentPageBounds)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	difficulty, err := valueobjects.ParseDifficulty(r.URL.Query().Get("difficulty"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := querybus.AskFor[*ports.QuestionPage](r.Context(), h.queryBus, queries.ListQuestionsQuery{
		DomainID:   r.URL.Query().Get("domain"),
		Difficulty: difficulty,
		Page:       page,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// GetQuestion handles GET /questions/{id}
func (h *ContentHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := querybus.AskFor[*entities.Question](r.Context(), h.queryBus, queries.GetQuestionQuery{
		QuestionID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, question)
}

// ListDomains handles GET /questions/domains/list
func (h *ContentHandler) ListDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := querybus.AskFor[[]entities.DomainSummary](r.Context(), h.queryBus, queries.ListDomainsQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, domains)
}

// ListFlashcards handles GET /flashcards
func (h *ContentHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	page, err := common.ExtractPageRequest(r, common.ContentPageBounds)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	difficulty, err := valueobjects.ParseDifficulty(r.URL.Query().Get("difficulty"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := querybus.AskFor[*ports.FlashcardPage](r.Context(), h.queryBus, queries.ListFlashcardsQuery{
		DomainID:   r.URL.Query().Get("domain"),
		Category:   r.URL.Query().Get("category"),
		Difficulty: difficulty,
		Page:       page,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, result)
}

// GetFlashcard handles GET /flashcards/{id}
func (h *ContentHandler) GetFlashcard(w http.ResponseWriter, r *http.Request) {
	card, err := querybus.AskFor[*entities.Flashcard](r.Context(), h.queryBus, queries.GetFlashcardQuery{
		FlashcardID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, card)
}

// ListCategories handles GET /flashcards/categories/list
func (h *ContentHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := querybus.AskFor[[]entities.CategorySummary](r.Context(), h.queryBus, queries.ListCategoriesQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, categories)
}
