package handlers

import (
	"context"

	"go.uber.org/zap"

	"questions-service/application/ports"
	"questions-service/application/queries"
	"questions-service/domain/core/entities"
)

// ListQuestionsHandler handles question listing queries
type ListQuestionsHandler struct {
	repo   ports.ContentRepository
	logger *zap.Logger
}

// NewListQuestionsHandler creates a new ListQuestionsHandler
func NewListQuestionsHandler(repo ports.ContentRepository, logger *zap.Logger) *ListQuestionsHandler {
	return &ListQuestionsHandler{repo: repo, logger: logger}
}

// Handle executes the listing
func (h *ListQuestionsHandler) Handle(ctx context.Context, query queries.ListQuestionsQuery) (*ports.QuestionPage, error) {
	filter := ports.QuestionFilter{
		DomainID:        query.DomainID,
		Difficulty:      query.Difficulty,
		IncludeInactive: query.IncludeInactive,
	}
	page, err := h.repo.ListQuestions(ctx, filter, query.Page)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Listed questions",
		zap.String("domain", query.DomainID),
		zap.String("difficulty", string(query.Difficulty)),
		zap.Int("page", query.Page.Page),
		zap.Int("returned", len(page.Questions)),
		zap.Int("total", page.Pagination.Total),
	)
	return page, nil
}

// GetQuestionHandler handles single question queries
type GetQuestionHandler struct {
	repo ports.ContentRepository
}

// NewGetQuestionHandler creates a new GetQuestionHandler
func NewGetQuestionHandler(repo ports.ContentRepository) *GetQuestionHandler {
	return &GetQuestionHandler{repo: repo}
}

// Handle executes the lookup
func (h *GetQuestionHandler) Handle(ctx context.Context, query queries.GetQuestionQuery) (*entities.Question, error) {
	return h.repo.GetQuestion(ctx, query.QuestionID)
}

// ListDomainsHandler handles domain listing queries
type ListDomainsHandler struct {
	repo ports.ContentRepository
}

// NewListDomainsHandler creates a new ListDomainsHandler
func NewListDomainsHandler(repo ports.ContentRepository) *ListDomainsHandler {
	return &ListDomainsHandler{repo: repo}
}

// Handle executes the listing
func (h *ListDomainsHandler) Handle(ctx context.Context, _ queries.ListDomainsQuery) ([]entities.DomainSummary, error) {
	return h.repo.ListDomains(ctx)
}
