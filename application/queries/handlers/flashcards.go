package handlers

import (
	"context"

	"go.uber.org/zap"

	"questions-service/application/ports"
	"questions-service/application/queries"
	"questions-service/domain/core/entities"
)

// ListFlashcardsHandler handles flashcard listing queries
type ListFlashcardsHandler struct {
	repo   ports.ContentRepository
	logger *zap.Logger
}

// NewListFlashcardsHandler creates a new ListFlashcardsHandler
func NewListFlashcardsHandler(repo ports.ContentRepository, logger *zap.Logger) *ListFlashcardsHandler {
	return &ListFlashcardsHandler{repo: repo, logger: logger}
}

// Handle executes the listing
func (h *ListFlashcardsHandler) Handle(ctx context.Context, query queries.ListFlashcardsQuery) (*ports.FlashcardPage, error) {
	filter := ports.FlashcardFilter{
		DomainID:   query.DomainID,
		Category:   query.Category,
		Difficulty: query.Difficulty,
	}
	page, err := h.repo.ListFlashcards(ctx, filter, query.Page)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Listed flashcards",
		zap.String("domain", query.DomainID),
		zap.String("category", query.Category),
		zap.Int("returned", len(page.Flashcards)),
	)
	return page, nil
}

// GetFlashcardHandler handles single flashcard queries
type GetFlashcardHandler struct {
	repo ports.ContentRepository
}

// NewGetFlashcardHandler creates a new GetFlashcardHandler
func NewGetFlashcardHandler(repo ports.ContentRepository) *GetFlashcardHandler {
	return &GetFlashcardHandler{repo: repo}
}

// Handle executes the lookup
func (h *GetFlashcardHandler) Handle(ctx context.Context, query queries.GetFlashcardQuery) (*entities.Flashcard, error) {
	return h.repo.GetFlashcard(ctx, query.FlashcardID)
}

// ListCategoriesHandler handles flashcard category queries
type ListCategoriesHandler struct {
	repo ports.ContentRepository
}

// NewListCategoriesHandler creates a new ListCategoriesHandler
func NewListCategoriesHandler(repo ports.ContentRepository) *ListCategoriesHandler {
	return &ListCategoriesHandler{repo: repo}
}

// Handle executes the listing
func (h *ListCategoriesHandler) Handle(ctx context.Context, _ queries.ListCategoriesQuery) ([]entities.CategorySummary, error) {
	return h.repo.ListCategories(ctx)
}
