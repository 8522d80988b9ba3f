package queries

import (
	"questions-service/domain/core/valueobjects"
	"questions-service/pkg/common"
)

// ListFlashcardsQuery represents a query for one page of flashcards
type ListFlashcardsQuery struct {
	DomainID   string
	Category   string
	Difficulty valueobjects.Difficulty
	Page       common.PageRequest
}

// Validate validates the ListFlashcardsQuery
func (q ListFlashcardsQuery) Validate() error {
	if err := validatePage(q.Page); err != nil {
		return err
	}
	return validateDifficulty(q.Difficulty)
}

// GetFlashcardQuery represents a query to get a single active flashcard
type GetFlashcardQuery struct {
	FlashcardID string
}

// Validate validates the GetFlashcardQuery
func (q GetFlashcardQuery) Validate() error {
	return ValidateID("flashcard id", q.FlashcardID)
}
