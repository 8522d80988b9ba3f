package queries

import (
	"questions-service/domain/core/valueobjects"
	"questions-service/pkg/common"
)

// ListQuestionsQuery represents a query for one page of questions
type ListQuestionsQuery struct {
	DomainID   string
	Difficulty valueobjects.Difficulty
	Page       common.PageRequest
	// IncludeInactive is set by the admin listing only
	IncludeInactive bool
}

// Validate validates the ListQuestionsQuery
func (q ListQuestionsQuery) Validate() error {
	if err := validatePage(q.Page); err != nil {
		return err
	}
	return validateDifficulty(q.Difficulty)
}
