package handlers

import (
	"go.uber.org/zap"

	"questions-service/application/ports"
	"questions-service/application/queries"
	"questions-service/application/queries/bus"
	"questions-service/domain/core/entities"
)

// RegisterAll registers every query handler of the service on queryBus
func RegisterAll(queryBus *bus.QueryBus, content ports.ContentRepository, practice ports.PracticeRepository, logger *zap.Logger) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.ListQuestionsQuery{}, bus.Adapt[queries.ListQuestionsQuery, *ports.QuestionPage](NewListQuestionsHandler(content, logger))},
		{queries.GetQuestionQuery{}, bus.Adapt[queries.GetQuestionQuery, *entities.Question](NewGetQuestionHandler(content))},
		{queries.ListDomainsQuery{}, bus.Adapt[queries.ListDomainsQuery, []entities.DomainSummary](NewListDomainsHandler(content))},
		{queries.ListFlashcardsQuery{}, bus.Adapt[queries.ListFlashcardsQuery, *ports.FlashcardPage](NewListFlashcardsHandler(content, logger))},
		{queries.GetFlashcardQuery{}, bus.Adapt[queries.GetFlashcardQuery, *entities.Flashcard](NewGetFlashcardHandler(content))},
		{queries.ListCategoriesQuery{}, bus.Adapt[queries.ListCategoriesQuery, []entities.CategorySummary](NewListCategoriesHandler(content))},
		{queries.ListPracticeTestsQuery{}, bus.Adapt[queries.ListPracticeTestsQuery, []entities.PracticeTestSummary](NewListPracticeTestsHandler(practice))},
		{queries.GetSessionQuery{}, bus.Adapt[queries.GetSessionQuery, *queries.GetSessionResult](NewGetSessionHandler(practice))},
	}

	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return err
		}
	}
	return nil
}
