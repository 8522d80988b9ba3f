package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"questions-service/application/ports"
	"questions-service/application/queries"
	"questions-service/domain/core/aggregates"
	"questions-service/domain/core/entities"
	"questions-service/domain/core/valueobjects"
	"questions-service/infrastructure/persistence/memory"
	"questions-service/pkg/common"
	pkgerrors "questions-service/pkg/errors"
)

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) ListQuestions(ctx context.Context, filter ports.QuestionFilter, page common.PageRequest) (*ports.QuestionPage, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.QuestionPage), args.Error(1)
}

func (m *MockContentRepository) GetQuestion(ctx context.Context, id string) (*entities.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Question), args.Error(1)
}

func (m *MockContentRepository) ListDomains(ctx context.Context) ([]entities.DomainSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.DomainSummary), args.Error(1)
}

func (m *MockContentRepository) ListFlashcards(ctx context.Context, filter ports.FlashcardFilter, page common.PageRequest) (*ports.FlashcardPage, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.FlashcardPage), args.Error(1)
}

func (m *MockContentRepository) GetFlashcard(ctx context.Context, id string) (*entities.Flashcard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Flashcard), args.Error(1)
}

func (m *MockContentRepository) ListCategories(ctx context.Context) ([]entities.CategorySummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.CategorySummary), args.Error(1)
}

func TestListQuestionsHandler_Handle_MapsFilter(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(MockContentRepository)
	page := common.PageRequest{Page: 2, Limit: 10}
	query := queries.ListQuestionsQuery{DomainID: "people", Difficulty: valueobjects.DifficultyHard, Page: page}

	expected := &ports.QuestionPage{Questions: []entities.Question{}, Pagination: common.NewPagination(page, 0)}
	repo.On("ListQuestions", ctx, ports.QuestionFilter{DomainID: "people", Difficulty: valueobjects.DifficultyHard}, page).
		Return(expected, nil)

	handler := NewListQuestionsHandler(repo, zap.NewNop())

	// Act
	result, err := handler.Handle(ctx, query)

	// Assert
	require.NoError(t, err)
	assert.Same(t, expected, result)
	repo.AssertExpectations(t)
}

func TestGetQuestionHandler_Handle_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContentRepository)
	repo.On("GetQuestion", ctx, "6b3c1f4e-0000-4000-8000-000000000000").Return(nil, pkgerrors.NewNotFoundError("question"))

	_, err := NewGetQuestionHandler(repo).Handle(ctx, queries.GetQuestionQuery{QuestionID: "6b3c1f4e-0000-4000-8000-000000000000"})

	assert.True(t, pkgerrors.IsNotFound(err))
	repo.AssertExpectations(t)
}

func TestListFlashcardsHandler_Handle_MapsFilter(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContentRepository)
	page := common.PageRequest{Page: 1, Limit: 20}
	filter := ports.FlashcardFilter{Category: "Earned Value"}

	repo.On("ListFlashcards", ctx, filter, page).
		Return(&ports.FlashcardPage{Flashcards: []entities.Flashcard{{ID: "f1"}}, Pagination: common.NewPagination(page, 1)}, nil)

	result, err := NewListFlashcardsHandler(repo, zap.NewNop()).Handle(ctx, queries.ListFlashcardsQuery{Category: "Earned Value", Page: page})

	require.NoError(t, err)
	assert.Len(t, result.Flashcards, 1)
	repo.AssertExpectations(t)
}

func TestQueries_Validate(t *testing.T) {
	tests := []struct {
		name  string
		query interface{ Validate() error }
		valid bool
	}{
		{"list with defaults", queries.ListQuestionsQuery{Page: common.PageRequest{Page: 1, Limit: 20}}, true},
		{"list without page", queries.ListQuestionsQuery{}, false},
		{"list with bad difficulty", queries.ListQuestionsQuery{Page: common.PageRequest{Page: 1, Limit: 20}, Difficulty: "EXTREME"}, false},
		{"question id not uuid", queries.GetQuestionQuery{QuestionID: "abc"}, false},
		{"question id uuid", queries.GetQuestionQuery{QuestionID: "6b3c1f4e-0000-4000-8000-000000000000"}, true},
		{"flashcard id empty", queries.GetFlashcardQuery{}, false},
		{"session id uuid", queries.GetSessionQuery{SessionID: "6b3c1f4e-0000-4000-8000-000000000000"}, true},
		{"domains", queries.ListDomainsQuery{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, pkgerrors.IsValidation(err))
			}
		})
	}
}

func TestGetSessionHandler_Handle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.SeedDemo(now)

	test, err := store.GetTest(ctx, memory.DemoTestID)
	require.NoError(t, err)
	session, err := aggregates.StartSession(test, "user-1", now)
	require.NoError(t, err)
	require.NoError(t, store.CreateSession(ctx, session))

	handler := NewGetSessionHandler(store)

	t.Run("in progress has no result", func(t *testing.T) {
		result, err := handler.Handle(ctx, queries.GetSessionQuery{SessionID: session.ID()})
		require.NoError(t, err)
		assert.Equal(t, valueobjects.SessionInProgress, result.Session.Status())
		assert.Empty(t, result.Answers)
		assert.Nil(t, result.Result)
	})

	t.Run("completed carries the result", func(t *testing.T) {
		key, err := store.GetAnswerKey(ctx, memory.DemoTestID, test.Questions[0].QuestionID)
		require.NoError(t, err)
		answer, err := session.GradeAnswer(*key, key.CorrectAnswerIndex, 3, now)
		require.NoError(t, err)
		require.NoError(t, store.SaveAnswer(ctx, answer))

		_, _, err = store.CompleteSession(ctx, session.ID(), func(s *aggregates.Session, answers []aggregates.Answer) (aggregates.Result, error) {
			return s.Complete(answers, now.Add(time.Minute))
		})
		require.NoError(t, err)

		result, err := handler.Handle(ctx, queries.GetSessionQuery{SessionID: session.ID()})
		require.NoError(t, err)
		require.NotNil(t, result.Result)
		assert.Equal(t, 100, result.Result.Score)
		assert.Equal(t, 1, result.Result.AnsweredQuestions)
		assert.Equal(t, 4, result.Result.TotalQuestions)
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := handler.Handle(ctx, queries.GetSessionQuery{SessionID: "6b3c1f4e-0000-4000-8000-000000000000"})
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}
