package handlers

import (
	"context"

	"golang.org/x/sync/errgroup"

	"questions-service/application/ports"
	"questions-service/application/queries"
	"questions-service/domain/core/entities"
)

// ListPracticeTestsHandler handles practice test listing queries
type ListPracticeTestsHandler struct {
	repo ports.PracticeRepository
}

// NewListPracticeTestsHandler creates a new ListPracticeTestsHandler
func NewListPracticeTestsHandler(repo ports.PracticeRepository) *ListPracticeTestsHandler {
	return &ListPracticeTestsHandler{repo: repo}
}

// Handle executes the listing
func (h *ListPracticeTestsHandler) Handle(ctx context.Context, _ queries.ListPracticeTestsQuery) ([]entities.PracticeTestSummary, error) {
	return h.repo.ListActiveTests(ctx)
}

// GetSessionHandler handles session detail queries
type GetSessionHandler struct {
	repo ports.PracticeRepository
}

// NewGetSessionHandler creates a new GetSessionHandler
func NewGetSessionHandler(repo ports.PracticeRepository) *GetSessionHandler {
	return &GetSessionHandler{repo: repo}
}

// Handle loads the session and its answers concurrently
func (h *GetSessionHandler) Handle(ctx context.Context, query queries.GetSessionQuery) (*queries.GetSessionResult, error) {
	var result queries.GetSessionResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		session, err := h.repo.GetSession(gctx, query.SessionID)
		result.Session = session
		return err
	})
	g.Go(func() error {
		answers, err := h.repo.ListAnswers(gctx, query.SessionID)
		result.Answers = answers
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if outcome, ok := result.Session.Result(); ok {
		outcome.AnsweredQuestions = len(result.Answers)
		result.Result = &outcome
	}
	return &result, nil
}
