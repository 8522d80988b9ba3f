package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"questions-service/application/ports"
	"questions-service/domain/core/aggregates"
	"questions-service/domain/core/entities"
	"questions-service/domain/events"
	"questions-service/pkg/utils"
)

// PracticeMetrics receives practice session outcomes
type PracticeMetrics interface {
	RecordSessionStarted()
	RecordSessionCompleted(score int)
	RecordAnswer(correct bool)
}

type noopPracticeMetrics struct{}

func (noopPracticeMetrics) RecordSessionStarted()      {}
func (noopPracticeMetrics) RecordSessionCompleted(int) {}
func (noopPracticeMetrics) RecordAnswer(bool)          {}

// StartSessionInput is the payload of a session start
type StartSessionInput struct {
	TestID string `json:"testId" validate:"required,uuid"`
	UserID string `json:"userId" validate:"required,max=255"`
}

// StartSessionResult is a new session with the questions to answer. The
// questions never carry the answer key.
type StartSessionResult struct {
	Session   *aggregates.Session     `json:"session"`
	Questions []entities.QuestionView `json:"questions"`
}

// SubmitAnswerInput is the payload of an answer submission
type SubmitAnswerInput struct {
	SessionID           string `json:"-" validate:"required,uuid"`
	QuestionID          string `json:"questionId" validate:"required,uuid"`
	SelectedAnswerIndex *int   `json:"selectedAnswerIndex" validate:"required,min=0"`
	TimeSpentSeconds    int    `json:"timeSpentSeconds" validate:"min=0"`
}

// CompleteSessionResult is a completed session and its score
type CompleteSessionResult struct {
	Session *aggregates.Session `json:"session"`
	Result  aggregates.Result   `json:"result"`
}

// PracticeService runs practice sessions: start, answer and complete.
// Grading reads the answer key from the repository on every submission and
// never trusts the client.
type PracticeService struct {
	repo      ports.PracticeRepository
	publisher ports.EventPublisher
	metrics   PracticeMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewPracticeService creates a new practice service
func NewPracticeService(
	repo ports.PracticeRepository,
	publisher ports.EventPublisher,
	metrics PracticeMetrics,
	logger *zap.Logger,
) *PracticeService {
	if metrics == nil {
		metrics = noopPracticeMetrics{}
	}
	return &PracticeService{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source
func (s *PracticeService) WithClock(now func() time.Time) *PracticeService {
	s.now = now
	return s
}

// StartSession opens a session against an active test
func (s *PracticeService) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionResult, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	test, err := s.repo.GetTest(ctx, in.TestID)
	if err != nil {
		return nil, err
	}

	session, err := aggregates.StartSession(test, in.UserID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.metrics.RecordSessionStarted()
	s.logger.Info("Practice session started",
		zap.String("sessionID", session.ID()),
		zap.String("testID", test.ID),
		zap.String("userID", session.UserID()),
		zap.Int("totalQuestions", session.TotalQuestions()),
	)
	s.publish(ctx, session.GetUncommittedEvents()...)
	session.MarkEventsAsCommitted()

	return &StartSessionResult{
		Session:   session,
		Questions: test.Views(),
	}, nil
}

// SubmitAnswer grades and records an answer. Resubmitting a question
// overwrites the previous answer.
func (s *PracticeService) SubmitAnswer(ctx context.Context, in SubmitAnswerInput) (*aggregates.Answer, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	session, err := s.repo.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if err := session.EnsureInProgress(); err != nil {
		return nil, err
	}

	key, err := s.repo.GetAnswerKey(ctx, session.TestID(), in.QuestionID)
	if err != nil {
		return nil, err
	}

	answer, err := session.GradeAnswer(*key, *in.SelectedAnswerIndex, in.TimeSpentSeconds, s.now())
	if err != nil {
		return nil, err
	}

	// the repository re-checks the session status under a row lock
	if err := s.repo.SaveAnswer(ctx, answer); err != nil {
		return nil, err
	}

	s.metrics.RecordAnswer(answer.IsCorrect)
	s.logger.Debug("Answer recorded",
		zap.String("sessionID", answer.SessionID),
		zap.String("questionID", answer.QuestionID),
		zap.Bool("isCorrect", answer.IsCorrect),
	)
	return answer, nil
}

// CompleteSession scores a session and closes it. Only one caller can
// complete a given session; the others get a conflict.
func (s *PracticeService) CompleteSession(ctx context.Context, sessionID string) (*CompleteSessionResult, error) {
	if err := utils.ValidateVar(sessionID, "required,uuid", "sessionId"); err != nil {
		return nil, err
	}

	now := s.now()
	session, result, err := s.repo.CompleteSession(ctx, sessionID,
		func(session *aggregates.Session, answers []aggregates.Answer) (aggregates.Result, error) {
			return session.Complete(answers, now)
		})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSessionCompleted(result.Score)
	s.logger.Info("Practice session completed",
		zap.String("sessionID", session.ID()),
		zap.Int("score", result.Score),
		zap.Int("correctAnswers", result.CorrectAnswers),
		zap.Int("answeredQuestions", result.AnsweredQuestions),
		zap.Int("totalQuestions", result.TotalQuestions),
	)
	s.publish(ctx, session.GetUncommittedEvents()...)
	session.MarkEventsAsCommitted()

	return &CompleteSessionResult{Session: session, Result: result}, nil
}

// publish sends events without failing the request
func (s *PracticeService) publish(ctx context.Context, evts ...events.DomainEvent) {
	publishBestEffort(ctx, s.publisher, s.logger, evts...)
}

func publishBestEffort(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, evts ...events.DomainEvent) {
	if publisher == nil || len(evts) == 0 {
		return
	}
	if err := publisher.Publish(ctx, evts...); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.Int("count", len(evts)),
			zap.String("firstType", evts[0].GetEventType()),
			zap.Error(err),
		)
	}
}
