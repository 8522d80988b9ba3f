package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"questions-service/domain/core/entities"
	"questions-service/domain/core/valueobjects"
	"questions-service/domain/events"
	"questions-service/infrastructure/persistence/memory"
	pkgerrors "questions-service/pkg/errors"
)

var fixedNow = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evts...)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.GetEventType()
	}
	return out
}

type recordingMetrics struct {
	mu        sync.Mutex
	started   int
	completed []int
	answers   []bool
}

func (m *recordingMetrics) RecordSessionStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
}

func (m *recordingMetrics) RecordSessionCompleted(score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, score)
}

func (m *recordingMetrics) RecordAnswer(correct bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, correct)
}

type practiceFixture struct {
	store     *memory.Store
	service   *PracticeService
	publisher *recordingPublisher
	metrics   *recordingMetrics
	test      *entities.PracticeTest
}

func newPracticeFixture(t *testing.T) practiceFixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedDemo(fixedNow)

	test, err := store.GetTest(context.Background(), memory.DemoTestID)
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	metrics := &recordingMetrics{}
	service := NewPracticeService(store, publisher, metrics, zap.NewNop()).
		WithClock(func() time.Time { return fixedNow })

	return practiceFixture{store: store, service: service, publisher: publisher, metrics: metrics, test: test}
}

func intPtr(v int) *int { return &v }

// wrongIndex picks a valid index that is not the answer
func wrongIndex(q *entities.Question) int {
	return (q.CorrectAnswerIndex + 1) % len(q.Choices)
}

func TestPracticeService_StartSession(t *testing.T) {
	ctx := context.Background()
	f := newPracticeFixture(t)

	result, err := f.service.StartSession(ctx, StartSessionInput{TestID: memory.DemoTestID, UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, valueobjects.SessionInProgress, result.Session.Status())
	assert.Equal(t, 4, result.Session.TotalQuestions())
	require.Len(t, result.Questions, 4)
	for i, q := range result.Questions {
		assert.Equal(t, i+1, q.OrderIndex)
	}

	body, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "correctAnswerIndex")
	assert.NotContains(t, string(body), "explanation")

	assert.Equal(t, []string{events.TypeSessionStarted}, f.publisher.types())
	assert.Equal(t, 1, f.metrics.started)
}

func TestPracticeService_StartSession_Errors(t *testing.T) {
	ctx := context.Background()
	f := newPracticeFixture(t)

	_, err := f.service.StartSession(ctx, StartSessionInput{TestID: memory.DemoTestID})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = f.service.StartSession(ctx, StartSessionInput{TestID: "not-a-uuid", UserID: "u"})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = f.service.StartSession(ctx, StartSessionInput{TestID: "00000000-0000-4000-8000-000000000000", UserID: "u"})
	assert.True(t, pkgerrors.IsNotFound(err))

	inactive := *f.test
	inactive.ID = "00000000-0000-4000-8000-000000000001"
	inactive.IsActive = false
	f.store.PutTest(inactive)
	_, err = f.service.StartSession(ctx, StartSessionInput{TestID: inactive.ID, UserID: "u"})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPracticeService_HalfCorrectScoresFifty(t *testing.T) {
	ctx := context.Background()
	f := newPracticeFixture(t)

	started, err := f.service.StartSession(ctx, StartSessionInput{TestID: memory.DemoTestID, UserID: "user-1"})
	require.NoError(t, err)
	sessionID := started.Session.ID()

	first := f.test.Questions[0].Question
	second := f.test.Questions[1].Question

	answer, err := f.service.SubmitAnswer(ctx, SubmitAnswerInput{
		SessionID: sessionID, QuestionID: first.ID, SelectedAnswerIndex: intPtr(first.CorrectAnswerIndex), TimeSpentSeconds: 12,
	})
	require.NoError(t, err)
	assert.True(t, answer.IsCorrect)

	answer, err = f.service.SubmitAnswer(ctx, SubmitAnswerInput{
		SessionID: sessionID, QuestionID: second.ID, SelectedAnswerIndex: intPtr(wrongIndex(second)),
	})
	require.NoError(t, err)
	assert.False(t, answer.IsCorrect)

	completed, err := f.service.CompleteSession(ctx, sessionID)
	require.NoError(t, err)

	assert.Equal(t, 50, completed.Result.Score)
	assert.Equal(t, 1, completed.Result.CorrectAnswers)
	assert.Equal(t, 2, completed.Result.AnsweredQuestions)
	assert.Equal(t, 4, completed.Result.TotalQuestions)
	assert.Equal(t, valueobjects.SessionCompleted, completed.Session.Status())

	assert.Equal(t, []string{events.TypeSessionStarted, events.TypeSessionCompleted}, f.publisher.types())
	assert.Equal(t, []int{50}, f.metrics.completed)
	assert.Equal(t, []bool{true, false}, f.metrics.answers)
}

func TestPracticeService_ThreeOfFourScoresSeventyFive(t *testing.T) {
	ctx := context.Background()
	f := newPracticeFixture(t)

	started, err := f.service.StartSession(ctx, StartSessionInput{TestID: memory.DemoTestID, UserID: "user-1"})
	require.NoError(t, err)

	for i, tq := range f.test.Questions {
		selected := tq.Question.CorrectAnswerIndex
		if i == 3 {
			selected = wrongIndex(tq.Question)
		}
		_, err := f.service.SubmitAnswer(ctx, SubmitAnswerInput{
			SessionID: started.Session.ID(), QuestionID: tq.QuestionID, SelectedAnswerIndex: intPtr(selected),
		})
		require.NoError(t, err)
	}

	completed, err := f.service.CompleteSession(ctx, started.Session.ID())
	require.NoError(t, err)
	assert.Equal(t, 75, completed.Result.Score)
	assert.Equal(t, 3, completed.Result.CorrectAnswers)
}

func TestPracticeService_CompleteWithoutAnswersScoresZero(t *testing.T) {
	ctx := context.Background()
	f := newPracticeFixture(t)

	started, err := f.service.StartSession(ctx, StartSessionInput{TestID: memory.DemoTestID, UserID: "user-1"})
	require.NoError(t, err)

	completed, err := f.service.CompleteSession(ctx, started.Session.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, completed.Result.Score)
	assert.Equal(t, 0, completed.Result.AnsweredQuestions)
}

func TestPracticeService_ResubmitOverwrites(t *testing.T) {
	ctx := context.Background()
	f := newPracticeFixture(t)

	started, err := f.service.StartSession(ctx, StartSessionInput{TestID: memory.DemoTestID, UserID: "user-1"})
	require.NoError(t, err)
	q := f.test.Questions[0].Question

	_, err = f.service.SubmitAnswer(ctx, SubmitAnswerInput{SessionID: started.Session.ID(), QuestionID: q.ID, SelectedAnswerIndex: intPtr(wrongIndex(q))})
	require.NoError(t, err)
	_, err = f.service.SubmitAnswer(ctx, SubmitAnswerInput{SessionID: started.Session.ID(), QuestionID: q.ID, SelectedAnswerIndex: intPtr(q.CorrectAnswerIndex)})
	require.NoError(t, err)

	completed, err := f.service.CompleteSession(ctx, started.Session.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, completed.Result.AnsweredQuestions)
	assert.Equal(t, 100, completed.Result.Score)
}

func TestPracticeService_SubmitAnswer_Errors(t *testing.T) {
	ctx := context.Background()
	f := newPracticeFixture(t)

	started, err := f.service.StartSession(ctx, StartSessionInput{TestID: memory.DemoTestID, UserID: "user-1"})
	require.NoError(t, err)
	sessionID := started.Session.ID()
	q := f.test.Questions[0].Question

	t.Run("missing index", func(t *testing.T) {
		_, err := f.service.SubmitAnswer(ctx, SubmitAnswerInput{SessionID: sessionID, QuestionID: q.ID})
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("negative index", func(t *testing.T) {
		_, err := f.service.SubmitAnswer(ctx, SubmitAnswerInput{SessionID: sessionID, QuestionID: q.ID, SelectedAnswerIndex: intPtr(-1)})
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("index past the choices", func(t *testing.T) {
		_, err := f.service.SubmitAnswer(ctx, SubmitAnswerInput{SessionID: sessionID, QuestionID: q.ID, SelectedAnswerIndex: intPtr(len(q.Choices))})
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeInvalidAnswerIndex, pkgerrors.GetAppError(err).Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := f.service.SubmitAnswer(ctx, SubmitAnswerInput{SessionID: "00000000-0000-4000-8000-000000000000", QuestionID: q.ID, SelectedAnswerIndex: intPtr(0)})
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("question outside the test", func(t *testing.T) {
		_, err := f.service.SubmitAnswer(ctx, SubmitAnswerInput{SessionID: sessionID, QuestionID: "00000000-0000-4000-8000-000000000002", SelectedAnswerIndex: intPtr(0)})
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("completed session", func(t *testing.T) {
		_, err := f.service.CompleteSession(ctx, sessionID)
		require.NoError(t, err)

		_, err = f.service.SubmitAnswer(ctx, SubmitAnswerInput{SessionID: sessionID, QuestionID: q.ID, SelectedAnswerIndex: intPtr(0)})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsConflict(err))
		assert.Equal(t, pkgerrors.CodeSessionNotInProgress, pkgerrors.GetAppError(err).Code)

		answers, err := f.store.ListAnswers(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, answers)
	})
}

func TestPracticeService_ConcurrentCompletion(t *testing.T) {
	ctx := context.Background()
	f := newPracticeFixture(t)

	started, err := f.service.StartSession(ctx, StartSessionInput{TestID: memory.DemoTestID, UserID: "user-1"})
	require.NoError(t, err)
	q := f.test.Questions[0].Question
	_, err = f.service.SubmitAnswer(ctx, SubmitAnswerInput{SessionID: started.Session.ID(), QuestionID: q.ID, SelectedAnswerIndex: intPtr(q.CorrectAnswerIndex)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CompleteSession(ctx, started.Session.ID())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, pkgerrors.CodeSessionNotInProgress, pkgerrors.GetAppError(err).Code)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, []int{100}, f.metrics.completed)
}

func TestPracticeService_CompleteSession_Errors(t *testing.T) {
	ctx := context.Background()
	f := newPracticeFixture(t)

	_, err := f.service.CompleteSession(ctx, "nope")
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = f.service.CompleteSession(ctx, "00000000-0000-4000-8000-000000000000")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPracticeService_PublishFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	f := newPracticeFixture(t)
	f.publisher.err = errors.New("eventbridge unavailable")

	_, err := f.service.StartSession(ctx, StartSessionInput{TestID: memory.DemoTestID, UserID: "user-1"})
	assert.NoError(t, err)
}
