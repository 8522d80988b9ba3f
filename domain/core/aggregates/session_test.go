package aggregates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questions-service/domain/core/entities"
	"questions-service/domain/core/valueobjects"
	"questions-service/domain/events"
	pkgerrors "questions-service/pkg/errors"
)

var t0 = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func twoQuestionTest() *entities.PracticeTest {
	return &entities.PracticeTest{
		ID:               "t1",
		Name:             "Process domain drill",
		IsActive:         true,
		TimeLimitMinutes: 30,
		Questions: []entities.TestQuestion{
			{QuestionID: "q1", OrderIndex: 1},
			{QuestionID: "q2", OrderIndex: 2},
		},
	}
}

func TestStartSession(t *testing.T) {
	t.Run("creates in-progress session", func(t *testing.T) {
		s, err := StartSession(twoQuestionTest(), "u1", t0)
		require.NoError(t, err)

		assert.NotEmpty(t, s.ID())
		assert.Equal(t, valueobjects.SessionInProgress, s.Status())
		assert.Equal(t, 2, s.TotalQuestions())
		assert.Equal(t, 30, s.Snapshot().TimeLimitMinutes)

		evts := s.GetUncommittedEvents()
		require.Len(t, evts, 1)
		assert.Equal(t, events.TypeSessionStarted, evts[0].GetEventType())
	})

	t.Run("inactive test is not found", func(t *testing.T) {
		test := twoQuestionTest()
		test.IsActive = false
		_, err := StartSession(test, "u1", t0)
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("user is required", func(t *testing.T) {
		_, err := StartSession(twoQuestionTest(), " ", t0)
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestSession_GradeAnswer(t *testing.T) {
	s, err := StartSession(twoQuestionTest(), "u1", t0)
	require.NoError(t, err)
	key := entities.AnswerKey{QuestionID: "q1", CorrectAnswerIndex: 2, ChoiceCount: 4}

	for selected := 0; selected < 4; selected++ {
		a, err := s.GradeAnswer(key, selected, 12, t0)
		require.NoError(t, err)
		assert.Equal(t, selected == 2, a.IsCorrect, "selected %d", selected)
		assert.Equal(t, s.ID(), a.SessionID)
	}

	_, err = s.GradeAnswer(key, 4, 0, t0)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = s.GradeAnswer(key, 1, -1, t0)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSession_Complete(t *testing.T) {
	t.Run("scores the answer snapshot", func(t *testing.T) {
		s, _ := StartSession(twoQuestionTest(), "u1", t0)
		answers := []Answer{
			{SessionID: s.ID(), QuestionID: "a", IsCorrect: true},
			{SessionID: s.ID(), QuestionID: "b", IsCorrect: true},
			{SessionID: s.ID(), QuestionID: "c", IsCorrect: false},
			{SessionID: s.ID(), QuestionID: "d", IsCorrect: true},
			{SessionID: "other", QuestionID: "e", IsCorrect: false},
		}

		result, err := s.Complete(answers, t0.Add(10*time.Minute))
		require.NoError(t, err)

		assert.Equal(t, 3, result.CorrectAnswers)
		assert.Equal(t, 75, result.Score)
		assert.Equal(t, 4, result.AnsweredQuestions)
		assert.Equal(t, valueobjects.SessionCompleted, s.Status())

		snap := s.Snapshot()
		require.NotNil(t, snap.Score)
		assert.Equal(t, 75, *snap.Score)
		require.NotNil(t, snap.CompletedAt)
		assert.Equal(t, t0.Add(10*time.Minute), *snap.CompletedAt)
	})

	t.Run("zero answers scores zero", func(t *testing.T) {
		s, _ := StartSession(twoQuestionTest(), "u1", t0)
		result, err := s.Complete(nil, t0)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Score)
		assert.Equal(t, 0, result.CorrectAnswers)
		assert.Equal(t, 2, result.TotalQuestions)
	})

	t.Run("completed session is immutable", func(t *testing.T) {
		s, _ := StartSession(twoQuestionTest(), "u1", t0)
		_, err := s.Complete([]Answer{{SessionID: s.ID(), IsCorrect: true}}, t0)
		require.NoError(t, err)

		_, err = s.Complete(nil, t0.Add(time.Hour))
		assert.True(t, pkgerrors.IsConflict(err))
		assert.Equal(t, pkgerrors.CodeSessionNotInProgress, pkgerrors.GetAppError(err).Code)

		_, err = s.GradeAnswer(entities.AnswerKey{QuestionID: "q1", ChoiceCount: 4}, 0, 0, t0)
		assert.True(t, pkgerrors.IsConflict(err))

		result, ok := s.Result()
		require.True(t, ok)
		assert.Equal(t, 100, result.Score)
	})
}

func TestSession_SnapshotRoundTrip(t *testing.T) {
	s, _ := StartSession(twoQuestionTest(), "u1", t0)
	_, err := s.Complete(nil, t0)
	require.NoError(t, err)

	restored := ReconstructSession(s.Snapshot())
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	assert.Empty(t, restored.GetUncommittedEvents())

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":"COMPLETED"`)
	assert.Contains(t, string(raw), `"score":0`)
}
