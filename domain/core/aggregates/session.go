package aggregates

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"questions-service/domain/core/entities"
	"questions-service/domain/core/valueobjects"
	"questions-service/domain/events"
	pkgerrors "questions-service/pkg/errors"
)

// Session is the aggregate root for one attempt at a practice test.
// It is created IN_PROGRESS and moves to COMPLETED exactly once; a completed
// session never changes again.
type Session struct {
	id               string
	userID           string
	testID           string
	status           valueobjects.SessionStatus
	totalQuestions   int
	correctAnswers   *int
	score            *int
	timeLimitMinutes int
	startedAt        time.Time
	completedAt      *time.Time

	events []events.DomainEvent
}

// SessionSnapshot is the persisted and serialized form of a Session
type SessionSnapshot struct {
	ID               string                     `json:"id"`
	UserID           string                     `json:"userId"`
	TestID           string                     `json:"testId"`
	Status           valueobjects.SessionStatus `json:"status"`
	TotalQuestions   int                        `json:"totalQuestions"`
	CorrectAnswers   *int                       `json:"correctAnswers"`
	Score            *int                       `json:"score"`
	TimeLimitMinutes int                        `json:"timeLimitMinutes"`
	StartedAt        time.Time                  `json:"startedAt"`
	CompletedAt      *time.Time                 `json:"completedAt"`
}

// Result is the outcome of completing a session
type Result struct {
	Score             int `json:"score"`
	CorrectAnswers    int `json:"correctAnswers"`
	TotalQuestions    int `json:"totalQuestions"`
	AnsweredQuestions int `json:"answeredQuestions"`
}

// StartSession opens a session for userID against test
func StartSession(test *entities.PracticeTest, userID string, now time.Time) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userId is required")
	}
	if test == nil || !test.IsActive {
		return nil, pkgerrors.NewNotFoundError("practice test")
	}

	s := &Session{
		id:               uuid.NewString(),
		userID:           userID,
		testID:           test.ID,
		status:           valueobjects.SessionInProgress,
		totalQuestions:   len(test.Questions),
		timeLimitMinutes: test.TimeLimitMinutes,
		startedAt:        now,
	}
	s.addEvent(events.NewSessionStarted(s.id, userID, test.ID, s.totalQuestions, now))
	return s, nil
}

// ReconstructSession rebuilds a session from storage without raising events
func ReconstructSession(snap SessionSnapshot) *Session {
	return &Session{
		id:               snap.ID,
		userID:           snap.UserID,
		testID:           snap.TestID,
		status:           snap.Status,
		totalQuestions:   snap.TotalQuestions,
		correctAnswers:   snap.CorrectAnswers,
		score:            snap.Score,
		timeLimitMinutes: snap.TimeLimitMinutes,
		startedAt:        snap.StartedAt,
		completedAt:      snap.CompletedAt,
	}
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		ID:               s.id,
		UserID:           s.userID,
		TestID:           s.testID,
		Status:           s.status,
		TotalQuestions:   s.totalQuestions,
		CorrectAnswers:   copyInt(s.correctAnswers),
		Score:            copyInt(s.score),
		TimeLimitMinutes: s.timeLimitMinutes,
		StartedAt:        s.startedAt,
		CompletedAt:      copyTime(s.completedAt),
	}
}

// MarshalJSON implements json.Marshaler
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

func (s *Session) ID() string                         { return s.id }
func (s *Session) UserID() string                     { return s.userID }
func (s *Session) TestID() string                     { return s.testID }
func (s *Session) Status() valueobjects.SessionStatus { return s.status }
func (s *Session) TotalQuestions() int                { return s.totalQuestions }
func (s *Session) StartedAt() time.Time               { return s.startedAt }

// EnsureInProgress rejects changes to a session that has been completed
func (s *Session) EnsureInProgress() error {
	if s.status != valueobjects.SessionInProgress {
		return pkgerrors.NewSessionStateError(s.id, s.status.String())
	}
	return nil
}

// GradeAnswer builds the answer for a submission. Correctness comes from the
// answer key, never from the client.
func (s *Session) GradeAnswer(key entities.AnswerKey, selected, timeSpentSeconds int, now time.Time) (*Answer, error) {
	if err := s.EnsureInProgress(); err != nil {
		return nil, err
	}
	if err := valueobjects.ValidateIndex(selected, key.ChoiceCount, "selectedAnswerIndex"); err != nil {
		return nil, err
	}
	if timeSpentSeconds < 0 {
		return nil, pkgerrors.NewValidationError("timeSpentSeconds cannot be negative")
	}

	return &Answer{
		SessionID:           s.id,
		QuestionID:          key.QuestionID,
		SelectedAnswerIndex: selected,
		IsCorrect:           selected == key.CorrectAnswerIndex,
		TimeSpentSeconds:    timeSpentSeconds,
		AnsweredAt:          now,
	}, nil
}

// Complete scores the session from the given answer snapshot and moves it to
// COMPLETED. Only answers belonging to this session are counted.
func (s *Session) Complete(answers []Answer, now time.Time) (Result, error) {
	if !s.status.CanTransitionTo(valueobjects.SessionCompleted) {
		return Result{}, pkgerrors.NewSessionStateError(s.id, s.status.String())
	}

	answered, correct := 0, 0
	for _, a := range answers {
		if a.SessionID != s.id {
			continue
		}
		answered++
		if a.IsCorrect {
			correct++
		}
	}
	score := valueobjects.ComputeScore(correct, answered)

	s.status = valueobjects.SessionCompleted
	s.correctAnswers = &correct
	s.score = &score
	completedAt := now
	s.completedAt = &completedAt

	result := Result{
		Score:             score,
		CorrectAnswers:    correct,
		TotalQuestions:    s.totalQuestions,
		AnsweredQuestions: answered,
	}
	s.addEvent(events.NewSessionCompleted(s.id, s.userID, s.testID, score, correct, answered, s.totalQuestions, now))
	return result, nil
}

// Result returns the stored outcome of a completed session
func (s *Session) Result() (Result, bool) {
	if s.status != valueobjects.SessionCompleted || s.score == nil {
		return Result{}, false
	}
	r := Result{Score: *s.score, TotalQuestions: s.totalQuestions}
	if s.correctAnswers != nil {
		r.CorrectAnswers = *s.correctAnswers
	}
	return r, true
}

// GetUncommittedEvents returns events raised since the last commit
func (s *Session) GetUncommittedEvents() []events.DomainEvent {
	return s.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (s *Session) MarkEventsAsCommitted() {
	s.events = nil
}

func (s *Session) addEvent(event events.DomainEvent) {
	s.events = append(s.events, event)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
