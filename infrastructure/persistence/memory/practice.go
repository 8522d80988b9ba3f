package memory

import (
	"context"
	"sort"

	"questions-service/application/ports"
	"questions-service/domain/core/aggregates"
	"questions-service/domain/core/entities"
	"questions-service/domain/core/valueobjects"
	pkgerrors "questions-service/pkg/errors"
)

// ListActiveTests implements ports.PracticeRepository
func (s *Store) ListActiveTests(ctx context.Context) ([]entities.PracticeTestSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.PracticeTestSummary, 0, len(s.tests))
	for _, t := range s.tests {
		if !t.IsActive {
			continue
		}
		out = append(out, entities.PracticeTestSummary{
			ID:               t.ID,
			Name:             t.Name,
			Description:      t.Description,
			TimeLimitMinutes: t.TimeLimitMinutes,
			QuestionCount:    len(t.Questions),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetTest implements ports.PracticeRepository
func (s *Store) GetTest(ctx context.Context, testID string) (*entities.PracticeTest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tests[testID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("practice test")
	}

	qs := make([]entities.TestQuestion, 0, len(t.Questions))
	for _, tq := range t.Questions {
		q, ok := s.questions[tq.QuestionID]
		if !ok {
			continue
		}
		q = s.withDomain(q)
		qs = append(qs, entities.TestQuestion{QuestionID: tq.QuestionID, OrderIndex: tq.OrderIndex, Question: &q})
	}
	t.Questions = qs
	return &t, nil
}

// GetAnswerKey implements ports.PracticeRepository
func (s *Store) GetAnswerKey(ctx context.Context, testID, questionID string) (*entities.AnswerKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tests[testID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("practice test")
	}
	for _, tq := range t.Questions {
		if tq.QuestionID != questionID {
			continue
		}
		q, ok := s.questions[questionID]
		if !ok {
			break
		}
		return &entities.AnswerKey{
			QuestionID:         q.ID,
			CorrectAnswerIndex: q.CorrectAnswerIndex,
			ChoiceCount:        len(q.Choices),
		}, nil
	}
	return nil, pkgerrors.NewNotFoundError("question")
}

// CreateSession implements ports.PracticeRepository
func (s *Store) CreateSession(ctx context.Context, session *aggregates.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID()]; exists {
		return pkgerrors.NewConflictError("session already exists")
	}
	s.sessions[session.ID()] = session.Snapshot()
	return nil
}

// GetSession implements ports.PracticeRepository
func (s *Store) GetSession(ctx context.Context, id string) (*aggregates.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.sessions[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("session")
	}
	return aggregates.ReconstructSession(snap), nil
}

// ListAnswers implements ports.PracticeRepository
func (s *Store) ListAnswers(ctx context.Context, sessionID string) ([]aggregates.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answersOf(sessionID), nil
}

// SaveAnswer implements ports.PracticeRepository
func (s *Store) SaveAnswer(ctx context.Context, answer *aggregates.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.sessions[answer.SessionID]
	if !ok {
		return pkgerrors.NewNotFoundError("session")
	}
	if snap.Status != valueobjects.SessionInProgress {
		return pkgerrors.NewSessionStateError(snap.ID, snap.Status.String())
	}

	byQuestion, ok := s.answers[answer.SessionID]
	if !ok {
		byQuestion = make(map[string]aggregates.Answer)
		s.answers[answer.SessionID] = byQuestion
	}
	byQuestion[answer.QuestionID] = *answer
	return nil
}

// CompleteSession implements ports.PracticeRepository
func (s *Store) CompleteSession(ctx context.Context, sessionID string, complete ports.SessionCompletion) (*aggregates.Session, aggregates.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.sessions[sessionID]
	if !ok {
		return nil, aggregates.Result{}, pkgerrors.NewNotFoundError("session")
	}

	session := aggregates.ReconstructSession(snap)
	result, err := complete(session, s.answersOf(sessionID))
	if err != nil {
		return nil, aggregates.Result{}, err
	}

	// Mirrors the conditional UPDATE ... WHERE status = 'IN_PROGRESS'
	if s.sessions[sessionID].Status != valueobjects.SessionInProgress {
		return nil, aggregates.Result{}, pkgerrors.NewSessionStateError(sessionID, s.sessions[sessionID].Status.String())
	}
	s.sessions[sessionID] = session.Snapshot()
	return session, result, nil
}

func (s *Store) answersOf(sessionID string) []aggregates.Answer {
	out := make([]aggregates.Answer, 0, len(s.answers[sessionID]))
	for _, a := range s.answers[sessionID] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AnsweredAt.Equal(out[j].AnsweredAt) {
			return out[i].AnsweredAt.Before(out[j].AnsweredAt)
		}
		return out[i].QuestionID < out[j].QuestionID
	})
	return out
}
