package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"questions-service/application/ports"
	"questions-service/domain/core/aggregates"
	"questions-service/domain/core/entities"
	"questions-service/pkg/common"
	pkgerrors "questions-service/pkg/errors"
)

// Store is an in-process implementation of every repository port. A single
// mutex plays the part of the database's row locks, so the guarded answer and
// completion paths behave as they do in Postgres.
type Store struct {
	mu         sync.RWMutex
	domains    map[string]entities.Domain
	questions  map[string]entities.Question
	flashcards map[string]entities.Flashcard
	tests      map[string]entities.PracticeTest
	sessions   map[string]aggregates.SessionSnapshot
	answers    map[string]map[string]aggregates.Answer
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		domains:    make(map[string]entities.Domain),
		questions:  make(map[string]entities.Question),
		flashcards: make(map[string]entities.Flashcard),
		tests:      make(map[string]entities.PracticeTest),
		sessions:   make(map[string]aggregates.SessionSnapshot),
		answers:    make(map[string]map[string]aggregates.Answer),
	}
}

// PutDomain inserts or replaces a domain
func (s *Store) PutDomain(d entities.Domain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domains[d.ID] = d
}

// PutQuestion inserts or replaces a question
func (s *Store) PutQuestion(q entities.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.Domain = nil
	s.questions[q.ID] = q
}

// PutFlashcard inserts or replaces a flashcard
func (s *Store) PutFlashcard(f entities.Flashcard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Domain = nil
	s.flashcards[f.ID] = f
}

// PutTest inserts or replaces a practice test. Question pointers are ignored.
func (s *Store) PutTest(t entities.PracticeTest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qs := make([]entities.TestQuestion, len(t.Questions))
	for i, tq := range t.Questions {
		qs[i] = entities.TestQuestion{QuestionID: tq.QuestionID, OrderIndex: tq.OrderIndex}
	}
	t.Questions = qs
	s.tests[t.ID] = t
}

// Ping implements ports.HealthChecker
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ListQuestions implements ports.ContentRepository
func (s *Store) ListQuestions(ctx context.Context, filter ports.QuestionFilter, page common.PageRequest) (*ports.QuestionPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]entities.Question, 0)
	for _, q := range s.questions {
		if !q.IsActive && !filter.IncludeInactive {
			continue
		}
		if filter.DomainID != "" && q.DomainID != filter.DomainID {
			continue
		}
		if filter.Difficulty != "" && q.Difficulty != filter.Difficulty {
			continue
		}
		matched = append(matched, s.withDomain(q))
	}
	sort.Slice(matched, func(i, j int) bool {
		return newerFirst(matched[i].CreatedAt.UnixNano(), matched[j].CreatedAt.UnixNano(), matched[i].ID, matched[j].ID)
	})

	return &ports.QuestionPage{
		Questions:  window(matched, page),
		Pagination: common.NewPagination(page, len(matched)),
	}, nil
}

// GetQuestion implements ports.ContentRepository
func (s *Store) GetQuestion(ctx context.Context, id string) (*entities.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok || !q.IsActive {
		return nil, pkgerrors.NewNotFoundError("question")
	}
	q = s.withDomain(q)
	return &q, nil
}

// ListDomains implements ports.ContentRepository
func (s *Store) ListDomains(ctx context.Context) ([]entities.DomainSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, q := range s.questions {
		if q.IsActive {
			counts[q.DomainID]++
		}
	}

	out := make([]entities.DomainSummary, 0, len(s.domains))
	for _, d := range s.domains {
		out = append(out, entities.DomainSummary{ID: d.ID, Name: d.Name, Color: d.Color, Count: counts[d.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListFlashcards implements ports.ContentRepository
func (s *Store) ListFlashcards(ctx context.Context, filter ports.FlashcardFilter, page common.PageRequest) (*ports.FlashcardPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]entities.Flashcard, 0)
	for _, f := range s.flashcards {
		if !f.IsActive {
			continue
		}
		if filter.DomainID != "" && f.DomainID != filter.DomainID {
			continue
		}
		if filter.Category != "" && f.Category != filter.Category {
			continue
		}
		if filter.Difficulty != "" && f.Difficulty != filter.Difficulty {
			continue
		}
		f.Domain = s.domainRef(f.DomainID)
		matched = append(matched, f)
	}
	sort.Slice(matched, func(i, j int) bool {
		return newerFirst(matched[i].CreatedAt.UnixNano(), matched[j].CreatedAt.UnixNano(), matched[i].ID, matched[j].ID)
	})

	return &ports.FlashcardPage{
		Flashcards: window(matched, page),
		Pagination: common.NewPagination(page, len(matched)),
	}, nil
}

// GetFlashcard implements ports.ContentRepository
func (s *Store) GetFlashcard(ctx context.Context, id string) (*entities.Flashcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.flashcards[id]
	if !ok || !f.IsActive {
		return nil, pkgerrors.NewNotFoundError("flashcard")
	}
	f.Domain = s.domainRef(f.DomainID)
	return &f, nil
}

// ListCategories implements ports.ContentRepository
func (s *Store) ListCategories(ctx context.Context) ([]entities.CategorySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, f := range s.flashcards {
		if f.IsActive {
			counts[f.Category]++
		}
	}
	out := make([]entities.CategorySummary, 0, len(counts))
	for name, n := range counts {
		out = append(out, entities.CategorySummary{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FindQuestion implements ports.QuestionStore
func (s *Store) FindQuestion(ctx context.Context, id string) (*entities.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("question")
	}
	q = s.withDomain(q)
	return &q, nil
}

// CreateQuestion implements ports.QuestionStore
func (s *Store) CreateQuestion(ctx context.Context, q *entities.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.domains[q.DomainID]; !ok {
		return unknownDomain(q.DomainID)
	}
	if _, exists := s.questions[q.ID]; exists {
		return pkgerrors.NewConflictError("question already exists")
	}
	stored := *q
	stored.Domain = nil
	s.questions[q.ID] = stored
	return nil
}

// UpdateQuestion implements ports.QuestionStore
func (s *Store) UpdateQuestion(ctx context.Context, q *entities.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[q.ID]; !ok {
		return pkgerrors.NewNotFoundError("question")
	}
	if _, ok := s.domains[q.DomainID]; !ok {
		return unknownDomain(q.DomainID)
	}
	stored := *q
	stored.Domain = nil
	s.questions[q.ID] = stored
	return nil
}

// ToggleQuestion implements ports.QuestionStore
func (s *Store) ToggleQuestion(ctx context.Context, id string, at time.Time) (*entities.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("question")
	}
	q.ToggleActive(at)
	s.questions[id] = q
	q = s.withDomain(q)
	return &q, nil
}

func (s *Store) withDomain(q entities.Question) entities.Question {
	q.Domain = s.domainRef(q.DomainID)
	return q
}

func (s *Store) domainRef(id string) *entities.DomainRef {
	d, ok := s.domains[id]
	if !ok {
		return nil
	}
	return &entities.DomainRef{ID: d.ID, Name: d.Name, Color: d.Color}
}

func unknownDomain(id string) error {
	return pkgerrors.NewValidationError("domain " + id + " does not exist").
		WithCode(pkgerrors.CodeUnknownDomain)
}

func newerFirst(ti, tj int64, idi, idj string) bool {
	if ti != tj {
		return ti > tj
	}
	return idi > idj
}

func window[T any](items []T, page common.PageRequest) []T {
	start := page.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

var (
	_ ports.ContentRepository  = (*Store)(nil)
	_ ports.QuestionStore      = (*Store)(nil)
	_ ports.PracticeRepository = (*Store)(nil)
	_ ports.HealthChecker      = (*Store)(nil)
)
