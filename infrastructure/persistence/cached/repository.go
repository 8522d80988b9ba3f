package cached

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"questions-service/application/ports"
	"questions-service/domain/core/entities"
	"questions-service/infrastructure/cache"
	"questions-service/pkg/common"
)

// Store is the combined read and write contract of the backing repository
type Store interface {
	ports.ContentRepository
	ports.QuestionStore
}

// Repository decorates a Store with read-through caching. Reads check the
// cache first and fill it on a miss; question writes invalidate every entry
// that could include the written row. Cache failures never reach callers,
// store failures always do.
type Repository struct {
	inner  Store
	cache  ports.Cache
	ttls   atomic.Pointer[cache.TTLs]
	logger *zap.Logger
}

// NewRepository creates a caching decorator for store
func NewRepository(inner Store, c ports.Cache, ttls cache.TTLs, logger *zap.Logger) *Repository {
	r := &Repository{
		inner:  inner,
		cache:  c,
		logger: logger,
	}
	r.SetTTLs(ttls)
	return r
}

// SetTTLs swaps the expirations used for new entries
func (r *Repository) SetTTLs(ttls cache.TTLs) {
	r.ttls.Store(&ttls)
}

// TTLs returns the expirations currently in use
func (r *Repository) TTLs() cache.TTLs {
	return *r.ttls.Load()
}

// ListQuestions implements ports.ContentRepository
func (r *Repository) ListQuestions(ctx context.Context, filter ports.QuestionFilter, page common.PageRequest) (*ports.QuestionPage, error) {
	if filter.IncludeInactive {
		return r.inner.ListQuestions(ctx, filter, page)
	}

	key := cache.QuestionListKey(filter, page)
	var cachedPage ports.QuestionPage
	if r.cache.Get(ctx, key, &cachedPage) {
		return &cachedPage, nil
	}

	result, err := r.inner.ListQuestions(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, result, r.TTLs().List)
	return result, nil
}

// GetQuestion implements ports.ContentRepository
func (r *Repository) GetQuestion(ctx context.Context, id string) (*entities.Question, error) {
	key := cache.QuestionKey(id)
	var q entities.Question
	if r.cache.Get(ctx, key, &q) {
		return &q, nil
	}

	result, err := r.inner.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, result, r.TTLs().Detail)
	return result, nil
}

// ListDomains implements ports.ContentRepository
func (r *Repository) ListDomains(ctx context.Context) ([]entities.DomainSummary, error) {
	var domains []entities.DomainSummary
	if r.cache.Get(ctx, cache.KeyDomains, &domains) {
		return domains, nil
	}

	result, err := r.inner.ListDomains(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, cache.KeyDomains, result, r.TTLs().Reference)
	return result, nil
}

// ListFlashcards implements ports.ContentRepository
func (r *Repository) ListFlashcards(ctx context.Context, filter ports.FlashcardFilter, page common.PageRequest) (*ports.FlashcardPage, error) {
	key := cache.FlashcardListKey(filter, page)
	var cachedPage ports.FlashcardPage
	if r.cache.Get(ctx, key, &cachedPage) {
		return &cachedPage, nil
	}

	result, err := r.inner.ListFlashcards(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, result, r.TTLs().List)
	return result, nil
}

// GetFlashcard implements ports.ContentRepository
func (r *Repository) GetFlashcard(ctx context.Context, id string) (*entities.Flashcard, error) {
	key := cache.FlashcardKey(id)
	var card entities.Flashcard
	if r.cache.Get(ctx, key, &card) {
		return &card, nil
	}

	result, err := r.inner.GetFlashcard(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, result, r.TTLs().Detail)
	return result, nil
}

// ListCategories implements ports.ContentRepository
func (r *Repository) ListCategories(ctx context.Context) ([]entities.CategorySummary, error) {
	var categories []entities.CategorySummary
	if r.cache.Get(ctx, cache.KeyCategories, &categories) {
		return categories, nil
	}

	result, err := r.inner.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, cache.KeyCategories, result, r.TTLs().Reference)
	return result, nil
}

// FindQuestion implements ports.QuestionStore. Admin reads are never cached.
func (r *Repository) FindQuestion(ctx context.Context, id string) (*entities.Question, error) {
	return r.inner.FindQuestion(ctx, id)
}

// CreateQuestion implements ports.QuestionStore
func (r *Repository) CreateQuestion(ctx context.Context, q *entities.Question) error {
	if err := r.inner.CreateQuestion(ctx, q); err != nil {
		return err
	}
	r.InvalidateQuestion(ctx, q.ID)
	return nil
}

// UpdateQuestion implements ports.QuestionStore
func (r *Repository) UpdateQuestion(ctx context.Context, q *entities.Question) error {
	if err := r.inner.UpdateQuestion(ctx, q); err != nil {
		return err
	}
	r.InvalidateQuestion(ctx, q.ID)
	return nil
}

// ToggleQuestion implements ports.QuestionStore
func (r *Repository) ToggleQuestion(ctx context.Context, id string, at time.Time) (*entities.Question, error) {
	q, err := r.inner.ToggleQuestion(ctx, id, at)
	if err != nil {
		return nil, err
	}
	r.InvalidateQuestion(ctx, id)
	return q, nil
}

// InvalidateQuestion drops the detail entry of a question, every question
// listing, and the domain counts.
func (r *Repository) InvalidateQuestion(ctx context.Context, id string) {
	r.cache.Delete(ctx, cache.QuestionKey(id))
	r.cache.DeletePrefix(ctx, cache.PrefixQuestionList)
	r.cache.DeletePrefix(ctx, cache.PrefixDomains)

	r.logger.Debug("Invalidated question cache entries", zap.String("question_id", id))
}
