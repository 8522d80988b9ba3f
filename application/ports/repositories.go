package ports

import (
	"context"
	"time"

	"questions-service/domain/core/aggregates"
	"questions-service/domain/core/entities"
	"questions-service/domain/core/valueobjects"
	"questions-service/domain/events"
	"questions-service/pkg/common"
)

// QuestionFilter narrows a question listing. Zero values mean "no filter".
type QuestionFilter struct {
	DomainID   string
	Difficulty valueobjects.Difficulty
	// IncludeInactive is only set by the admin surface; such reads bypass the cache.
	IncludeInactive bool
}

// FlashcardFilter narrows a flashcard listing. Zero values mean "no filter".
type FlashcardFilter struct {
	DomainID   string
	Category   string
	Difficulty valueobjects.Difficulty
}

// QuestionPage is one page of a question listing
type QuestionPage struct {
	Questions  []entities.Question `json:"questions"`
	Pagination common.Pagination   `json:"pagination"`
}

// FlashcardPage is one page of a flashcard listing
type FlashcardPage struct {
	Flashcards []entities.Flashcard `json:"flashcards"`
	Pagination common.Pagination    `json:"pagination"`
}

// ContentRepository defines read access to study content.
// Unless a filter says otherwise only active rows are returned, and a missing
// or inactive row is reported as not found.
type ContentRepository interface {
	// ListQuestions returns a page of questions ordered newest first
	ListQuestions(ctx context.Context, filter QuestionFilter, page common.PageRequest) (*QuestionPage, error)

	// GetQuestion retrieves an active question by its ID
	GetQuestion(ctx context.Context, id string) (*entities.Question, error)

	// ListDomains returns every domain with its active question count
	ListDomains(ctx context.Context) ([]entities.DomainSummary, error)

	// ListFlashcards returns a page of flashcards ordered newest first
	ListFlashcards(ctx context.Context, filter FlashcardFilter, page common.PageRequest) (*FlashcardPage, error)

	// GetFlashcard retrieves an active flashcard by its ID
	GetFlashcard(ctx context.Context, id string) (*entities.Flashcard, error)

	// ListCategories groups active flashcards by category
	ListCategories(ctx context.Context) ([]entities.CategorySummary, error)
}

// QuestionStore defines the admin write path for questions
type QuestionStore interface {
	// FindQuestion retrieves a question regardless of its activation state
	FindQuestion(ctx context.Context, id string) (*entities.Question, error)

	// CreateQuestion inserts a new question
	CreateQuestion(ctx context.Context, q *entities.Question) error

	// UpdateQuestion overwrites every mutable field of an existing question
	UpdateQuestion(ctx context.Context, q *entities.Question) error

	// ToggleQuestion atomically flips the activation flag and returns the row
	ToggleQuestion(ctx context.Context, id string, at time.Time) (*entities.Question, error)
}

// SessionCompletion scores a locked session against its answer snapshot
type SessionCompletion func(session *aggregates.Session, answers []aggregates.Answer) (aggregates.Result, error)

// PracticeRepository defines persistence for practice tests and sessions
type PracticeRepository interface {
	// ListActiveTests returns the tests a user can start
	ListActiveTests(ctx context.Context) ([]entities.PracticeTestSummary, error)

	// GetTest loads a test with its questions in order
	GetTest(ctx context.Context, testID string) (*entities.PracticeTest, error)

	// GetAnswerKey reads grading data for a question of a test, bypassing any cache
	GetAnswerKey(ctx context.Context, testID, questionID string) (*entities.AnswerKey, error)

	// CreateSession persists a new session
	CreateSession(ctx context.Context, session *aggregates.Session) error

	// GetSession retrieves a session by its ID
	GetSession(ctx context.Context, id string) (*aggregates.Session, error)

	// ListAnswers returns the current answers of a session
	ListAnswers(ctx context.Context, sessionID string) ([]aggregates.Answer, error)

	// SaveAnswer upserts an answer on (sessionID, questionID). It fails with a
	// conflict when the session is no longer in progress at write time.
	SaveAnswer(ctx context.Context, answer *aggregates.Answer) error

	// CompleteSession locks the session, passes it and its answers to complete,
	// and persists the transition only if the session was still in progress.
	CompleteSession(ctx context.Context, sessionID string, complete SessionCompletion) (*aggregates.Session, aggregates.Result, error)
}

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends events to subscribers
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// Cache is a fail-open key/value cache. Implementations never return errors;
// an unavailable store behaves like an empty one.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found
	Get(ctx context.Context, key string, dest interface{}) bool

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)

	// Delete removes keys
	Delete(ctx context.Context, keys ...string)

	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string)
}
