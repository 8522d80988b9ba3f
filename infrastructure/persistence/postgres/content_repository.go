package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"questions-service/application/ports"
	"questions-service/domain/core/entities"
	"questions-service/domain/core/valueobjects"
	"questions-service/pkg/common"
	pkgerrors "questions-service/pkg/errors"
)

const questionColumns = `
	q.id, q.domain_id, d.name, d.color, q.question_text, q.scenario, q.choices,
	q.correct_answer_index, q.explanation, q.difficulty, q.is_active, q.created_by,
	q.created_at, q.updated_at`

const questionFrom = ` FROM questions q JOIN domains d ON d.id = q.domain_id`

const flashcardColumns = `
	f.id, f.domain_id, d.name, d.color, f.category, f.difficulty, f.front, f.back,
	f.is_active, f.created_at`

const flashcardFrom = ` FROM flash_cards f JOIN domains d ON d.id = f.domain_id`

// ContentRepository implements ports.ContentRepository and ports.QuestionStore on Postgres
type ContentRepository struct {
	instrumented
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(pool *pgxpool.Pool, logger *zap.Logger, metrics Metrics) *ContentRepository {
	return &ContentRepository{instrumented: newInstrumented(pool, logger, metrics)}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuestion(row rowScanner) (*entities.Question, error) {
	var (
		q          entities.Question
		ref        entities.DomainRef
		choices    []byte
		difficulty string
	)
	if err := row.Scan(
		&q.ID, &q.DomainID, &ref.Name, &ref.Color, &q.QuestionText, &q.Scenario, &choices,
		&q.CorrectAnswerIndex, &q.Explanation, &difficulty, &q.IsActive, &q.CreatedBy,
		&q.CreatedAt, &q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(choices, &q.Choices); err != nil {
		return nil, fmt.Errorf("question %s has malformed choices: %w", q.ID, err)
	}
	ref.ID = q.DomainID
	q.Domain = &ref
	q.Difficulty = valueobjects.Difficulty(difficulty)
	return &q, nil
}

func scanFlashcard(row rowScanner) (*entities.Flashcard, error) {
	var (
		f          entities.Flashcard
		ref        entities.DomainRef
		difficulty string
	)
	if err := row.Scan(
		&f.ID, &f.DomainID, &ref.Name, &ref.Color, &f.Category, &difficulty, &f.Front, &f.Back,
		&f.IsActive, &f.CreatedAt,
	); err != nil {
		return nil, err
	}
	ref.ID = f.DomainID
	f.Domain = &ref
	f.Difficulty = valueobjects.Difficulty(difficulty)
	return &f, nil
}

// ListQuestions implements ports.ContentRepository. The page and the total
// count are read concurrently.
func (r *ContentRepository) ListQuestions(ctx context.Context, filter ports.QuestionFilter, page common.PageRequest) (_ *ports.QuestionPage, err error) {
	ctx, done := r.observe(ctx, "ListQuestions",
		attribute.String("filter.domain", filter.DomainID),
		attribute.String("filter.difficulty", string(filter.Difficulty)),
		attribute.Int("page", page.Page),
	)
	defer func() { done(&err) }()

	var w where
	if !filter.IncludeInactive {
		w.addRaw("q.is_active")
	}
	if filter.DomainID != "" {
		w.add("q.domain_id = $%d", filter.DomainID)
	}
	if filter.Difficulty != "" {
		w.add("q.difficulty = $%d", string(filter.Difficulty))
	}

	countSQL := `SELECT COUNT(*)` + questionFrom + w.sql()
	countArgs := append([]interface{}(nil), w.args...)
	listSQL := `SELECT` + questionColumns + questionFrom + w.sql() +
		` ORDER BY q.created_at DESC, q.id DESC LIMIT ` + w.next(page.Limit) + ` OFFSET ` + w.next(page.Offset())

	var (
		total     int
		questions = make([]entities.Question, 0, page.Limit)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.pool.QueryRow(gctx, countSQL, countArgs...).Scan(&total)
	})
	g.Go(func() error {
		rows, err := r.pool.Query(gctx, listSQL, w.args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			q, err := scanQuestion(rows)
			if err != nil {
				return err
			}
			questions = append(questions, *q)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, r.dbError("list questions", err)
	}

	return &ports.QuestionPage{
		Questions:  questions,
		Pagination: common.NewPagination(page, total),
	}, nil
}

// GetQuestion implements ports.ContentRepository
func (r *ContentRepository) GetQuestion(ctx context.Context, id string) (_ *entities.Question, err error) {
	ctx, done := r.observe(ctx, "GetQuestion", attribute.String("question.id", id))
	defer func() { done(&err) }()

	row := r.pool.QueryRow(ctx, `SELECT`+questionColumns+questionFrom+` WHERE q.id = $1 AND q.is_active`, id)
	q, err := scanQuestion(row)
	if isNoRows(err) {
		return nil, pkgerrors.NewNotFoundError("question")
	}
	if err != nil {
		return nil, r.dbError("get question", err)
	}
	return q, nil
}

// ListDomains implements ports.ContentRepository
func (r *ContentRepository) ListDomains(ctx context.Context) (_ []entities.DomainSummary, err error) {
	ctx, done := r.observe(ctx, "ListDomains")
	defer func() { done(&err) }()

	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.name, d.color, COUNT(q.id)
		FROM domains d
		LEFT JOIN questions q ON q.domain_id = d.id AND q.is_active
		GROUP BY d.id, d.name, d.color
		ORDER BY d.name`)
	if err != nil {
		return nil, r.dbError("list domains", err)
	}
	defer rows.Close()

	domains := make([]entities.DomainSummary, 0)
	for rows.Next() {
		var d entities.DomainSummary
		if err := rows.Scan(&d.ID, &d.Name, &d.Color, &d.Count); err != nil {
			return nil, r.dbError("list domains", err)
		}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, r.dbError("list domains", err)
	}
	return domains, nil
}

// ListFlashcards implements ports.ContentRepository
func (r *ContentRepository) ListFlashcards(ctx context.Context, filter ports.FlashcardFilter, page common.PageRequest) (_ *ports.FlashcardPage, err error) {
	ctx, done := r.observe(ctx, "ListFlashcards",
		attribute.String("filter.domain", filter.DomainID),
		attribute.String("filter.category", filter.Category),
		attribute.Int("page", page.Page),
	)
	defer func() { done(&err) }()

	var w where
	w.addRaw("f.is_active")
	if filter.DomainID != "" {
		w.add("f.domain_id = $%d", filter.DomainID)
	}
	if filter.Category != "" {
		w.add("f.category = $%d", filter.Category)
	}
	if filter.Difficulty != "" {
		w.add("f.difficulty = $%d", string(filter.Difficulty))
	}

	countSQL := `SELECT COUNT(*)` + flashcardFrom + w.sql()
	countArgs := append([]interface{}(nil), w.args...)
	listSQL := `SELECT` + flashcardColumns + flashcardFrom + w.sql() +
		` ORDER BY f.created_at DESC, f.id DESC LIMIT ` + w.next(page.Limit) + ` OFFSET ` + w.next(page.Offset())

	var (
		total int
		cards = make([]entities.Flashcard, 0, page.Limit)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.pool.QueryRow(gctx, countSQL, countArgs...).Scan(&total)
	})
	g.Go(func() error {
		rows, err := r.pool.Query(gctx, listSQL, w.args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			f, err := scanFlashcard(rows)
			if err != nil {
				return err
			}
			cards = append(cards, *f)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, r.dbError("list flashcards", err)
	}

	return &ports.FlashcardPage{
		Flashcards: cards,
		Pagination: common.NewPagination(page, total),
	}, nil
}

// GetFlashcard implements ports.ContentRepository
func (r *ContentRepository) GetFlashcard(ctx context.Context, id string) (_ *entities.Flashcard, err error) {
	ctx, done := r.observe(ctx, "GetFlashcard", attribute.String("flashcard.id", id))
	defer func() { done(&err) }()

	row := r.pool.QueryRow(ctx, `SELECT`+flashcardColumns+flashcardFrom+` WHERE f.id = $1 AND f.is_active`, id)
	f, err := scanFlashcard(row)
	if isNoRows(err) {
		return nil, pkgerrors.NewNotFoundError("flashcard")
	}
	if err != nil {
		return nil, r.dbError("get flashcard", err)
	}
	return f, nil
}

// ListCategories implements ports.ContentRepository
func (r *ContentRepository) ListCategories(ctx context.Context) (_ []entities.CategorySummary, err error) {
	ctx, done := r.observe(ctx, "ListCategories")
	defer func() { done(&err) }()

	rows, err := r.pool.Query(ctx, `
		SELECT category, COUNT(*)
		FROM flash_cards
		WHERE is_active
		GROUP BY category
		ORDER BY category`)
	if err != nil {
		return nil, r.dbError("list categories", err)
	}
	defer rows.Close()

	categories := make([]entities.CategorySummary, 0)
	for rows.Next() {
		var c entities.CategorySummary
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, r.dbError("list categories", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.dbError("list categories", err)
	}
	return categories, nil
}

var (
	_ ports.ContentRepository = (*ContentRepository)(nil)
	_ ports.QuestionStore     = (*ContentRepository)(nil)
)
