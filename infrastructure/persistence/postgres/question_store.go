package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"

	"questions-service/domain/core/entities"
	pkgerrors "questions-service/pkg/errors"
)

// FindQuestion implements ports.QuestionStore
func (r *ContentRepository) FindQuestion(ctx context.Context, id string) (_ *entities.Question, err error) {
	ctx, done := r.observe(ctx, "FindQuestion", attribute.String("question.id", id))
	defer func() { done(&err) }()

	row := r.pool.QueryRow(ctx, `SELECT`+questionColumns+questionFrom+` WHERE q.id = $1`, id)
	q, err := scanQuestion(row)
	if isNoRows(err) {
		return nil, pkgerrors.NewNotFoundError("question")
	}
	if err != nil {
		return nil, r.dbError("find question", err)
	}
	return q, nil
}

// CreateQuestion implements ports.QuestionStore
func (r *ContentRepository) CreateQuestion(ctx context.Context, q *entities.Question) (err error) {
	ctx, done := r.observe(ctx, "CreateQuestion", attribute.String("question.id", q.ID))
	defer func() { done(&err) }()

	choices, err := json.Marshal(q.Choices)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode choices")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO questions (
			id, domain_id, question_text, scenario, choices, correct_answer_index,
			explanation, difficulty, is_active, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10, $11, $12)`,
		q.ID, q.DomainID, q.QuestionText, q.Scenario, string(choices), q.CorrectAnswerIndex,
		q.Explanation, string(q.Difficulty), q.IsActive, q.CreatedBy, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return r.writeError("create question", q.DomainID, err)
	}
	return nil
}

// UpdateQuestion implements ports.QuestionStore
func (r *ContentRepository) UpdateQuestion(ctx context.Context, q *entities.Question) (err error) {
	ctx, done := r.observe(ctx, "UpdateQuestion", attribute.String("question.id", q.ID))
	defer func() { done(&err) }()

	choices, err := json.Marshal(q.Choices)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode choices")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE questions SET
			domain_id = $2, question_text = $3, scenario = $4, choices = $5::jsonb,
			correct_answer_index = $6, explanation = $7, difficulty = $8, is_active = $9,
			updated_at = $10
		WHERE id = $1`,
		q.ID, q.DomainID, q.QuestionText, q.Scenario, string(choices),
		q.CorrectAnswerIndex, q.Explanation, string(q.Difficulty), q.IsActive, q.UpdatedAt,
	)
	if err != nil {
		return r.writeError("update question", q.DomainID, err)
	}
	if tag.RowsAffected() == 0 {
		return pkgerrors.NewNotFoundError("question")
	}
	return nil
}

// ToggleQuestion implements ports.QuestionStore. The flip happens inside a
// single UPDATE so concurrent toggles serialize on the row lock.
func (r *ContentRepository) ToggleQuestion(ctx context.Context, id string, at time.Time) (_ *entities.Question, err error) {
	ctx, done := r.observe(ctx, "ToggleQuestion", attribute.String("question.id", id))
	defer func() { done(&err) }()

	row := r.pool.QueryRow(ctx, `
		UPDATE questions q SET is_active = NOT q.is_active, updated_at = $2
		FROM domains d
		WHERE q.id = $1 AND d.id = q.domain_id
		RETURNING`+questionColumns, id, at)
	q, err := scanQuestion(row)
	if isNoRows(err) {
		return nil, pkgerrors.NewNotFoundError("question")
	}
	if err != nil {
		return nil, r.dbError("toggle question", err)
	}
	return q, nil
}

// writeError reports a missing domain as a validation failure
func (r *ContentRepository) writeError(operation, domainID string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return pkgerrors.NewValidationError("domain " + domainID + " does not exist").
			WithCode(pkgerrors.CodeUnknownDomain)
	}
	return r.dbError(operation, err)
}
