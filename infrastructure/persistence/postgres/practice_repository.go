package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"questions-service/application/ports"
	"questions-service/domain/core/aggregates"
	"questions-service/domain/core/entities"
	"questions-service/domain/core/valueobjects"
	pkgerrors "questions-service/pkg/errors"
)

const sessionColumns = `
	id, user_id, test_id, status, total_questions, correct_answers, score,
	time_limit_minutes, started_at, completed_at`

const answerColumns = `
	session_id, question_id, selected_answer_index, is_correct, time_spent_seconds, answered_at`

// PracticeRepository implements ports.PracticeRepository on Postgres.
// Answer writes hold a shared lock on the session row and completion holds an
// exclusive one, so no answer lands after a session is completed.
type PracticeRepository struct {
	instrumented
}

// NewPracticeRepository creates a new PracticeRepository
func NewPracticeRepository(pool *pgxpool.Pool, logger *zap.Logger, metrics Metrics) *PracticeRepository {
	return &PracticeRepository{instrumented: newInstrumented(pool, logger, metrics)}
}

func scanSession(row rowScanner) (*aggregates.Session, error) {
	var (
		snap   aggregates.SessionSnapshot
		status string
	)
	if err := row.Scan(
		&snap.ID, &snap.UserID, &snap.TestID, &status, &snap.TotalQuestions, &snap.CorrectAnswers,
		&snap.Score, &snap.TimeLimitMinutes, &snap.StartedAt, &snap.CompletedAt,
	); err != nil {
		return nil, err
	}
	snap.Status = valueobjects.SessionStatus(status)
	return aggregates.ReconstructSession(snap), nil
}

func scanAnswers(rows pgx.Rows) ([]aggregates.Answer, error) {
	defer rows.Close()
	answers := make([]aggregates.Answer, 0)
	for rows.Next() {
		var a aggregates.Answer
		if err := rows.Scan(&a.SessionID, &a.QuestionID, &a.SelectedAnswerIndex, &a.IsCorrect, &a.TimeSpentSeconds, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// ListActiveTests implements ports.PracticeRepository
func (r *PracticeRepository) ListActiveTests(ctx context.Context) (_ []entities.PracticeTestSummary, err error) {
	ctx, done := r.observe(ctx, "ListActiveTests")
	defer func() { done(&err) }()

	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.name, COALESCE(t.description, ''), t.time_limit_minutes, COUNT(tq.question_id)
		FROM practice_tests t
		LEFT JOIN test_questions tq ON tq.test_id = t.id
		WHERE t.is_active
		GROUP BY t.id, t.name, t.description, t.time_limit_minutes
		ORDER BY t.name`)
	if err != nil {
		return nil, r.dbError("list tests", err)
	}
	defer rows.Close()

	tests := make([]entities.PracticeTestSummary, 0)
	for rows.Next() {
		var t entities.PracticeTestSummary
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.TimeLimitMinutes, &t.QuestionCount); err != nil {
			return nil, r.dbError("list tests", err)
		}
		tests = append(tests, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.dbError("list tests", err)
	}
	return tests, nil
}

// GetTest implements ports.PracticeRepository
func (r *PracticeRepository) GetTest(ctx context.Context, testID string) (_ *entities.PracticeTest, err error) {
	ctx, done := r.observe(ctx, "GetTest", attribute.String("test.id", testID))
	defer func() { done(&err) }()

	var t entities.PracticeTest
	err = r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), is_active, time_limit_minutes
		FROM practice_tests WHERE id = $1`, testID,
	).Scan(&t.ID, &t.Name, &t.Description, &t.IsActive, &t.TimeLimitMinutes)
	if isNoRows(err) {
		return nil, pkgerrors.NewNotFoundError("practice test")
	}
	if err != nil {
		return nil, r.dbError("get test", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT tq.order_index,`+questionColumns+questionFrom+`
		JOIN test_questions tq ON tq.question_id = q.id
		WHERE tq.test_id = $1
		ORDER BY tq.order_index ASC`, testID)
	if err != nil {
		return nil, r.dbError("get test questions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var order int
		q, err := scanQuestion(prefixed{row: rows, first: &order})
		if err != nil {
			return nil, r.dbError("get test questions", err)
		}
		t.Questions = append(t.Questions, entities.TestQuestion{QuestionID: q.ID, OrderIndex: order, Question: q})
	}
	if err := rows.Err(); err != nil {
		return nil, r.dbError("get test questions", err)
	}
	return &t, nil
}

// prefixed scans one leading column before handing the rest to a row scanner
type prefixed struct {
	row   rowScanner
	first interface{}
}

func (p prefixed) Scan(dest ...interface{}) error {
	return p.row.Scan(append([]interface{}{p.first}, dest...)...)
}

// GetAnswerKey implements ports.PracticeRepository
func (r *PracticeRepository) GetAnswerKey(ctx context.Context, testID, questionID string) (_ *entities.AnswerKey, err error) {
	ctx, done := r.observe(ctx, "GetAnswerKey", attribute.String("test.id", testID), attribute.String("question.id", questionID))
	defer func() { done(&err) }()

	var key entities.AnswerKey
	err = r.pool.QueryRow(ctx, `
		SELECT q.id, q.correct_answer_index, jsonb_array_length(q.choices)
		FROM test_questions tq
		JOIN questions q ON q.id = tq.question_id
		WHERE tq.test_id = $1 AND tq.question_id = $2`, testID, questionID,
	).Scan(&key.QuestionID, &key.CorrectAnswerIndex, &key.ChoiceCount)
	if isNoRows(err) {
		return nil, pkgerrors.NewNotFoundError("question")
	}
	if err != nil {
		return nil, r.dbError("get answer key", err)
	}
	return &key, nil
}

// CreateSession implements ports.PracticeRepository
func (r *PracticeRepository) CreateSession(ctx context.Context, session *aggregates.Session) (err error) {
	ctx, done := r.observe(ctx, "CreateSession", attribute.String("session.id", session.ID()))
	defer func() { done(&err) }()

	s := session.Snapshot()
	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_test_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.UserID, s.TestID, string(s.Status), s.TotalQuestions, s.CorrectAnswers,
		s.Score, s.TimeLimitMinutes, s.StartedAt, s.CompletedAt,
	)
	return r.dbError("create session", err)
}

// GetSession implements ports.PracticeRepository
func (r *PracticeRepository) GetSession(ctx context.Context, id string) (_ *aggregates.Session, err error) {
	ctx, done := r.observe(ctx, "GetSession", attribute.String("session.id", id))
	defer func() { done(&err) }()

	session, err := scanSession(r.pool.QueryRow(ctx, `SELECT`+sessionColumns+` FROM user_test_sessions WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, pkgerrors.NewNotFoundError("session")
	}
	if err != nil {
		return nil, r.dbError("get session", err)
	}
	return session, nil
}

// ListAnswers implements ports.PracticeRepository
func (r *PracticeRepository) ListAnswers(ctx context.Context, sessionID string) (_ []aggregates.Answer, err error) {
	ctx, done := r.observe(ctx, "ListAnswers", attribute.String("session.id", sessionID))
	defer func() { done(&err) }()

	rows, err := r.pool.Query(ctx, `SELECT`+answerColumns+`
		FROM user_answers WHERE session_id = $1
		ORDER BY answered_at, question_id`, sessionID)
	if err != nil {
		return nil, r.dbError("list answers", err)
	}
	answers, err := scanAnswers(rows)
	if err != nil {
		return nil, r.dbError("list answers", err)
	}
	return answers, nil
}

// SaveAnswer implements ports.PracticeRepository
func (r *PracticeRepository) SaveAnswer(ctx context.Context, a *aggregates.Answer) (err error) {
	ctx, done := r.observe(ctx, "SaveAnswer", attribute.String("session.id", a.SessionID), attribute.String("question.id", a.QuestionID))
	defer func() { done(&err) }()

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM user_test_sessions WHERE id = $1 FOR SHARE`, a.SessionID).Scan(&status)
		if isNoRows(err) {
			return pkgerrors.NewNotFoundError("session")
		}
		if err != nil {
			return err
		}
		if valueobjects.SessionStatus(status) != valueobjects.SessionInProgress {
			return pkgerrors.NewSessionStateError(a.SessionID, status)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_answers (`+answerColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (session_id, question_id) DO UPDATE SET
				selected_answer_index = EXCLUDED.selected_answer_index,
				is_correct = EXCLUDED.is_correct,
				time_spent_seconds = EXCLUDED.time_spent_seconds,
				answered_at = EXCLUDED.answered_at`,
			a.SessionID, a.QuestionID, a.SelectedAnswerIndex, a.IsCorrect, a.TimeSpentSeconds, a.AnsweredAt,
		)
		return err
	})
	return r.dbError("save answer", err)
}

// CompleteSession implements ports.PracticeRepository
func (r *PracticeRepository) CompleteSession(ctx context.Context, sessionID string, complete ports.SessionCompletion) (_ *aggregates.Session, _ aggregates.Result, err error) {
	ctx, done := r.observe(ctx, "CompleteSession", attribute.String("session.id", sessionID))
	defer func() { done(&err) }()

	var (
		session *aggregates.Session
		result  aggregates.Result
	)
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		session, err = scanSession(tx.QueryRow(ctx,
			`SELECT`+sessionColumns+` FROM user_test_sessions WHERE id = $1 FOR UPDATE`, sessionID))
		if isNoRows(err) {
			return pkgerrors.NewNotFoundError("session")
		}
		if err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `SELECT`+answerColumns+` FROM user_answers WHERE session_id = $1`, sessionID)
		if err != nil {
			return err
		}
		answers, err := scanAnswers(rows)
		if err != nil {
			return err
		}

		result, err = complete(session, answers)
		if err != nil {
			return err
		}

		s := session.Snapshot()
		tag, err := tx.Exec(ctx, `
			UPDATE user_test_sessions
			SET status = $2, correct_answers = $3, score = $4, completed_at = $5
			WHERE id = $1 AND status = 'IN_PROGRESS'`,
			s.ID, string(s.Status), s.CorrectAnswers, s.Score, s.CompletedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return pkgerrors.NewSessionStateError(sessionID, valueobjects.SessionCompleted.String())
		}
		return nil
	})
	if err != nil {
		return nil, aggregates.Result{}, r.dbError("complete session", err)
	}
	return session, result, nil
}

var _ ports.PracticeRepository = (*PracticeRepository)(nil)
