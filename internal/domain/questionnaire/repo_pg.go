package questionnaire

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wellpath/intake/internal/platform/db"
)

// ErrNotFound is returned when a session or question does not exist.
var ErrNotFound = errors.New("not found")

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) InTx(ctx context.Context, fn func(context.Context) error) error {
	if db.TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	txCtx, tx, err := db.WithTx(ctx, r.pool)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(txCtx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const sessionCols = `id, user_id, status, case_id, conclusion, suggestions, max_questions, result, created_at, updated_at`

func (r *repoPG) CreateSession(ctx context.Context, q *Questionnaire) error {
	q.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO questionnaire (id, user_id, status, case_id, conclusion, suggestions, max_questions, result)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		q.ID, q.UserID, q.Status, q.CaseID, q.Conclusion, q.Suggestions, q.MaxQuestions, q.Result,
	)
	return err
}

func (r *repoPG) GetSession(ctx context.Context, id uuid.UUID) (*Questionnaire, error) {
	return scanSession(r.conn(ctx).QueryRow(ctx, `SELECT `+sessionCols+` FROM questionnaire WHERE id = $1`, id))
}

func (r *repoPG) UpdateSession(ctx context.Context, q *Questionnaire) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE questionnaire SET
			status=$2, case_id=$3, conclusion=$4, suggestions=$5, result=$6, updated_at=NOW()
		WHERE id = $1`,
		q.ID, q.Status, q.CaseID, q.Conclusion, q.Suggestions, q.Result,
	)
	return err
}

func (r *repoPG) ListSessionsByUser(ctx context.Context, userID string, limit, offset int) ([]*Questionnaire, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM questionnaire WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sessionCols+` FROM questionnaire WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []*Questionnaire
	for rows.Next() {
		s, err := scanSessionRows(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	return sessions, total, nil
}

const questionCols = `id, questionnaire_id, ordinal, prompt, type, options, placeholder, initialized, answer, answered_at, created_at`

func (r *repoPG) AddQuestion(ctx context.Context, question *Question) error {
	question.ID = uuid.New()
	question.QID = QuestionID(question.Ordinal)
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO questionnaire_question (id, questionnaire_id, ordinal, prompt, type, options, placeholder, initialized, answer, answered_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		question.ID, question.QuestionnaireID, question.Ordinal, question.Prompt, question.Type,
		question.Options, question.Placeholder, question.Initialized, question.Answer, question.AnsweredAt,
	)
	return err
}

func (r *repoPG) GetQuestion(ctx context.Context, questionnaireID uuid.UUID, ordinal int) (*Question, error) {
	return scanQuestion(r.conn(ctx).QueryRow(ctx,
		`SELECT `+questionCols+` FROM questionnaire_question WHERE questionnaire_id = $1 AND ordinal = $2`,
		questionnaireID, ordinal))
}

func (r *repoPG) ListQuestions(ctx context.Context, questionnaireID uuid.UUID) ([]*Question, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+questionCols+` FROM questionnaire_question WHERE questionnaire_id = $1 ORDER BY ordinal`,
		questionnaireID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*Question
	for rows.Next() {
		q, err := scanQuestionRows(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (r *repoPG) LatestQuestion(ctx context.Context, questionnaireID uuid.UUID) (*Question, error) {
	return scanQuestion(r.conn(ctx).QueryRow(ctx,
		`SELECT `+questionCols+` FROM questionnaire_question WHERE questionnaire_id = $1 ORDER BY ordinal DESC LIMIT 1`,
		questionnaireID))
}

func (r *repoPG) RecordAnswer(ctx context.Context, questionID uuid.UUID, answer []string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE questionnaire_question SET answer = $2, answered_at = NOW() WHERE id = $1`,
		questionID, answer)
	return err
}

func scanSession(row pgx.Row) (*Questionnaire, error) {
	var q Questionnaire
	err := row.Scan(
		&q.ID, &q.UserID, &q.Status, &q.CaseID, &q.Conclusion, &q.Suggestions,
		&q.MaxQuestions, &q.Result, &q.CreatedAt, &q.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func scanSessionRows(rows pgx.Rows) (*Questionnaire, error) {
	var q Questionnaire
	err := rows.Scan(
		&q.ID, &q.UserID, &q.Status, &q.CaseID, &q.Conclusion, &q.Suggestions,
		&q.MaxQuestions, &q.Result, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func scanQuestion(row pgx.Row) (*Question, error) {
	var q Question
	err := row.Scan(
		&q.ID, &q.QuestionnaireID, &q.Ordinal, &q.Prompt, &q.Type, &q.Options,
		&q.Placeholder, &q.Initialized, &q.Answer, &q.AnsweredAt, &q.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	q.QID = QuestionID(q.Ordinal)
	return &q, nil
}

func scanQuestionRows(rows pgx.Rows) (*Question, error) {
	var q Question
	err := rows.Scan(
		&q.ID, &q.QuestionnaireID, &q.Ordinal, &q.Prompt, &q.Type, &q.Options,
		&q.Placeholder, &q.Initialized, &q.Answer, &q.AnsweredAt, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	q.QID = QuestionID(q.Ordinal)
	return &q, nil
}
