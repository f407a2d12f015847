package visit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wellpath/intake/internal/platform/db"
)

// ErrNotFound is returned when a visit does not exist.
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

const visitCols = `id, user_id, case_id, questionnaire_id, visit_date, consultation_id, has_new_report, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visit (id, user_id, case_id, questionnaire_id, visit_date, consultation_id, has_new_report)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		v.ID, v.UserID, v.CaseID, v.QuestionnaireID, v.VisitDate, v.ConsultationID, v.HasNewReport,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return scanVisit(r.conn(ctx).QueryRow(ctx, `SELECT `+visitCols+` FROM visit WHERE id = $1`, id))
}

func (r *repoPG) GetByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) (*Visit, error) {
	return scanVisit(r.conn(ctx).QueryRow(ctx,
		`SELECT `+visitCols+` FROM visit WHERE questionnaire_id = $1`, questionnaireID))
}

func (r *repoPG) Update(ctx context.Context, v *Visit) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE visit SET visit_date=$2, consultation_id=$3, has_new_report=$4, updated_at=NOW()
		WHERE id = $1`,
		v.ID, v.VisitDate, v.ConsultationID, v.HasNewReport,
	)
	return err
}

func (r *repoPG) ListByCase(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM visit WHERE case_id = $1`, caseID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+visitCols+` FROM visit WHERE case_id = $1 ORDER BY visit_date DESC LIMIT $2 OFFSET $3`,
		caseID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectVisits(rows, total)
}

func (r *repoPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Visit, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM visit WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+visitCols+` FROM visit WHERE user_id = $1 ORDER BY visit_date DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectVisits(rows, total)
}

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.UserID, &v.CaseID, &v.QuestionnaireID, &v.VisitDate,
		&v.ConsultationID, &v.HasNewReport, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVisits(rows pgx.Rows, total int) ([]*Visit, int, error) {
	var visits []*Visit
	for rows.Next() {
		var v Visit
		err := rows.Scan(&v.ID, &v.UserID, &v.CaseID, &v.QuestionnaireID, &v.VisitDate,
			&v.ConsultationID, &v.HasNewReport, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		visits = append(visits, &v)
	}
	return visits, total, nil
}
