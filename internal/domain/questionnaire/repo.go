package questionnaire

import (
	"context"

	"github.com/google/uuid"
)

// Repository abstracts session and question storage.
type Repository interface {
	// InTx runs fn with every repository call inside one transaction.
	InTx(ctx context.Context, fn func(context.Context) error) error

	CreateSession(ctx context.Context, q *Questionnaire) error
	GetSession(ctx context.Context, id uuid.UUID) (*Questionnaire, error)
	UpdateSession(ctx context.Context, q *Questionnaire) error
	ListSessionsByUser(ctx context.Context, userID string, limit, offset int) ([]*Questionnaire, int, error)

	AddQuestion(ctx context.Context, question *Question) error
	GetQuestion(ctx context.Context, questionnaireID uuid.UUID, ordinal int) (*Question, error)
	ListQuestions(ctx context.Context, questionnaireID uuid.UUID) ([]*Question, error)
	LatestQuestion(ctx context.Context, questionnaireID uuid.UUID) (*Question, error)
	RecordAnswer(ctx context.Context, questionID uuid.UUID, answer []string) error
}
