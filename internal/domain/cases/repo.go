package cases

import (
	"context"

	"github.com/google/uuid"
)

// Repository abstracts case storage.
type Repository interface {
	// InTx runs fn with every repository call inside one transaction.
	InTx(ctx context.Context, fn func(context.Context) error) error

	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	GetByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) (*Case, error)
	Update(ctx context.Context, c *Case) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Case, int, error)
}
