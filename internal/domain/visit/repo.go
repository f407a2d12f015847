package visit

import (
	"context"

	"github.com/google/uuid"
)

// Repository abstracts visit storage.
type Repository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	GetByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) (*Visit, error)
	Update(ctx context.Context, v *Visit) error
	ListByCase(ctx context.Context, caseID uuid.UUID, limit, offset int) ([]*Visit, int, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Visit, int, error)
}
