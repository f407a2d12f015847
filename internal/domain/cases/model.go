package cases

import (
	"time"

	"github.com/google/uuid"
)

// Case statuses.
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Case maps to the cases table. A case groups the visits that belong to one
// health concern; it is created lazily mid-questionnaire and keyed by the
// originating session so a retried create cannot duplicate it.
type Case struct {
	ID              uuid.UUID `db:"id" json:"case_id"`
	UserID          string    `db:"user_id" json:"user_id"`
	QuestionnaireID uuid.UUID `db:"questionnaire_id" json:"questionnaire_id"`
	Title           string    `db:"title" json:"title"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
