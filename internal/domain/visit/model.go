package visit

import (
	"time"

	"github.com/google/uuid"
)

// Visit maps to the visit table. One visit is one completed questionnaire
// occurrence attached to a case; the questionnaire reference is unique so a
// retried create resolves to the existing row.
type Visit struct {
	ID              uuid.UUID  `db:"id" json:"visitId"`
	UserID          string     `db:"user_id" json:"userId"`
	CaseID          uuid.UUID  `db:"case_id" json:"caseId"`
	QuestionnaireID uuid.UUID  `db:"questionnaire_id" json:"questionnaireId"`
	VisitDate       time.Time  `db:"visit_date" json:"visitDate"`
	ConsultationID  *string    `db:"consultation_id" json:"consultationId,omitempty"`
	HasNewReport    bool       `db:"has_new_report" json:"hasNewReport"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
