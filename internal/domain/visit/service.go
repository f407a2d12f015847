package visit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cases verifies case ownership for visit creation and listing.
type Cases interface {
	OwnedBy(ctx context.Context, caseID uuid.UUID, userID string) error
}

type Service struct {
	repo  Repository
	cases Cases
}

func NewService(repo Repository, cases Cases) *Service {
	return &Service{repo: repo, cases: cases}
}

// Create records the visit for a completed questionnaire. One visit exists
// per questionnaire: a retried create returns the existing visit and reports
// addToCase false so the caller knows nothing new was attached.
func (s *Service) Create(ctx context.Context, userID string, caseID, questionnaireID uuid.UUID) (*Visit, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, false, fmt.Errorf("user_id is required")
	}
	if caseID == uuid.Nil {
		return nil, false, fmt.Errorf("case_id is required")
	}
	if questionnaireID == uuid.Nil {
		return nil, false, fmt.Errorf("questionnaire_id is required")
	}

	existing, err := s.repo.GetByQuestionnaire(ctx, questionnaireID)
	if err == nil {
		if existing.UserID != userID {
			return nil, false, fmt.Errorf("visit does not belong to user")
		}
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	if err := s.cases.OwnedBy(ctx, caseID, userID); err != nil {
		return nil, false, err
	}

	v := &Visit{
		UserID:          userID,
		CaseID:          caseID,
		QuestionnaireID: questionnaireID,
		VisitDate:       time.Now().UTC(),
		HasNewReport:    false,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, userID string) (*Visit, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("visit not found: %w", err)
	}
	if v.UserID != userID {
		return nil, fmt.Errorf("visit does not belong to user")
	}
	return v, nil
}

func (s *Service) ListByCase(ctx context.Context, caseID uuid.UUID, userID string, limit, offset int) ([]*Visit, int, error) {
	if err := s.cases.OwnedBy(ctx, caseID, userID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByCase(ctx, caseID, limit, offset)
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Visit, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// UpdateDate reschedules a visit.
func (s *Service) UpdateDate(ctx context.Context, id uuid.UUID, userID string, date time.Time) (*Visit, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("visit_date is required")
	}
	v, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	v.VisitDate = date.UTC()
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// SetConsultation attaches an external scheduler booking reference.
func (s *Service) SetConsultation(ctx context.Context, id uuid.UUID, userID, consultationID string) (*Visit, error) {
	consultationID = strings.TrimSpace(consultationID)
	if consultationID == "" {
		return nil, fmt.Errorf("consultation_id is required")
	}
	v, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	v.ConsultationID = &consultationID
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// SetReportStatus flags whether an unseen report is waiting on the visit.
func (s *Service) SetReportStatus(ctx context.Context, id uuid.UUID, userID string, hasNewReport bool) (*Visit, error) {
	v, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if v.HasNewReport == hasNewReport {
		return v, nil
	}
	v.HasNewReport = hasNewReport
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}
