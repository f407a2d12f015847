package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Intake is the slice of the questionnaire service the case workflow needs:
// deriving a title from the answered intake and linking the created case back
// to the session.
type Intake interface {
	IntakeTitle(ctx context.Context, questionnaireID uuid.UUID, userID string) (string, error)
	AttachCase(ctx context.Context, questionnaireID uuid.UUID, userID string, caseID uuid.UUID) error
}

type Service struct {
	repo   Repository
	intake Intake
}

func NewService(repo Repository, intake Intake) *Service {
	return &Service{repo: repo, intake: intake}
}

var validStatuses = map[string]bool{
	StatusActive: true,
	StatusClosed: true,
}

// Create opens a case for a questionnaire session. At most one case exists
// per session: a repeat call returns the existing case unchanged, so clients
// may safely retry after a lost response.
func (s *Service) Create(ctx context.Context, userID string, questionnaireID uuid.UUID) (*Case, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, false, fmt.Errorf("user_id is required")
	}
	if questionnaireID == uuid.Nil {
		return nil, false, fmt.Errorf("questionnaire_id is required")
	}

	existing, err := s.repo.GetByQuestionnaire(ctx, questionnaireID)
	if err == nil {
		if existing.UserID != userID {
			return nil, false, fmt.Errorf("case does not belong to user")
		}
		// Re-link in case an earlier create lost the attach step; a no-op
		// when the session already points at this case.
		if err := s.intake.AttachCase(ctx, questionnaireID, userID, existing.ID); err != nil {
			return nil, false, fmt.Errorf("linking case to questionnaire: %w", err)
		}
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	title, err := s.intake.IntakeTitle(ctx, questionnaireID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("deriving case title: %w", err)
	}

	c := &Case{
		UserID:          userID,
		QuestionnaireID: questionnaireID,
		Title:           title,
		Status:          StatusActive,
	}
	// Create and link atomically so a failed link leaves no unlinked case.
	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		if err := s.intake.AttachCase(ctx, questionnaireID, userID, c.ID); err != nil {
			return fmt.Errorf("linking case to questionnaire: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, userID string) (*Case, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("case not found: %w", err)
	}
	if c.UserID != userID {
		return nil, fmt.Errorf("case does not belong to user")
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]*Case, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// OwnedBy verifies the case exists and belongs to the user.
func (s *Service) OwnedBy(ctx context.Context, id uuid.UUID, userID string) error {
	_, err := s.Get(ctx, id, userID)
	return err
}

// UpdateStatus moves a case between active and closed.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, userID, status string) (*Case, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	c, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if c.Status == status {
		return c, nil
	}
	c.Status = status
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Rename changes the case title.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, userID, title string) (*Case, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	c, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	c.Title = title
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
