package visit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	visits map[uuid.UUID]*Visit
}

func newMockRepo() *mockRepo {
	return &mockRepo{visits: make(map[uuid.UUID]*Visit)}
}

func (m *mockRepo) Create(_ context.Context, v *Visit) error {
	v.ID = uuid.New()
	v.CreatedAt = time.Now()
	v.UpdatedAt = time.Now()
	m.visits[v.ID] = v
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Visit, error) {
	v, ok := m.visits[id]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *mockRepo) GetByQuestionnaire(_ context.Context, questionnaireID uuid.UUID) (*Visit, error) {
	for _, v := range m.visits {
		if v.QuestionnaireID == questionnaireID {
			return v, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, v *Visit) error {
	m.visits[v.ID] = v
	return nil
}

func (m *mockRepo) ListByCase(_ context.Context, caseID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	var result []*Visit
	for _, v := range m.visits {
		if v.CaseID == caseID {
			result = append(result, v)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]*Visit, int, error) {
	var result []*Visit
	for _, v := range m.visits {
		if v.UserID == userID {
			result = append(result, v)
		}
	}
	return result, len(result), nil
}

// -- Mock case directory --

type mockCases struct {
	owned map[uuid.UUID]string
}

func newMockCases() *mockCases {
	return &mockCases{owned: make(map[uuid.UUID]string)}
}

func (m *mockCases) OwnedBy(_ context.Context, caseID uuid.UUID, userID string) error {
	owner, ok := m.owned[caseID]
	if !ok {
		return fmt.Errorf("case not found")
	}
	if owner != userID {
		return fmt.Errorf("case does not belong to user")
	}
	return nil
}

func newTestService() (*Service, *mockRepo, uuid.UUID) {
	repo := newMockRepo()
	cases := newMockCases()
	caseID := uuid.New()
	cases.owned[caseID] = "user-1"
	return NewService(repo, cases), repo, caseID
}

func TestCreate_NewVisit(t *testing.T) {
	svc, _, caseID := newTestService()

	v, added, err := svc.Create(context.Background(), "user-1", caseID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !added {
		t.Error("expected addToCase true for new visit")
	}
	if v.CaseID != caseID || v.VisitDate.IsZero() {
		t.Errorf("unexpected visit: %+v", v)
	}
}

func TestCreate_IdempotentPerQuestionnaire(t *testing.T) {
	svc, repo, caseID := newTestService()
	qnID := uuid.New()

	first, _, err := svc.Create(context.Background(), "user-1", caseID, qnID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, added, err := svc.Create(context.Background(), "user-1", caseID, qnID)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if added {
		t.Error("expected addToCase false on retry")
	}
	if second.ID != first.ID {
		t.Error("retry created a second visit")
	}
	if len(repo.visits) != 1 {
		t.Errorf("expected 1 visit stored, got %d", len(repo.visits))
	}
}

func TestCreate_RejectsUnknownCase(t *testing.T) {
	svc, _, _ := newTestService()
	if _, _, err := svc.Create(context.Background(), "user-1", uuid.New(), uuid.New()); err == nil {
		t.Error("expected error for unknown case")
	}
}

func TestCreate_RejectsWrongOwner(t *testing.T) {
	svc, _, caseID := newTestService()
	if _, _, err := svc.Create(context.Background(), "user-2", caseID, uuid.New()); err == nil {
		t.Error("expected ownership error")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, caseID := newTestService()
	if _, _, err := svc.Create(context.Background(), "", caseID, uuid.New()); err == nil {
		t.Error("expected error for missing user")
	}
	if _, _, err := svc.Create(context.Background(), "user-1", uuid.Nil, uuid.New()); err == nil {
		t.Error("expected error for missing case")
	}
	if _, _, err := svc.Create(context.Background(), "user-1", caseID, uuid.Nil); err == nil {
		t.Error("expected error for missing questionnaire")
	}
}

func TestUpdateDate(t *testing.T) {
	svc, _, caseID := newTestService()
	v, _, _ := svc.Create(context.Background(), "user-1", caseID, uuid.New())

	when := time.Date(2026, 9, 14, 15, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateDate(context.Background(), v.ID, "user-1", when)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.VisitDate.Equal(when) {
		t.Errorf("expected %v, got %v", when, updated.VisitDate)
	}
	if _, err := svc.UpdateDate(context.Background(), v.ID, "user-1", time.Time{}); err == nil {
		t.Error("expected error for zero date")
	}
}

func TestSetConsultation(t *testing.T) {
	svc, _, caseID := newTestService()
	v, _, _ := svc.Create(context.Background(), "user-1", caseID, uuid.New())

	updated, err := svc.SetConsultation(context.Background(), v.ID, "user-1", "booking-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ConsultationID == nil || *updated.ConsultationID != "booking-42" {
		t.Errorf("unexpected consultation: %v", updated.ConsultationID)
	}
	if _, err := svc.SetConsultation(context.Background(), v.ID, "user-1", "  "); err == nil {
		t.Error("expected error for blank consultation id")
	}
}

func TestSetReportStatus(t *testing.T) {
	svc, _, caseID := newTestService()
	v, _, _ := svc.Create(context.Background(), "user-1", caseID, uuid.New())

	updated, err := svc.SetReportStatus(context.Background(), v.ID, "user-1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.HasNewReport {
		t.Error("expected has_new_report true")
	}
	cleared, err := svc.SetReportStatus(context.Background(), v.ID, "user-1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared.HasNewReport {
		t.Error("expected has_new_report false")
	}
}
