package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wellpath/intake/internal/advisor"
)

type Service struct {
	repo         Repository
	source       advisor.Source
	maxQuestions int
}

func NewService(repo Repository, source advisor.Source, maxQuestions int) *Service {
	return &Service{repo: repo, source: source, maxQuestions: maxQuestions}
}

var validTypes = map[string]bool{
	TypeText:        true,
	TypeChoice:      true,
	TypeMultiselect: true,
}

// intakeQuestions are the pre-seeded questions every session starts with.
// They are created up front so the first question renders without consulting
// the advisor.
var intakeQuestions = []Question{
	{Prompt: "What is your age?", Type: TypeText, Placeholder: strPtr("e.g. 34"), Initialized: true},
	{Prompt: "What is your biological sex?", Type: TypeChoice, Options: []string{"Male", "Female", "Intersex", "Prefer not to say"}, Initialized: true},
	{Prompt: "What is your height?", Type: TypeText, Placeholder: strPtr("e.g. 5'8\" or 173 cm"), Initialized: true},
	{Prompt: "What is your weight?", Type: TypeText, Placeholder: strPtr("e.g. 150 lbs or 68 kg"), Initialized: true},
	{Prompt: "Do you have any chronic conditions?", Type: TypeMultiselect, Options: []string{"Diabetes", "Hypertension", "Asthma", "Heart disease", "None"}, Initialized: true},
}

func strPtr(s string) *string { return &s }

// Initialize starts a new session for the user, seeds the intake questions
// and returns the session together with the first question.
func (s *Service) Initialize(ctx context.Context, userID string) (*Questionnaire, *Question, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, nil, fmt.Errorf("user_id is required")
	}

	session := &Questionnaire{
		UserID:       userID,
		Status:       StatusActive,
		MaxQuestions: s.maxQuestions,
	}

	// The session and its seeded questions land together or not at all.
	var first *Question
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateSession(ctx, session); err != nil {
			return err
		}
		for i, tmpl := range intakeQuestions {
			q := tmpl
			q.QuestionnaireID = session.ID
			q.Ordinal = i + 1
			if err := s.repo.AddQuestion(ctx, &q); err != nil {
				return err
			}
			if first == nil {
				firstCopy := q
				first = &firstCopy
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return session, first, nil
}

// RecordAnswer validates and stores one answer, then decides the next step:
// the following question (seeded or advisor-generated) or completion. A
// resubmission of an already answered question does not re-record; the
// progression response is rebuilt from current state so retries are safe.
func (s *Service) RecordAnswer(ctx context.Context, sessionID uuid.UUID, userID, questionID string, answer []string) (*SubmitResult, error) {
	session, err := s.loadOwnedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	ordinal, err := ParseQuestionID(questionID)
	if err != nil {
		return nil, err
	}
	question, err := s.repo.GetQuestion(ctx, sessionID, ordinal)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", questionID, err)
	}

	if !question.Answered() {
		if session.Status != StatusActive {
			return nil, fmt.Errorf("questionnaire is %s", session.Status)
		}
		if err := validateAnswer(question, answer); err != nil {
			return nil, err
		}
		if err := s.repo.RecordAnswer(ctx, question.ID, answer); err != nil {
			return nil, err
		}
		question.Answer = answer
	}

	return s.progress(ctx, session, question)
}

// progress computes the record-answer response after the given question has
// been answered.
func (s *Service) progress(ctx context.Context, session *Questionnaire, answered *Question) (*SubmitResult, error) {
	res := &SubmitResult{
		MaxQuestions:   session.MaxQuestions,
		SelectedCaseID: session.CaseID,
	}
	if session.CaseID == nil && answered.Ordinal >= len(intakeQuestions) {
		res.NewCaseFlag = true
	}

	if session.Status == StatusCompleted {
		res.IsComplete = true
		return res, nil
	}

	next, err := s.repo.GetQuestion(ctx, session.ID, answered.Ordinal+1)
	if err == nil {
		res.NextQuestion = next
		res.QuestionCount = next.Ordinal
		return res, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	history, err := s.history(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	step, err := s.source.Next(ctx, history, session.MaxQuestions-answered.Ordinal)
	if err != nil {
		return nil, fmt.Errorf("advisor: %w", err)
	}

	if step.Question != nil {
		if !validTypes[string(step.Question.Type)] {
			return nil, fmt.Errorf("advisor returned unknown question type: %s", step.Question.Type)
		}
		q := &Question{
			QuestionnaireID: session.ID,
			Ordinal:         answered.Ordinal + 1,
			Prompt:          step.Question.Prompt,
			Type:            string(step.Question.Type),
			Options:         step.Question.Options,
		}
		if step.Question.Placeholder != "" {
			q.Placeholder = &step.Question.Placeholder
		}
		if err := s.repo.AddQuestion(ctx, q); err != nil {
			return nil, err
		}
		res.NextQuestion = q
		res.QuestionCount = q.Ordinal
		return res, nil
	}

	session.Status = StatusCompleted
	session.Conclusion = &step.Conclusion.Summary
	session.Suggestions = step.Conclusion.Suggestions
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	res.IsComplete = true
	return res, nil
}

// MostRecentQuestion returns the latest unanswered question, or the
// conclusion once the session is complete.
func (s *Service) MostRecentQuestion(ctx context.Context, sessionID uuid.UUID, userID string) (*Question, *ConclusionView, error) {
	session, err := s.loadOwnedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status == StatusCompleted {
		return nil, conclusionView(session), nil
	}
	q, err := s.repo.LatestQuestion(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return q, nil, nil
}

// Conclusion returns the session's conclusion. The session must have reached
// completion; calling before that is an error rather than a trigger.
func (s *Service) Conclusion(ctx context.Context, sessionID uuid.UUID, userID string) (*ConclusionView, error) {
	session, err := s.loadOwnedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusCompleted || session.Conclusion == nil {
		return nil, fmt.Errorf("questionnaire is not complete")
	}
	return conclusionView(session), nil
}

// GenerateResult builds the final report payload from the conclusion and the
// answered transcript. Idempotent: regenerating returns the stored result.
func (s *Service) GenerateResult(ctx context.Context, sessionID uuid.UUID, userID string) (*SessionResult, error) {
	session, err := s.loadOwnedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Result != nil {
		return session.Result, nil
	}
	if session.Status != StatusCompleted || session.Conclusion == nil {
		return nil, fmt.Errorf("questionnaire is not complete")
	}

	questions, err := s.repo.ListQuestions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	result := &SessionResult{
		Conclusion:  *session.Conclusion,
		Suggestions: session.Suggestions,
		GeneratedAt: time.Now().UTC(),
	}
	for _, q := range questions {
		if q.Answered() {
			result.Transcript = append(result.Transcript, Transcript{Question: q.Prompt, Answer: q.Answer})
		}
	}

	session.Result = result
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return result, nil
}

// AttachCase links a case to the session. Linking a second, different case
// is rejected so at most one case ever belongs to a session.
func (s *Service) AttachCase(ctx context.Context, sessionID uuid.UUID, userID string, caseID uuid.UUID) error {
	session, err := s.loadOwnedSession(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if session.CaseID != nil {
		if *session.CaseID == caseID {
			return nil
		}
		return fmt.Errorf("questionnaire already linked to a case")
	}
	session.CaseID = &caseID
	return s.repo.UpdateSession(ctx, session)
}

// CaseID returns the case linked to the session, if any.
func (s *Service) CaseID(ctx context.Context, sessionID uuid.UUID, userID string) (*uuid.UUID, error) {
	session, err := s.loadOwnedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return session.CaseID, nil
}

// IntakeTitle derives a short case title from the reported concern. Falls
// back to a generic title when the concern has not been captured yet.
func (s *Service) IntakeTitle(ctx context.Context, sessionID uuid.UUID, userID string) (string, error) {
	if _, err := s.loadOwnedSession(ctx, sessionID, userID); err != nil {
		return "", err
	}
	questions, err := s.repo.ListQuestions(ctx, sessionID)
	if err != nil {
		return "", err
	}
	for _, q := range questions {
		if q.Initialized || !q.Answered() || q.Type != TypeText {
			continue
		}
		title := strings.TrimSpace(q.Answer[0])
		if title == "" {
			continue
		}
		if len(title) > 60 {
			title = title[:60]
		}
		return title, nil
	}
	return "General consultation", nil
}

// GetSession returns the session for its owner.
func (s *Service) GetSession(ctx context.Context, sessionID uuid.UUID, userID string) (*Questionnaire, error) {
	return s.loadOwnedSession(ctx, sessionID, userID)
}

// ListSessions returns the user's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*Questionnaire, int, error) {
	return s.repo.ListSessionsByUser(ctx, userID, limit, offset)
}

func (s *Service) loadOwnedSession(ctx context.Context, sessionID uuid.UUID, userID string) (*Questionnaire, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("questionnaire_id is required")
	}
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("questionnaire not found: %w", err)
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("questionnaire does not belong to user")
	}
	return session, nil
}

func (s *Service) history(ctx context.Context, sessionID uuid.UUID) ([]advisor.Exchange, error) {
	questions, err := s.repo.ListQuestions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	history := make([]advisor.Exchange, 0, len(questions))
	for _, q := range questions {
		if !q.Answered() {
			continue
		}
		history = append(history, advisor.Exchange{
			Prompt: q.Prompt,
			Type:   advisor.QuestionType(q.Type),
			Answer: q.Answer,
		})
	}
	return history, nil
}

func validateAnswer(q *Question, answer []string) error {
	if len(answer) == 0 {
		return fmt.Errorf("answer is required")
	}
	switch q.Type {
	case TypeText:
		if len(answer) != 1 || strings.TrimSpace(answer[0]) == "" {
			return fmt.Errorf("text answer must be a single non-empty value")
		}
	case TypeChoice:
		if len(answer) != 1 {
			return fmt.Errorf("choice answer must select exactly one option")
		}
		if !optionOf(q, answer[0]) {
			return fmt.Errorf("answer %q is not one of the offered options", answer[0])
		}
	case TypeMultiselect:
		seen := map[string]bool{}
		for _, a := range answer {
			if !optionOf(q, a) {
				return fmt.Errorf("answer %q is not one of the offered options", a)
			}
			if seen[a] {
				return fmt.Errorf("answer %q selected more than once", a)
			}
			seen[a] = true
		}
	default:
		return fmt.Errorf("unknown question type: %s", q.Type)
	}
	return nil
}

func optionOf(q *Question, value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

func conclusionView(session *Questionnaire) *ConclusionView {
	return &ConclusionView{Conclusion: *session.Conclusion, Suggestions: session.Suggestions}
}
