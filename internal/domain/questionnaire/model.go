package questionnaire

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Question types. The type decides which input widget renders the question
// and what shape of answer is valid.
const (
	TypeText        = "text"
	TypeChoice      = "choice"
	TypeMultiselect = "multiselect"
)

// Questionnaire maps to the questionnaire table. One row is one survey run
// for one user.
type Questionnaire struct {
	ID           uuid.UUID       `db:"id" json:"questionnaire_id"`
	UserID       string          `db:"user_id" json:"user_id"`
	Status       string          `db:"status" json:"status"`
	CaseID       *uuid.UUID      `db:"case_id" json:"case_id,omitempty"`
	Conclusion   *string         `db:"conclusion" json:"conclusion,omitempty"`
	Suggestions  []string        `db:"suggestions" json:"suggestions,omitempty"`
	MaxQuestions int             `db:"max_questions" json:"max_questions"`
	Result       *SessionResult  `db:"result" json:"result,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// SessionResult is the generated report payload, stored as jsonb once
// generate-result runs.
type SessionResult struct {
	Conclusion  string       `json:"conclusion"`
	Suggestions []string     `json:"suggestions,omitempty"`
	Transcript  []Transcript `json:"transcript"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Transcript is one answered question in the generated result.
type Transcript struct {
	Question string   `json:"question"`
	Answer   []string `json:"answer"`
}

// Question maps to the questionnaire_question table. Ordinals start at 1 and
// are dense per session; the wire identifier exposed to clients encodes the
// ordinal ("q1", "q2", ...).
type Question struct {
	ID              uuid.UUID  `db:"id" json:"-"`
	QuestionnaireID uuid.UUID  `db:"questionnaire_id" json:"-"`
	Ordinal         int        `db:"ordinal" json:"-"`
	QID             string     `db:"-" json:"id"`
	Prompt          string     `db:"prompt" json:"question"`
	Type            string     `db:"type" json:"type"`
	Options         []string   `db:"options" json:"options,omitempty"`
	Placeholder     *string    `db:"placeholder" json:"placeholder,omitempty"`
	Initialized     bool       `db:"initialized" json:"initialized"`
	Answer          []string   `db:"answer" json:"answer,omitempty"`
	AnsweredAt      *time.Time `db:"answered_at" json:"answered_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"-"`
}

// Answered reports whether an answer has been recorded for the question.
func (q *Question) Answered() bool { return q.Answer != nil }

// QuestionID formats the wire identifier for an ordinal.
func QuestionID(ordinal int) string { return fmt.Sprintf("q%d", ordinal) }

// ParseQuestionID extracts the ordinal from a wire identifier.
func ParseQuestionID(qid string) (int, error) {
	var ordinal int
	if _, err := fmt.Sscanf(qid, "q%d", &ordinal); err != nil || ordinal < 1 {
		return 0, fmt.Errorf("invalid question id: %s", qid)
	}
	return ordinal, nil
}

// SubmitResult is the record-answer response. Exactly one of NextQuestion or
// IsComplete carries the progression; NewCaseFlag asks the client to open a
// case for the session.
type SubmitResult struct {
	IsComplete     bool       `json:"is_complete"`
	NextQuestion   *Question  `json:"next_question,omitempty"`
	QuestionCount  int        `json:"question_count,omitempty"`
	MaxQuestions   int        `json:"max_questions,omitempty"`
	NewCaseFlag    bool       `json:"new_case_flag,omitempty"`
	SelectedCaseID *uuid.UUID `json:"selected_case_id,omitempty"`
}

// ConclusionView is the get-conclusion response.
type ConclusionView struct {
	Conclusion  string   `json:"conclusion"`
	Suggestions []string `json:"suggestions,omitempty"`
}
