package surveyclient

import (
	"context"
	"errors"
	"fmt"
)

// State is the engine's position in the session lifecycle. There is no
// backward transition: a session only ever moves toward Terminal.
type State int

const (
	StateInitializing State = iota
	StateAwaitingAnswer
	StateSubmitting
	StateCompleting
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAwaitingAnswer:
		return "awaiting-answer"
	case StateSubmitting:
		return "submitting"
	case StateCompleting:
		return "completing"
	case StateTerminal:
		return "terminal"
	}
	return "unknown"
}

// ErrTerminal is returned by Submit once the session has finished.
var ErrTerminal = errors.New("survey session is complete")

// Backend is the slice of the REST client the engine drives. *Client
// satisfies it.
type Backend interface {
	Initialize(ctx context.Context) (*Session, error)
	RecordAnswer(ctx context.Context, questionnaireID, questionID string, answer []string) (*SubmitResponse, error)
	CreateCase(ctx context.Context, questionnaireID string) (string, error)
	CreateVisit(ctx context.Context, caseID, questionnaireID string) (string, error)
	GenerateResult(ctx context.Context, questionnaireID string) error
	GetConclusion(ctx context.Context, questionnaireID string) (*Conclusion, error)
}

// Progress is the visual progress indicator. Current never decreases and
// never exceeds Max; it plays no part in deciding termination.
type Progress struct {
	Current int
	Max     int
}

// Step is what one successful Submit produced: either the next question or
// the session's conclusion.
type Step struct {
	Done       bool
	Question   *Question
	Progress   Progress
	Conclusion *Conclusion
}

// Engine owns the state of one survey session: the current question, the
// progress counter and the case opened mid-survey. It is not safe for
// concurrent use; drive it from a single goroutine.
type Engine struct {
	backend Backend

	state           State
	questionnaireID string
	current         *Question
	progress        Progress
	caseID          string
	needsCase       bool
	conclusion      *Conclusion
}

// NewEngine creates an engine in the Initializing state.
func NewEngine(backend Backend) *Engine {
	return &Engine{backend: backend, state: StateInitializing}
}

// State returns the engine's current state.
func (e *Engine) State() State { return e.state }

// QuestionnaireID returns the session identifier, empty before Initialize.
func (e *Engine) QuestionnaireID() string { return e.questionnaireID }

// CurrentQuestion returns the question awaiting an answer, nil otherwise.
func (e *Engine) CurrentQuestion() *Question { return e.current }

// Progress returns the progress counter.
func (e *Engine) Progress() Progress { return e.progress }

// CaseID returns the case opened for this session, empty until one exists.
func (e *Engine) CaseID() string { return e.caseID }

// Conclusion returns the conclusion, nil until the session is Terminal.
func (e *Engine) Conclusion() *Conclusion { return e.conclusion }

// Initialize starts the session and returns the first question. It may only
// be called once.
func (e *Engine) Initialize(ctx context.Context) (*Question, error) {
	if e.state != StateInitializing {
		return nil, fmt.Errorf("initialize called in state %s", e.state)
	}
	session, err := e.backend.Initialize(ctx)
	if err != nil {
		return nil, err
	}
	if session.FirstQuestion == nil {
		return nil, fmt.Errorf("no questions available")
	}
	e.questionnaireID = session.QuestionnaireID
	e.current = session.FirstQuestion
	e.progress = Progress{Current: 1}
	e.state = StateAwaitingAnswer
	return e.current, nil
}

// Submit validates and records the answer to the current question, then
// advances the session. An invalid answer fails locally without touching the
// network; a transport failure leaves the engine on the same question so the
// caller can retry. When the backend signals completion the engine runs the
// completion chain (visit, result, conclusion) before reporting Done.
func (e *Engine) Submit(ctx context.Context, answer []string) (*Step, error) {
	switch e.state {
	case StateTerminal:
		return nil, ErrTerminal
	case StateCompleting:
		// A previous completion chain failed partway; finish it instead
		// of recording anything new.
		return e.complete(ctx)
	case StateAwaitingAnswer:
	default:
		return nil, fmt.Errorf("submit called in state %s", e.state)
	}

	answer, err := BuildAnswer(e.current, answer)
	if err != nil {
		return nil, err
	}

	e.state = StateSubmitting
	resp, err := e.backend.RecordAnswer(ctx, e.questionnaireID, e.current.ID, answer)
	if err != nil {
		e.state = StateAwaitingAnswer
		return nil, err
	}

	if resp.SelectedCaseID != "" && e.caseID == "" {
		e.caseID = resp.SelectedCaseID
	}
	if resp.NewCaseFlag && e.caseID == "" {
		e.needsCase = true
	}
	if e.needsCase && e.caseID == "" {
		caseID, err := e.backend.CreateCase(ctx, e.questionnaireID)
		if err == nil {
			e.caseID = caseID
			e.needsCase = false
		}
		// On failure keep needsCase set; the next submit retries. The
		// answer was recorded, so the session still advances.
	}

	if resp.IsComplete {
		e.state = StateCompleting
		return e.complete(ctx)
	}
	if resp.NextQuestion == nil {
		e.state = StateAwaitingAnswer
		return nil, fmt.Errorf("backend returned neither a question nor completion")
	}

	if resp.MaxQuestions > e.progress.Max {
		e.progress.Max = resp.MaxQuestions
	}
	if resp.QuestionCount > e.progress.Current {
		e.progress.Current = resp.QuestionCount
	}
	if e.progress.Max > 0 && e.progress.Current > e.progress.Max {
		e.progress.Current = e.progress.Max
	}

	e.current = resp.NextQuestion
	e.state = StateAwaitingAnswer
	return &Step{Question: e.current, Progress: e.progress}, nil
}

// complete runs the terminal side effects in order: the visit is recorded
// first, the result is generated only after the visit call returned, then
// the conclusion is fetched. Every backend call here is idempotent, so a
// failed chain is re-run from the top on the next Submit.
func (e *Engine) complete(ctx context.Context) (*Step, error) {
	if e.caseID == "" {
		caseID, err := e.backend.CreateCase(ctx, e.questionnaireID)
		if err != nil {
			return nil, fmt.Errorf("creating case: %w", err)
		}
		e.caseID = caseID
		e.needsCase = false
	}

	if _, err := e.backend.CreateVisit(ctx, e.caseID, e.questionnaireID); err != nil {
		return nil, fmt.Errorf("creating visit: %w", err)
	}
	if err := e.backend.GenerateResult(ctx, e.questionnaireID); err != nil {
		return nil, fmt.Errorf("generating result: %w", err)
	}
	conclusion, err := e.backend.GetConclusion(ctx, e.questionnaireID)
	if err != nil {
		return nil, fmt.Errorf("fetching conclusion: %w", err)
	}

	e.conclusion = conclusion
	e.current = nil
	if e.progress.Max > 0 {
		e.progress.Current = e.progress.Max
	}
	e.state = StateTerminal
	return &Step{Done: true, Progress: e.progress, Conclusion: conclusion}, nil
}
