package surveyclient

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeBackend scripts a session: five seeded questions, then generated
// follow-ups up to totalQuestions, a case flag at caseFlagAt, completion
// after the last question. Call counters let tests assert ordering and
// idempotence.
type fakeBackend struct {
	totalQuestions int
	caseFlagAt     int
	maxQuestions   int

	answered        int
	recordCalls     int
	caseCalls       int
	visitCalls      int
	resultCalls     int
	conclusionCalls int

	failRecord bool
	failCase   bool
	failVisit  bool

	visitBeforeResult bool
	visitCaseID       string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{totalQuestions: 11, caseFlagAt: 6, maxQuestions: 11}
}

func (f *fakeBackend) question(n int) *Question {
	return &Question{
		ID:      fmt.Sprintf("q%d", n),
		Prompt:  fmt.Sprintf("Question %d?", n),
		Type:    TypeChoice,
		Options: []string{"Yes", "No"},
	}
}

func (f *fakeBackend) Initialize(_ context.Context) (*Session, error) {
	return &Session{QuestionnaireID: "qn-1", FirstQuestion: f.question(1)}, nil
}

func (f *fakeBackend) RecordAnswer(_ context.Context, _, questionID string, answer []string) (*SubmitResponse, error) {
	f.recordCalls++
	if f.failRecord {
		return nil, errors.New("network down")
	}
	f.answered++
	resp := &SubmitResponse{MaxQuestions: f.maxQuestions}
	if f.answered >= f.caseFlagAt {
		resp.NewCaseFlag = true
	}
	if f.answered >= f.totalQuestions {
		resp.IsComplete = true
		return resp, nil
	}
	resp.NextQuestion = f.question(f.answered + 1)
	resp.QuestionCount = f.answered + 1
	return resp, nil
}

func (f *fakeBackend) CreateCase(_ context.Context, _ string) (string, error) {
	f.caseCalls++
	if f.failCase {
		return "", errors.New("case create failed")
	}
	return "abc123", nil
}

func (f *fakeBackend) CreateVisit(_ context.Context, caseID, _ string) (string, error) {
	f.visitCalls++
	f.visitCaseID = caseID
	if f.failVisit {
		return "", errors.New("visit create failed")
	}
	if f.resultCalls == 0 {
		f.visitBeforeResult = true
	}
	return "visit-1", nil
}

func (f *fakeBackend) GenerateResult(_ context.Context, _ string) error {
	f.resultCalls++
	return nil
}

func (f *fakeBackend) GetConclusion(_ context.Context, _ string) (*Conclusion, error) {
	f.conclusionCalls++
	return &Conclusion{Conclusion: "done", Suggestions: []string{"rest"}}, nil
}

func runSession(t *testing.T, backend *fakeBackend) *Engine {
	t.Helper()
	engine := NewEngine(backend)
	if _, err := engine.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for engine.State() != StateTerminal {
		if _, err := engine.Submit(context.Background(), []string{"Yes"}); err != nil {
			t.Fatalf("submit in state %s: %v", engine.State(), err)
		}
	}
	return engine
}

func TestEngine_FullSession(t *testing.T) {
	backend := newFakeBackend()
	engine := runSession(t, backend)

	if backend.recordCalls != 11 {
		t.Errorf("expected 11 record calls, got %d", backend.recordCalls)
	}
	if engine.CaseID() != "abc123" {
		t.Errorf("expected cached case id, got %q", engine.CaseID())
	}
	if backend.visitCaseID != "abc123" {
		t.Errorf("visit created with case %q", backend.visitCaseID)
	}
	if engine.Conclusion() == nil || engine.Conclusion().Conclusion != "done" {
		t.Errorf("unexpected conclusion: %+v", engine.Conclusion())
	}
	if p := engine.Progress(); p.Current != p.Max || p.Max != 11 {
		t.Errorf("unexpected final progress: %+v", p)
	}
}

func TestEngine_EmptyAnswerNeverHitsNetwork(t *testing.T) {
	backend := newFakeBackend()
	engine := NewEngine(backend)
	if _, err := engine.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	for _, raw := range [][]string{nil, {""}, {"   "}} {
		_, err := engine.Submit(context.Background(), raw)
		if !errors.Is(err, ErrEmptyAnswer) {
			t.Errorf("raw %v: expected ErrEmptyAnswer, got %v", raw, err)
		}
	}
	if backend.recordCalls != 0 {
		t.Errorf("empty answers reached the network: %d calls", backend.recordCalls)
	}
	if engine.State() != StateAwaitingAnswer {
		t.Errorf("state changed on validation failure: %s", engine.State())
	}
}

func TestEngine_CaseCreatedAtMostOnce(t *testing.T) {
	backend := newFakeBackend()
	runSession(t, backend)

	if backend.caseCalls != 1 {
		t.Errorf("expected exactly 1 case-create call, got %d", backend.caseCalls)
	}
}

func TestEngine_CaseCreateRetriedAfterFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.failCase = true

	engine := NewEngine(backend)
	if _, err := engine.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	// Answer through the case trigger; the failed case create must not
	// block progression.
	for i := 0; i < 6; i++ {
		if _, err := engine.Submit(context.Background(), []string{"Yes"}); err != nil {
			t.Fatalf("submit %d: %v", i+1, err)
		}
	}
	if engine.CaseID() != "" {
		t.Fatalf("case id set despite failures: %q", engine.CaseID())
	}
	firstAttempts := backend.caseCalls
	if firstAttempts == 0 {
		t.Fatal("case create never attempted")
	}

	backend.failCase = false
	if _, err := engine.Submit(context.Background(), []string{"Yes"}); err != nil {
		t.Fatalf("submit after recovery: %v", err)
	}
	if engine.CaseID() != "abc123" {
		t.Errorf("case id not cached after recovery: %q", engine.CaseID())
	}

	// No further attempts once the id is held.
	attempts := backend.caseCalls
	for engine.State() != StateTerminal {
		if _, err := engine.Submit(context.Background(), []string{"Yes"}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if backend.caseCalls != attempts {
		t.Errorf("case create repeated after id was cached: %d -> %d", attempts, backend.caseCalls)
	}
}

func TestEngine_ResultAfterVisit(t *testing.T) {
	backend := newFakeBackend()
	runSession(t, backend)

	if !backend.visitBeforeResult {
		t.Error("result generation ran before visit creation")
	}
	if backend.visitCalls == 0 || backend.resultCalls == 0 || backend.conclusionCalls == 0 {
		t.Errorf("completion chain incomplete: visit=%d result=%d conclusion=%d",
			backend.visitCalls, backend.resultCalls, backend.conclusionCalls)
	}
}

func TestEngine_ProgressMonotonicAndBounded(t *testing.T) {
	backend := newFakeBackend()
	engine := NewEngine(backend)
	if _, err := engine.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	prev := engine.Progress().Current
	for engine.State() != StateTerminal {
		if _, err := engine.Submit(context.Background(), []string{"Yes"}); err != nil {
			t.Fatalf("submit: %v", err)
		}
		p := engine.Progress()
		if p.Current < prev {
			t.Fatalf("progress decreased: %d -> %d", prev, p.Current)
		}
		if p.Max > 0 && p.Current > p.Max {
			t.Fatalf("progress %d exceeds max %d", p.Current, p.Max)
		}
		prev = p.Current
	}
}

func TestEngine_NoSubmitsAfterTerminal(t *testing.T) {
	backend := newFakeBackend()
	engine := runSession(t, backend)

	records := backend.recordCalls
	if _, err := engine.Submit(context.Background(), []string{"Yes"}); !errors.Is(err, ErrTerminal) {
		t.Errorf("expected ErrTerminal, got %v", err)
	}
	if backend.recordCalls != records {
		t.Error("submit after terminal reached the network")
	}
}

func TestEngine_SubmitFailureKeepsQuestion(t *testing.T) {
	backend := newFakeBackend()
	engine := NewEngine(backend)
	if _, err := engine.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	backend.failRecord = true
	before := engine.CurrentQuestion()
	if _, err := engine.Submit(context.Background(), []string{"Yes"}); err == nil {
		t.Fatal("expected transport error")
	}
	if engine.State() != StateAwaitingAnswer {
		t.Errorf("state advanced on failure: %s", engine.State())
	}
	if engine.CurrentQuestion() != before {
		t.Error("current question changed on failure")
	}

	backend.failRecord = false
	step, err := engine.Submit(context.Background(), []string{"Yes"})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if step.Question == nil || step.Question.ID != "q2" {
		t.Errorf("retry did not advance: %+v", step.Question)
	}
}

func TestEngine_CompletionChainRetriedFromCompleting(t *testing.T) {
	backend := newFakeBackend()
	backend.totalQuestions = 5
	backend.caseFlagAt = 5
	backend.failVisit = true

	engine := NewEngine(backend)
	if _, err := engine.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	var lastErr error
	for i := 0; i < 5; i++ {
		_, lastErr = engine.Submit(context.Background(), []string{"Yes"})
	}
	if lastErr == nil {
		t.Fatal("expected completion failure")
	}
	if engine.State() != StateCompleting {
		t.Fatalf("expected Completing after visit failure, got %s", engine.State())
	}
	if backend.resultCalls != 0 {
		t.Error("result generated despite visit failure")
	}

	backend.failVisit = false
	step, err := engine.Submit(context.Background(), nil)
	if err != nil {
		t.Fatalf("completion retry failed: %v", err)
	}
	if !step.Done || engine.State() != StateTerminal {
		t.Errorf("completion retry did not finish: %+v state=%s", step, engine.State())
	}
	if backend.recordCalls != 5 {
		t.Errorf("completion retry re-recorded answers: %d", backend.recordCalls)
	}
}
