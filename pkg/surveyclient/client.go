// Package surveyclient consumes the intake questionnaire REST API and drives
// a survey session through its state machine: initialize, answer questions
// one at a time, open a case mid-survey when the backend asks for one, and on
// completion record the visit and generate the result.
package surveyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Question is one survey step as served by the backend.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"question"`
	Type        string   `json:"type"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Initialized bool     `json:"initialized"`
}

// Question types.
const (
	TypeText        = "text"
	TypeChoice      = "choice"
	TypeMultiselect = "multiselect"
)

// Session is the initialize response.
type Session struct {
	QuestionnaireID string    `json:"questionnaire_id"`
	FirstQuestion   *Question `json:"first_question"`
}

// SubmitResponse is the record-answer response.
type SubmitResponse struct {
	IsComplete     bool      `json:"is_complete"`
	NextQuestion   *Question `json:"next_question,omitempty"`
	QuestionCount  int       `json:"question_count,omitempty"`
	MaxQuestions   int       `json:"max_questions,omitempty"`
	NewCaseFlag    bool      `json:"new_case_flag,omitempty"`
	SelectedCaseID string    `json:"selected_case_id,omitempty"`
}

// Conclusion is the completed session's summary.
type Conclusion struct {
	Conclusion  string   `json:"conclusion"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("intake api: status %d: %s", e.StatusCode, e.Message)
}

// Client is a thin, stateless wrapper over the REST endpoints. Session state
// lives in the Engine.
type Client struct {
	baseURL string
	userID  string
	token   string
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithToken sets a bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for one user against the given base URL.
func New(baseURL, userID string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		userID:  userID,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserID returns the user the client acts for.
func (c *Client) UserID() string { return c.userID }

// Initialize starts a new questionnaire session.
func (c *Client) Initialize(ctx context.Context) (*Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/questionnaire/initialize", map[string]interface{}{
		"user_id": c.userID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordAnswer submits one answer and returns the progression.
func (c *Client) RecordAnswer(ctx context.Context, questionnaireID, questionID string, answer []string) (*SubmitResponse, error) {
	var out SubmitResponse
	err := c.do(ctx, http.MethodPost, "/questionnaire/record-answer", map[string]interface{}{
		"questionnaire_id": questionnaireID,
		"user_id":          c.userID,
		"question_id":      questionID,
		"answer":           answer,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MostRecentQuestion fetches the latest question for a session, used to
// resume an interrupted survey.
func (c *Client) MostRecentQuestion(ctx context.Context, questionnaireID string) (*Question, error) {
	var out Question
	err := c.do(ctx, http.MethodGet, "/questionnaire/get-most-recent-question?"+c.sessionQuery(questionnaireID), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetConclusion fetches the conclusion of a completed session.
func (c *Client) GetConclusion(ctx context.Context, questionnaireID string) (*Conclusion, error) {
	var out Conclusion
	err := c.do(ctx, http.MethodGet, "/questionnaire/get-conclusion?"+c.sessionQuery(questionnaireID), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateResult asks the backend to build the final report.
func (c *Client) GenerateResult(ctx context.Context, questionnaireID string) error {
	return c.do(ctx, http.MethodPost, "/questionnaire/generate-result", map[string]interface{}{
		"questionnaire_id": questionnaireID,
		"user_id":          c.userID,
	}, nil)
}

// CreateCase opens (or resolves) the case for a session.
func (c *Client) CreateCase(ctx context.Context, questionnaireID string) (string, error) {
	var out struct {
		CaseID  string `json:"caseId"`
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/cases/create", map[string]interface{}{
		"userId":          c.userID,
		"questionnaireId": questionnaireID,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.CaseID, nil
}

// CreateVisit records (or resolves) the visit for a completed session.
func (c *Client) CreateVisit(ctx context.Context, caseID, questionnaireID string) (string, error) {
	var out struct {
		VisitID   string `json:"visitId"`
		AddToCase bool   `json:"addToCase"`
		Message   string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/visit/create", map[string]interface{}{
		"userId":          c.userID,
		"caseId":          caseID,
		"questionnaireId": questionnaireID,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.VisitID, nil
}

func (c *Client) sessionQuery(questionnaireID string) string {
	q := url.Values{}
	q.Set("questionnaire_id", questionnaireID)
	q.Set("user_id", c.userID)
	return q.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
