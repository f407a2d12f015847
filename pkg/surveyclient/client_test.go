package surveyclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Initialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/questionnaire/initialize" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["user_id"] != "user-1" {
			t.Errorf("unexpected user_id: %v", body["user_id"])
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Session{
			QuestionnaireID: "qn-1",
			FirstQuestion:   &Question{ID: "q1", Prompt: "What is your age?", Type: TypeText},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "user-1")
	session, err := c.Initialize(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.QuestionnaireID != "qn-1" || session.FirstQuestion.ID != "q1" {
		t.Errorf("unexpected session: %+v", session)
	}
}

func TestClient_RecordAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["question_id"] != "q1" {
			t.Errorf("unexpected question_id: %v", body["question_id"])
		}
		json.NewEncoder(w).Encode(SubmitResponse{
			NextQuestion:  &Question{ID: "q2", Type: TypeChoice, Options: []string{"Yes", "No"}},
			QuestionCount: 2,
			MaxQuestions:  11,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "user-1")
	resp, err := c.RecordAnswer(context.Background(), "qn-1", "q1", []string{"34"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.NextQuestion == nil || resp.NextQuestion.ID != "q2" || resp.QuestionCount != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected auth header: %q", got)
		}
		json.NewEncoder(w).Encode(Conclusion{Conclusion: "done"})
	}))
	defer srv.Close()

	c := New(srv.URL, "user-1", WithToken("tok-1"))
	if _, err := c.GetConclusion(context.Background(), "qn-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"questionnaire not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "user-1")
	_, err := c.RecordAnswer(context.Background(), "qn-x", "q1", []string{"34"})
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 APIError, got %v", err)
	}
}

func TestClient_CreateCaseAndVisit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cases/create":
			json.NewEncoder(w).Encode(map[string]string{"caseId": "case-1", "message": "case created"})
		case "/visit/create":
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if body["caseId"] != "case-1" {
				t.Errorf("unexpected caseId: %v", body["caseId"])
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"visitId": "visit-1", "addToCase": true})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "user-1")
	caseID, err := c.CreateCase(context.Background(), "qn-1")
	if err != nil || caseID != "case-1" {
		t.Fatalf("create case: id=%q err=%v", caseID, err)
	}
	visitID, err := c.CreateVisit(context.Background(), caseID, "qn-1")
	if err != nil || visitID != "visit-1" {
		t.Fatalf("create visit: id=%q err=%v", visitID, err)
	}
}
