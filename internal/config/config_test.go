package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/intake_test")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.SurveyMaxQuestions != 11 {
		t.Errorf("expected default max questions 11, got %d", cfg.SurveyMaxQuestions)
	}
	if !cfg.IsDev() {
		t.Error("expected default ENV to be development")
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is unset")
	}
}

func TestValidate_ProductionNeedsIssuer(t *testing.T) {
	cfg := &Config{Env: "production", SurveyMaxQuestions: 11, RequestTimeoutSec: 30}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for production without AUTH_ISSUER")
	}

	cfg.AuthIssuer = "https://auth.example.com/realms/intake"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_Bounds(t *testing.T) {
	cfg := &Config{Env: "development", SurveyMaxQuestions: 0, RequestTimeoutSec: 30}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero max questions")
	}

	cfg = &Config{Env: "development", SurveyMaxQuestions: 11, RequestTimeoutSec: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero request timeout")
	}
}
