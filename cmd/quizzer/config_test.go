package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/pavelanni/quizzer/internal/llm"
)

func testViper(t *testing.T, overrides map[string]any) *viper.Viper {
	t.Helper()
	cmd := serveCmd()
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		t.Fatalf("BindPFlags: %v", err)
	}
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestQuizConfigDefaults(t *testing.T) {
	cfg, err := quizConfig(testViper(t, nil))
	if err != nil {
		t.Fatalf("quizConfig: %v", err)
	}
	want := []string{"Maths", "Science", "Social Science"}
	if len(cfg.Subjects) != len(want) {
		t.Fatalf("subjects = %v, want %v", cfg.Subjects, want)
	}
	for i := range want {
		if cfg.Subjects[i] != want[i] {
			t.Errorf("subjects[%d] = %q, want %q", i, cfg.Subjects[i], want[i])
		}
	}
	if cfg.PerSubject != 10 || cfg.TotalQuestions != 30 {
		t.Errorf("per-subject = %d, total = %d", cfg.PerSubject, cfg.TotalQuestions)
	}
	if cfg.TestLabel != "Unified Entrance Test" {
		t.Errorf("label = %q", cfg.TestLabel)
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Errorf("llm timeout = %v", cfg.LLMTimeout)
	}
}

func TestQuizConfigInvalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"no subjects", map[string]any{"subjects": " , "}},
		{"zero per subject", map[string]any{"per-subject": 0}},
		{"zero total", map[string]any{"total-questions": 0}},
		{"empty label", map[string]any{"test-label": "  "}},
		{"zero timeout", map[string]any{"llm-timeout": time.Duration(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := quizConfig(testViper(t, tt.overrides)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name           string
		overrides      map[string]any
		wantNil        bool
		wantCredential string
		wantErr        bool
	}{
		{"groq without key", nil, true, "GROQ_API_KEY", false},
		{"groq with key", map[string]any{"groq-api-key": "gsk_test"}, false, "GROQ_API_KEY", false},
		{"openai without key", map[string]any{"llm-provider": "openai"}, true, "OPENAI_API_KEY", false},
		{"gemini with key", map[string]any{"llm-provider": "Gemini", "gemini-api-key": "g"}, false, "GEMINI_API_KEY", false},
		{"unknown provider", map[string]any{"llm-provider": "cohere"}, true, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, credential, err := newGenerator(testViper(t, tt.overrides))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if (gen == nil) != tt.wantNil {
				t.Errorf("generator nil = %v, want %v", gen == nil, tt.wantNil)
			}
			if credential != tt.wantCredential {
				t.Errorf("credential = %q, want %q", credential, tt.wantCredential)
			}
		})
	}
}

func TestNewGeneratorGroqDefaults(t *testing.T) {
	gen, _, err := newGenerator(testViper(t, map[string]any{"groq-api-key": "k"}))
	if err != nil {
		t.Fatalf("newGenerator: %v", err)
	}
	c, ok := gen.(*llm.Client)
	if !ok {
		t.Fatalf("generator type = %T", gen)
	}
	if c.Model() != llm.DefaultModel {
		t.Errorf("model = %q, want %q", c.Model(), llm.DefaultModel)
	}
}
