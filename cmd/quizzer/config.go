package main

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pavelanni/quizzer/internal/llm"
	"github.com/pavelanni/quizzer/internal/model"
	"github.com/pavelanni/quizzer/internal/report"
)

const (
	providerGroq   = "groq"
	providerOpenAI = "openai"
	providerGemini = "gemini"

	defaultOpenAIModel = "gpt-4o-mini"
)

var validate = validator.New()

// quizConfig assembles and validates the quiz parameters.
func quizConfig(v *viper.Viper) (model.QuizConfig, error) {
	cfg := model.QuizConfig{
		Subjects:       splitList(v.GetString("subjects")),
		PerSubject:     v.GetInt("per-subject"),
		TotalQuestions: v.GetInt("total-questions"),
		TestLabel:      strings.TrimSpace(v.GetString("test-label")),
		LLMTimeout:     v.GetDuration("llm-timeout"),
		DBTimeout:      v.GetDuration("db-timeout"),
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// newGenerator builds the report generator for the configured provider. It
// returns a nil generator when the provider's API key is not set, along with
// the name of that key for diagnostics.
func newGenerator(v *viper.Viper) (report.Generator, string, error) {
	modelName := strings.TrimSpace(v.GetString("llm-model"))
	baseURL := strings.TrimSpace(v.GetString("llm-url"))

	switch provider := strings.ToLower(strings.TrimSpace(v.GetString("llm-provider"))); provider {
	case providerGroq, "":
		key := strings.TrimSpace(v.GetString("groq-api-key"))
		if key == "" {
			return nil, "GROQ_API_KEY", nil
		}
		if baseURL == "" {
			baseURL = llm.GroqBaseURL
		}
		return llm.New(baseURL, key, modelName), "GROQ_API_KEY", nil
	case providerOpenAI:
		key := strings.TrimSpace(v.GetString("openai-api-key"))
		if key == "" {
			return nil, "OPENAI_API_KEY", nil
		}
		if modelName == "" {
			modelName = defaultOpenAIModel
		}
		return llm.New(baseURL, key, modelName), "OPENAI_API_KEY", nil
	case providerGemini:
		key := strings.TrimSpace(v.GetString("gemini-api-key"))
		if key == "" {
			return nil, "GEMINI_API_KEY", nil
		}
		return llm.NewGemini(key, modelName), "GEMINI_API_KEY", nil
	default:
		return nil, "", fmt.Errorf("unknown llm-provider %q (want groq, openai or gemini)", provider)
	}
}
