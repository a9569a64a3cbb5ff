package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pavelanni/quizzer/internal/model"
)

// DefaultGeminiModel is used when no model is configured for Gemini.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient generates text with Google's Gemini API.
type GeminiClient struct {
	apiKey string
	model  string
	opts   []option.ClientOption
}

// NewGemini creates a Gemini client. Extra options are passed to genai.NewClient.
func NewGemini(apiKey, modelName string, opts ...option.ClientOption) *GeminiClient {
	if strings.TrimSpace(modelName) == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiClient{
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(modelName),
		opts:   opts,
	}
}

// Model returns the configured model name.
func (g *GeminiClient) Model() string { return g.model }

// Generate sends prompt as a single user turn and concatenates the text
// parts of the first candidate.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", &model.TransportError{Op: "gemini client", Err: err}
	}
	defer cl.Close()

	resp, err := cl.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &model.TransportError{Op: "gemini generate", Err: err}
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates: %w", model.ErrMalformedResponse)
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("gemini returned empty content: %w", model.ErrMalformedResponse)
	}
	return sb.String(), nil
}
