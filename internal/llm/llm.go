package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pavelanni/quizzer/internal/model"
)

const (
	// GroqBaseURL is Groq's OpenAI-compatible endpoint.
	GroqBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the model used for performance reports.
	DefaultModel = "llama-3.1-8b-instant"
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client. An empty baseURL uses the library default
// (api.openai.com).
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Generate sends prompt as a single user message and returns the first
// choice's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &model.TransportError{Op: "LLM API call", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices: %w", model.ErrMalformedResponse)
	}

	text := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "model", c.model, "chars", len(text))
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("LLM returned empty content: %w", model.ErrMalformedResponse)
	}
	return text, nil
}
