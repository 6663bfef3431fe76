package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/varsilias/persona-proxy/pkg/types"
)

// ErrNoChoices is returned when the provider answers without any choice.
var ErrNoChoices = errors.New("no completion choices returned")

type OpenAIEngine struct {
	c *openai.Client
}

// NewOpenAIEngine builds an engine for the OpenAI API or any compatible
// endpoint. Empty baseURL keeps the SDK default; nil httpClient keeps the
// SDK's client.
func NewOpenAIEngine(apiKey, baseURL string, httpClient *http.Client) *OpenAIEngine {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIEngine{c: openai.NewClientWithConfig(cfg)}
}

// Client exposes the SDK client so the model manager can share it.
func (e *OpenAIEngine) Client() *openai.Client { return e.c }

// Generate forwards input as-is. Provider errors are returned unwrapped so the
// caller reports the provider's own message.
func (e *OpenAIEngine) Generate(ctx context.Context, model string, input []types.Message) (string, time.Duration, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(input))
	for _, m := range input {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := e.c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", time.Since(start), err
	}
	if len(resp.Choices) == 0 {
		return "", time.Since(start), ErrNoChoices
	}

	var sb strings.Builder
	for _, choice := range resp.Choices {
		sb.WriteString(choice.Message.Content)
	}
	return sb.String(), time.Since(start), nil
}
