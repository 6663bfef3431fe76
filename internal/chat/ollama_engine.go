package chat

import (
	"context"
	"time"

	"github.com/varsilias/persona-proxy/internal/ollama"
	"github.com/varsilias/persona-proxy/pkg/types"
)

type OllamaEngine struct {
	c *ollama.Client
}

func NewOllamaEngine(c *ollama.Client) *OllamaEngine {
	return &OllamaEngine{
		c: c,
	}
}

func (e *OllamaEngine) Generate(ctx context.Context, model string, input []types.Message) (string, time.Duration, error) {
	msgs := make([]ollama.ChatMessage, 0, len(input))
	for _, m := range input {
		msgs = append(msgs, ollama.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return e.c.Chat(ctx, model, msgs)
}
