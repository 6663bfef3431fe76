package models

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

type OpenAIManager struct{ c *openai.Client }

func NewOpenAIManager(c *openai.Client) *OpenAIManager { return &OpenAIManager{c: c} }

// Healthy retrieves the model; this also proves the API key is accepted.
func (m *OpenAIManager) Healthy(ctx context.Context, model string) error {
	_, err := m.c.GetModel(ctx, model)
	return err
}
