package models

import (
	"context"
	"fmt"

	"github.com/varsilias/persona-proxy/internal/ollama"
)

type OllamaManager struct{ c *ollama.Client }

func NewOllamaManager(c *ollama.Client) *OllamaManager { return &OllamaManager{c: c} }

// Healthy reports the model as available when it is pulled locally.
func (m *OllamaManager) Healthy(ctx context.Context, model string) error {
	items, err := m.c.Tags(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.Name == model || it.Model == model {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not pulled", ErrUnknownModel, model)
}
