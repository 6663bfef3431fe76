// Package models answers whether the configured model can serve completions.
// It backs the /readyz probe; it never picks a model per request.
package models

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var ErrUnknownModel = errors.New("unknown model")

type Manager interface {
	Healthy(ctx context.Context, model string) error
}

type StaticManager struct{ items []string }

func NewStaticManager(items ...string) *StaticManager { return &StaticManager{items: items} }

func (m *StaticManager) Healthy(ctx context.Context, model string) error {
	if slices.Contains(m.items, model) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownModel, model)
}
