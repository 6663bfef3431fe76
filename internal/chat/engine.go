package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/varsilias/persona-proxy/pkg/types"
)

// Engine is the completion provider: one blocking call with the full input
// sequence, returning the aggregated reply text.
type Engine interface {
	Generate(ctx context.Context, model string, input []types.Message) (text string, latency time.Duration, err error)
}

// EchoEngine answers locally without any provider. Handy for working on the
// browser client without an API key.
type EchoEngine struct {
	minLatency time.Duration
}

func NewEchoEngine(minLatency time.Duration) *EchoEngine { return &EchoEngine{minLatency: minLatency} }

func (e *EchoEngine) Generate(ctx context.Context, model string, input []types.Message) (string, time.Duration, error) {
	start := time.Now()
	if e.minLatency > 0 {
		select {
		case <-ctx.Done():
			return "", time.Since(start), ctx.Err()
		case <-time.After(e.minLatency):
		}
	}

	last := ""
	for i := len(input) - 1; i >= 0; i-- {
		if input[i].Role == types.RoleUser {
			last = input[i].Content
			break
		}
	}
	text := fmt.Sprintf("(demo:%s) vous avez dit : %s", model, last)
	return text, time.Since(start), nil
}
