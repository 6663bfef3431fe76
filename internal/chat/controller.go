package chat

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/varsilias/persona-proxy/internal/metrics"
	"github.com/varsilias/persona-proxy/internal/observability"
	"github.com/varsilias/persona-proxy/internal/requestid"
	"github.com/varsilias/persona-proxy/pkg/types"
)

type Options struct {
	// Provider names the engine in logs, metrics and spans.
	Provider     string
	Model        string
	SystemPrompt string

	// Timeout bounds one provider call. Zero leaves it to the engine's client.
	Timeout time.Duration
	// MaxInFlight caps concurrent provider calls. Zero means unbounded.
	MaxInFlight int64

	Metrics *metrics.Collector
}

// Controller turns a client conversation into one provider call. It holds no
// per-request state; every field is fixed at construction.
type Controller struct {
	log  *slog.Logger
	eng  Engine
	opts Options
	sem  *semaphore.Weighted
}

func NewController(log *slog.Logger, eng Engine, opts Options) *Controller {
	c := &Controller{log: log, eng: eng, opts: opts}
	if opts.MaxInFlight > 0 {
		c.sem = semaphore.NewWeighted(opts.MaxInFlight)
	}
	return c
}

func (c *Controller) Model() string { return c.opts.Model }

// BuildInput returns [system prompt] + conversation. Client entries claiming
// the system role are dropped so the prompt appears first and exactly once.
func BuildInput(systemPrompt string, conversation []types.Message) []types.Message {
	input := make([]types.Message, 0, len(conversation)+1)
	input = append(input, types.Message{Role: types.RoleSystem, Content: systemPrompt})
	for _, m := range conversation {
		if m.Role == types.RoleSystem {
			continue
		}
		input = append(input, m)
	}
	return input
}

// Chat runs a single turn and returns the provider's reply text.
func (c *Controller) Chat(ctx context.Context, conversation []types.Message) (string, error) {
	input := BuildInput(c.opts.SystemPrompt, conversation)
	reqID := requestid.FromContext(ctx)

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return "", err
		}
		defer c.sem.Release(1)
	}
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	c.log.Debug("chat", "provider", c.opts.Provider, "model", c.opts.Model, "messages", len(input), "req_id", reqID)

	done := c.opts.Metrics.TrackInFlight()
	ctx, span := observability.StartCompletionSpan(ctx, c.opts.Provider, c.opts.Model, len(input))
	text, latency, err := c.eng.Generate(ctx, c.opts.Model, input)
	observability.EndCompletionSpan(span, len(text), latency, err)
	done()

	if err != nil {
		c.opts.Metrics.ObserveCompletion(c.opts.Provider, c.opts.Model, metrics.StatusError, latency)
		c.log.Error("completion failed",
			"err", err,
			"provider", c.opts.Provider,
			"model", c.opts.Model,
			"req_id", reqID,
		)
		return "", err
	}

	c.opts.Metrics.ObserveCompletion(c.opts.Provider, c.opts.Model, metrics.StatusSuccess, latency)
	c.log.Info("completion", "provider", c.opts.Provider, "model", c.opts.Model, "latency_ms", latency.Milliseconds(), "req_id", reqID)
	return text, nil
}
