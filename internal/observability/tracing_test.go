package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInitTracing_NoEndpoint(t *testing.T) {
	ctx := context.Background()
	tp, err := InitTracing(ctx, TracingConfig{ServiceName: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tp.Tracer() == nil {
		t.Fatal("expected non-nil tracer")
	}
	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestCompletionSpan(t *testing.T) {
	ctx, span := StartCompletionSpan(context.Background(), "openai", "gpt-4o-mini", 3)
	if span == nil || ctx == nil {
		t.Fatal("expected span and context")
	}
	// must not panic on either outcome
	EndCompletionSpan(span, 42, 300*time.Millisecond, nil)

	_, span = StartCompletionSpan(context.Background(), "openai", "gpt-4o-mini", 1)
	EndCompletionSpan(span, 0, time.Millisecond, errors.New("invalid_api_key"))
}
