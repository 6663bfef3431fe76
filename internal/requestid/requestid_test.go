package requestid

import (
	"context"
	"testing"
)

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("FromContext(empty) = %q", got)
	}
	ctx := NewContext(context.Background(), "0b7c3a1e-2f6d-4e8a-9c1b-5d4f3e2a1b0c")
	if got := FromContext(ctx); got != "0b7c3a1e-2f6d-4e8a-9c1b-5d4f3e2a1b0c" {
		t.Errorf("FromContext = %q", got)
	}
}
