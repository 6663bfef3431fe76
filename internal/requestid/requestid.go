// Package requestid carries the per-request correlation id through a
// context, so domain code can log it without importing the HTTP layer.
package requestid

import "context"

type key struct{}

// Header is the HTTP header the id travels in.
const Header = "X-Request-ID"

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key{}, id)
}

// FromContext returns the stored id, or "".
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(key{}).(string); ok {
		return v
	}
	return ""
}
