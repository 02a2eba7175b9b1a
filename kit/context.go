package kit

import "context"

// Call describes who invoked an endpoint.
type Call struct {
	Transport string // "mcp", "http", "cli"; "local" when unset
	RequestID string
}

type callKey struct{}

// WithCall attaches c to ctx.
func WithCall(ctx context.Context, c Call) context.Context {
	return context.WithValue(ctx, callKey{}, c)
}

// CallFrom returns the Call attached to ctx.
func CallFrom(ctx context.Context) Call {
	c, _ := ctx.Value(callKey{}).(Call)
	if c.Transport == "" {
		c.Transport = "local"
	}
	return c
}
