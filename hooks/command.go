// Package hooks provides observability hooks for dbconn.
package hooks

import "context"

type commandCtxKey struct{}

// WithCommandName annotates ctx with the named command about to execute, so
// hooks can attribute the statement to its registry entry.
func WithCommandName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, commandCtxKey{}, name)
}

// CommandName returns the named command attached to ctx, or "raw" for
// statements executed outside the registry.
func CommandName(ctx context.Context) string {
	if name, ok := ctx.Value(commandCtxKey{}).(string); ok && name != "" {
		return name
	}
	return "raw"
}
