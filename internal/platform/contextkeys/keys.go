// Package contextkeys holds typed context keys shared across packages.
package contextkeys

import "context"

type commandIDKey struct{}

// WithCommandID adds a command ID to the context.
func WithCommandID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, commandIDKey{}, id)
}

// GetCommandID retrieves the command ID from the context.
// Returns the command ID and a boolean indicating whether it was found.
func GetCommandID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(commandIDKey{}).(string)
	return id, ok
}
