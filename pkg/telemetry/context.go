package telemetry

import "context"

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	clientContextKey contextKey = "telemetry_client"
)

// WithClient adds a telemetry client to the context
func WithClient(ctx context.Context, client *Client) context.Context {
	return context.WithValue(ctx, clientContextKey, client)
}

// FromContext retrieves the telemetry client from context
func FromContext(ctx context.Context) *Client {
	if client, ok := ctx.Value(clientContextKey).(*Client); ok {
		return client
	}
	return nil
}

// Track records an event on the client stored in ctx, if any.
func Track(ctx context.Context, kind string, value any, always bool) {
	if client := FromContext(ctx); client != nil {
		client.Track(ctx, kind, value, always)
	}
}

// TrackAction records a user action. Actions belong to the activity
// category and are dropped unless the user shares activity.
func TrackAction(ctx context.Context, action string) {
	Track(ctx, KindAction, action, false)
}
