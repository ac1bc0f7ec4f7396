package server

import "context"

type contextKey int

const (
	ctxKeyActorID contextKey = iota
	ctxKeyRequestID
)

func withActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyActorID, id)
}

// ActorIDFromContext returns the acting user's ID from the context, or "".
func ActorIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyActorID).(string)
	return id
}

// RequestIDFromContext returns the request ID from the context, if present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return id
	}
	return ""
}
