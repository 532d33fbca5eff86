package auth

import "context"

type actorKey struct{}

// WithActor returns a copy of ctx carrying the authenticated actor id.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the actor id stored by WithActor.  The second
// result is false for anonymous requests.
func ActorFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(actorKey{}).(string)
	return id, ok && id != ""
}
