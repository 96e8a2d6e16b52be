// Package auditctx carries request metadata from the HTTP layer into the workflows that
// write audit rows.
package auditctx

import "context"

// Actor describes who issued the request and from where.
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
	RequestID string
}

type actorContextKey struct{}

// WithActor returns a context carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// FromContext extracts the actor stored by WithActor.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// IPAddress returns the client address recorded on ctx, or "".
func IPAddress(ctx context.Context) string {
	actor, _ := FromContext(ctx)
	return actor.IPAddress
}
