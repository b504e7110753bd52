package auth

import (
	"context"

	apperrors "warbler/internal/errors"
)

type actorKey struct{}

// Actor is the authenticated user a request runs on behalf of.
type Actor struct {
	UserID    uint
	SessionID string
}

// WithActor returns a copy of ctx carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor attached to ctx, if any.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || a.UserID == 0 {
		return Actor{}, false
	}
	return a, true
}

// RequireActor returns the actor or ErrUnauthorized when the request is anonymous.
func RequireActor(ctx context.Context) (Actor, error) {
	a, ok := ActorFrom(ctx)
	if !ok {
		return Actor{}, apperrors.ErrUnauthorized
	}
	return a, nil
}
