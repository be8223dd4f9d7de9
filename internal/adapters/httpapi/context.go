package httpapi

import (
	"context"

	"github.com/snu-hive/hostel-desk-api/internal/app/requests"
)

type actorKey struct{}

func WithActor(ctx context.Context, actor requests.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (requests.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(requests.Actor)
	return a, ok && a.ScopeKey != ""
}
