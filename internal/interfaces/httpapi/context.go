package httpapi

import (
	"context"

	"github.com/bringolino/bringolino/internal/platform/identity"
)

type contextKey string

const identityContextKey contextKey = "client_identity"

func withIdentity(ctx context.Context, ident identity.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

func identityFromContext(ctx context.Context) (identity.Identity, bool) {
	ident, ok := ctx.Value(identityContextKey).(identity.Identity)
	return ident, ok
}
