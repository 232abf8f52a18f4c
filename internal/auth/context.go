package auth

import (
	"context"

	"github.com/docvault/docvault/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityKey is the context key for the authenticated Identity.
const identityKey contextKey = "identity"

// ContextWithIdentity attaches the authenticated identity to the context.
// The gate calls this after token verification; handlers read it back.
func ContextWithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the identity from the context.
// The second return reports whether one was attached.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok
}

// MustIdentityFromContext retrieves the identity from the context.
// Panics if not present (use only behind the auth gate).
func MustIdentityFromContext(ctx context.Context) model.Identity {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		panic("identity not found in context - ensure the auth gate is applied")
	}
	return identity
}
