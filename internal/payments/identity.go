package payments

import "context"

// IdentityProvider resolves the authenticated user of a request.
type IdentityProvider interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// IdentityFunc adapts a function to IdentityProvider.
type IdentityFunc func(ctx context.Context) (string, bool)

func (f IdentityFunc) CurrentUserID(ctx context.Context) (string, bool) {
	return f(ctx)
}

// StaticIdentity always reports the same user. Used by operator tooling.
type StaticIdentity string

func (s StaticIdentity) CurrentUserID(context.Context) (string, bool) {
	return string(s), s != ""
}
