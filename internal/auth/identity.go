package auth

import (
	"context"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
)

// Identity is the verified claim carried by a request.
type Identity struct {
	Email string
}

type identityKey struct{}

type userKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// WithUser stores the user record the gate resolved for this request.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func UserFrom(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(*domain.User)
	return u, ok && u != nil
}
