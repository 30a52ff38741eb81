package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
	"github.com/joao-fontenele/plantnet-market/internal/telemetry"
	"github.com/joao-fontenele/plantnet-market/internal/web"
)

// UserLookup resolves the persisted user for an identity. It returns
// nil, nil when no such user exists.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type Middleware func(http.HandlerFunc) http.HandlerFunc

// Chain applies mws so that the first one runs first.
func Chain(h http.HandlerFunc, mws ...Middleware) http.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Gate enforces the authenticated and role policies. Roles are resolved on
// every request so that a role change applies to the very next call.
type Gate struct {
	verifier *Verifier
	users    UserLookup
	metrics  *telemetry.Marketplace
	logger   *slog.Logger
}

func NewGate(verifier *Verifier, users UserLookup, metrics *telemetry.Marketplace, logger *slog.Logger) *Gate {
	return &Gate{
		verifier: verifier,
		users:    users,
		metrics:  metrics,
		logger:   logger,
	}
}

func (g *Gate) Authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, err := g.verifier.Authenticate(r)
		if err != nil {
			g.deny(w, r, "unauthenticated", err)
			return
		}
		next(w, r)
	}
}

func (g *Gate) RequireRole(role domain.Role) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				g.deny(w, r, "unauthenticated", domain.ErrUnauthenticated)
				return
			}

			user, err := g.users.FindByEmail(r.Context(), id.Email)
			if err != nil {
				g.logger.Error("failed to resolve role", "error", err, "email", id.Email)
				web.WriteError(w, g.logger, http.StatusInternalServerError, "internal server error")
				return
			}

			// A missing user is reported exactly like a role mismatch.
			if user == nil || user.Role != role {
				g.deny(w, r, "role", domain.ErrForbidden)
				return
			}

			next(w, r.WithContext(WithUser(r.Context(), user)))
		}
	}
}

func (g *Gate) Seller(h http.HandlerFunc) http.HandlerFunc {
	return Chain(h, g.Authenticated, g.RequireRole(domain.RoleSeller))
}

func (g *Gate) Admin(h http.HandlerFunc) http.HandlerFunc {
	return Chain(h, g.Authenticated, g.RequireRole(domain.RoleAdmin))
}

func (g *Gate) deny(w http.ResponseWriter, r *http.Request, reason string, err error) {
	g.metrics.AuthzDenied(r.Context(), reason)
	g.logger.Warn("request denied", "reason", reason, "method", r.Method, "path", r.URL.Path, "error", err)

	status := http.StatusUnauthorized
	message := "unauthorized access"
	if errors.Is(err, domain.ErrForbidden) {
		status = http.StatusForbidden
		message = "forbidden access"
	}
	web.WriteError(w, g.logger, status, message)
}
