package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

// Gate chains token verification and profile resolution for HTTP routes.
type Gate struct {
	tokens   *TokenAuthenticator
	resolver *Resolver
	logger   *slog.Logger
}

// NewGate wires a Gate.
func NewGate(tokens *TokenAuthenticator, resolver *Resolver, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{tokens: tokens, resolver: resolver, logger: logger}
}

// Identify authenticates the Authorization header and resolves the caller.
func (g *Gate) Identify(ctx context.Context, header string) (Caller, error) {
	creds, err := g.tokens.Authenticate(header)
	if err != nil {
		return Caller{}, err
	}
	return g.resolver.Resolve(ctx, creds)
}

// RequireAdminRole is the pure role check behind RequireAdmin.
func RequireAdminRole(caller Caller) error {
	if !caller.IsAdmin() {
		return httpx.Wrap(httpx.ErrForbidden, "Admin only", nil)
	}
	return nil
}

// Authenticate admits any caller with a valid token.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return g.guard(next, nil)
}

// RequireAdmin admits only callers whose resolved role is admin.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return g.guard(next, RequireAdminRole)
}

func (g *Gate) guard(next http.Handler, check func(Caller) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := g.Identify(r.Context(), r.Header.Get("Authorization"))
		if err == nil && check != nil {
			err = check(caller)
		}
		if err != nil {
			g.log(r, err)
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

func (g *Gate) log(r *http.Request, err error) {
	switch {
	case errors.Is(err, httpx.ErrUnauthorized), errors.Is(err, httpx.ErrForbidden):
		g.logger.Debug("auth rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
	default:
		g.logger.Error("auth failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}
