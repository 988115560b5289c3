package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/campuscore/campuscore/internal/platform/httpx"
	"github.com/campuscore/campuscore/internal/shared"
)

// Middleware extracts bearer credentials and attaches the caller identity to
// the request context.
type Middleware struct {
	Tokens *TokenManager
	Logger *slog.Logger
}

// Authenticate parses an Authorization bearer header when present. A missing
// or invalid credential leaves the context without an identity; enforcement
// happens at the authorization check.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.Tokens.ParseAccess(raw)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("reject bearer token", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), &shared.Identity{UserID: userID, Email: claims.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthenticated rejects requests that carry no valid identity.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.IdentityFromContext(r.Context()) == nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
