package middleware

import (
	"net/http"
	"strings"

	"github.com/labelspy/labelspy-backend/api/responses"
	pkgauth "github.com/labelspy/labelspy-backend/pkg/auth"
	pkgerrors "github.com/labelspy/labelspy-backend/pkg/errors"
	"github.com/labelspy/labelspy-backend/pkg/logger"
)

// Auth verifies the bearer ID token and seeds the request context with
// the caller's identity. Requests without a valid token are rejected.
func Auth(verifier pkgauth.TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity.UID, identity.Email)
			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.UID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth verifies the bearer token when one is present but lets
// anonymous requests through. Invalid tokens are treated as anonymous,
// not rejected, so an expired session can still use the open endpoints.
func OptionalAuth(verifier pkgauth.TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), "optional auth token rejected, continuing anonymously")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), identity.UID, identity.Email)
			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.UID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", false
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", false
	}
	return token, true
}
