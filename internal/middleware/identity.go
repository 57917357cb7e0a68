package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/streamhub/backend/internal/auth"
	"github.com/streamhub/backend/internal/logging"
	"github.com/streamhub/backend/internal/models"
)

type userCtxKey struct{}

// AccessTokenCookie is the cookie carrying the short-lived access token.
const AccessTokenCookie = "accessToken"

// UserSource resolves verified token subjects to user records.
type UserSource interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// TokenVerifier validates access tokens and returns their claims.
type TokenVerifier interface {
	VerifyAccessToken(token string) (auth.AccessClaims, error)
}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFromContext returns the authenticated user attached by IdentityGate.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(models.User)
	return user, ok
}

// IdentityGate converts a raw access token into a trusted identity. The
// token is read from the accessToken cookie, falling back to the
// Authorization header. The resolved user is attached to the request
// context with credential fields stripped. Every failure mode is rendered
// uniformly as 401 with the underlying reason appended.
func IdentityGate(verifier TokenVerifier, users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				unauthorized(w, "no token provided")
				return
			}

			claims, err := verifier.VerifyAccessToken(token)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}

			user, err := users.FindByID(r.Context(), claims.Subject)
			if err != nil {
				logging.FromContext(r.Context()).Warn("identity gate user lookup failed", "userId", claims.Subject, "error", err)
				unauthorized(w, "user not found")
				return
			}

			user.Password = ""
			user.RefreshToken = ""

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func unauthorized(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "Unauthorized: " + reason,
		"success": false,
	})
}
