package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/catatuang/catatuang-go/internal/port"

	"go.uber.org/zap"
)

type contextKey string

const (
	userIDKey  contextKey = "userID"
	idTokenKey contextKey = "idToken"
)

// JWTAuthMiddleware validates Bearer ID tokens and injects the user ID and
// the raw token into context. The token itself stays available because the
// auth endpoints forward it to the identity provider.
func JWTAuthMiddleware(verifier port.TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			tokenString := parts[1]
			userID, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, idTokenKey, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// IDTokenFromContext extracts the verified raw ID token from context.
func IDTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(idTokenKey).(string)
	return v
}
