package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"wellness-center/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

type staffKey struct{}

// StaffFromContext returns the authenticated staff username, if any.
func StaffFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(staffKey{}).(string)
	return username, ok && username != ""
}

func ContextWithStaff(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, staffKey{}, username)
}

func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	logger = logger.With("component", "AuthMiddleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := validateJWT(r, cfg.JWTSecret)
			if err != nil {
				logger.WarnContext(r.Context(), "Rejected request", slog.String("path", r.URL.Path), slog.Any("error", err))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"message":"Unauthorized"}}`))
				return
			}
			logger.DebugContext(r.Context(), "Authenticated request", slog.String("username", username))
			next.ServeHTTP(w, r.WithContext(ContextWithStaff(r.Context(), username)))
		})
	}
}

func validateJWT(r *http.Request, secret string) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid Authorization header format")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	username, _ := claims["username"].(string)
	if username == "" {
		username, _ = claims.GetSubject()
	}
	return username, nil
}
