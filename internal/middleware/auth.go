package middleware

import (
	"Stockpile/internal/auth"
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

type ctxKey int

const claimsKey ctxKey = iota

// TokenVerifier проверяет значение заголовка Authorization.
type TokenVerifier interface {
	Verify(header string) (*auth.Claims, error)
}

// RequireAuth пропускает запрос дальше только с валидным bearer-токеном.
// Без токена — 401 "unauthorized access", с негодным токеном — 401 "invalid token".
func RequireAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.Verify(r.Header.Get("Authorization"))
			if err != nil {
				msg := auth.ErrInvalidToken.Error()
				if errors.Is(err, auth.ErrUnauthorized) {
					msg = auth.ErrUnauthorized.Error()
				}
				logger().Warnw("Auth rejected", "uri", r.RequestURI, "reason", msg, "error", err)
				writeError(w, http.StatusUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// GetClaimsFromContext возвращает claims, положенные RequireAuth.
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

// GetUserIDFromContext возвращает id пользователя из токена.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	c, ok := GetClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return c.UserID, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
