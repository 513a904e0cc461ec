package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"memebot/pkg/crypto"
)

// Auth проверяет Bearer токен против bcrypt-хэша из конфигурации.
// Пустой хэш отключает авторизацию (локальная разработка, SIMU режим).
// Сам токен нигде не хранится: в конфиге лежит только его хэш.
func Auth(tokenHash string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := extractBearerToken(r)
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			if !crypto.CheckPasswordMatch(token, tokenHash) {
				logger.Warn("rejected api request with invalid token",
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr))
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken достаёт токен из заголовка Authorization
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
