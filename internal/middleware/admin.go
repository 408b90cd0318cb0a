package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// HeaderAdminToken альтернативный заголовок служебного токена
const HeaderAdminToken = "X-Admin-Token"

// AdminTokenFromRequest достаёт токен из Authorization: Bearer или X-Admin-Token
func AdminTokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get(HeaderAdminToken))
}

// ValidAdminToken сравнивает токены за постоянное время. Пустой ожидаемый токен запрещает всё.
func ValidAdminToken(expected, got string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

// AdminTokenMiddleware пропускает только запросы со служебным токеном
func AdminTokenMiddleware(token string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				logger.Warn("Access denied: admin token is not configured",
					zap.String("method", r.Method),
					zap.String("uri", r.RequestURI))
				WriteError(w, http.StatusForbidden, "forbidden", "Access denied")
				return
			}
			if !ValidAdminToken(token, AdminTokenFromRequest(r)) {
				logger.Warn("Access denied: invalid admin token",
					zap.String("method", r.Method),
					zap.String("uri", r.RequestURI),
					zap.String("remote_addr", r.RemoteAddr))
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
