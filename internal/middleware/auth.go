package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/tempizhere/surl/internal/auth"
	"go.uber.org/zap"
)

// OwnerCookie имя cookie с токеном владельца
const OwnerCookie = "surl_owner"

type ownerIDKey struct{}

// OwnerMiddleware проверяет cookie владельца и кладёт ID владельца в контекст.
// Без cookie или с испорченной cookie выпускается новый владелец.
func OwnerMiddleware(tokens *auth.Tokens, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ownerID string
			if cookie, err := r.Cookie(OwnerCookie); err == nil && cookie.Value != "" {
				id, err := tokens.Parse(cookie.Value)
				if err != nil {
					logger.Warn("Invalid owner token", zap.Error(err))
				}
				ownerID = id
			}

			if ownerID == "" {
				ownerID = auth.NewOwnerID()
				token, err := tokens.Issue(ownerID)
				if err != nil {
					logger.Error("Failed to issue owner token", zap.Error(err))
					WriteError(w, http.StatusInternalServerError, "internal", "Internal server error")
					return
				}
				cookie := &http.Cookie{
					Name:     OwnerCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				}
				if ttl := tokens.TTL(); ttl > 0 {
					cookie.Expires = time.Now().Add(ttl)
				}
				http.SetCookie(w, cookie)
			}

			ctx := context.WithValue(r.Context(), ownerIDKey{}, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOwnerID извлекает ID владельца из контекста
func GetOwnerID(r *http.Request) (string, bool) {
	ownerID, ok := r.Context().Value(ownerIDKey{}).(string)
	return ownerID, ok && ownerID != ""
}
