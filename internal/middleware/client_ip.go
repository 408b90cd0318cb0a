// Package middleware содержит HTTP middleware сервиса:
// определение адреса клиента, cookie владельца, проверку служебного токена и логирование.
package middleware

import (
	"context"
	"net/http"

	"github.com/tempizhere/surl/internal/clientip"
)

type clientIPKey struct{}

// ClientIPMiddleware определяет адрес клиента через цепочку доверенных прокси и кладёт его в контекст
func ClientIPMiddleware(resolver *clientip.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := resolver.FromRequest(r)
			ctx := context.WithValue(r.Context(), clientIPKey{}, ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientIP возвращает адрес клиента, определённый ClientIPMiddleware
func GetClientIP(r *http.Request) (string, bool) {
	ip, ok := r.Context().Value(clientIPKey{}).(string)
	return ip, ok
}
