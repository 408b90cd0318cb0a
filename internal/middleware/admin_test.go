package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestAdminTokenMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		configured string
		headers    map[string]string
		wantStatus int
	}{
		{"bearer", "s3cret", map[string]string{"Authorization": "Bearer s3cret"}, http.StatusOK},
		{"x-admin-token", "s3cret", map[string]string{HeaderAdminToken: "s3cret"}, http.StatusOK},
		{"wrong token", "s3cret", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
		{"basic scheme", "s3cret", map[string]string{"Authorization": "Basic s3cret"}, http.StatusUnauthorized},
		{"missing", "s3cret", nil, http.StatusUnauthorized},
		{"not configured", "", map[string]string{"Authorization": "Bearer "}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			AdminTokenMiddleware(tt.configured, zap.NewNop())(ok).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
				assert.Contains(t, w.Body.String(), `"code"`)
			}
		})
	}
}

func TestValidAdminToken(t *testing.T) {
	assert.True(t, ValidAdminToken("a", "a"))
	assert.False(t, ValidAdminToken("a", "b"))
	assert.False(t, ValidAdminToken("", ""))
	assert.False(t, ValidAdminToken("a", ""))
}
