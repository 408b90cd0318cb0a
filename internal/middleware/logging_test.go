package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempizhere/surl/internal/clientip"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	resolver, err := clientip.NewResolver([]string{"127.0.0.1/32"})
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	chain := ClientIPMiddleware(resolver)(LoggingMiddleware(logger)(handler))

	req := httptest.NewRequest(http.MethodGet, "/abc12", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	req.Header.Set(clientip.HeaderForwardedFor, "198.51.100.9")
	w := httptest.NewRecorder()
	chain.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/abc12", fields["uri"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(len("short and stout")), fields["size"])
	assert.Equal(t, "198.51.100.9", fields["client_ip"])
}

func TestLoggingMiddleware_DefaultStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	w := httptest.NewRecorder()
	LoggingMiddleware(zap.New(core))(handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status"])
	_, hasIP := logs.All()[0].ContextMap()["client_ip"]
	assert.False(t, hasIP)
}

func TestLoggingResponseWriter_WriteHeader(t *testing.T) {
	w := httptest.NewRecorder()

	lw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	assert.Equal(t, http.StatusOK, lw.statusCode)
	assert.Equal(t, 0, lw.size)

	lw.WriteHeader(http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, lw.statusCode)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoggingResponseWriter_Write(t *testing.T) {
	w := httptest.NewRecorder()

	lw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	data := []byte("test data")
	n, err := lw.Write(data)

	assert.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, len(data), lw.size)

	moreData := []byte(" more")
	_, err = lw.Write(moreData)

	assert.NoError(t, err)
	assert.Equal(t, len(data)+len(moreData), lw.size)
	assert.Equal(t, string(data)+string(moreData), w.Body.String())
}
