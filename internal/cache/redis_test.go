package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRedis_BadURL(t *testing.T) {
	_, err := OpenRedis(context.Background(), "http://localhost:6379", "surl", time.Minute)
	assert.Error(t, err)
}

// Требует запущенный Redis: SURL_TEST_REDIS_URL=redis://localhost:6379/0
func TestRedis_GetSet(t *testing.T) {
	url := os.Getenv("SURL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SURL_TEST_REDIS_URL is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := OpenRedis(ctx, url, "surl-test-"+uuid.NewString(), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Set(ctx, "abc12", []byte(`{"slug":"abc12"}`), time.Second))
	got, err := c.Get(ctx, "abc12")
	require.NoError(t, err)
	assert.JSONEq(t, `{"slug":"abc12"}`, string(got))
}
