// Package cache содержит кеш результатов поиска ссылок: в памяти процесса или в Redis.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound ключа нет или срок его жизни истёк
	ErrNotFound = errors.New("cache: entry not found")
	// ErrClosed кеш уже закрыт
	ErrClosed = errors.New("cache: closed")
)

// Cache хранилище байтовых значений с TTL.
// ttl <= 0 в Set означает TTL кеша по умолчанию.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
