package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory LRU кеш в памяти процесса с ограничением числа записей.
// Срок жизни общий для всех записей и задаётся при создании, ttl в Set не учитывается.
type Memory struct {
	lru    *expirable.LRU[string, []byte]
	closed atomic.Bool
}

// NewMemory создаёт кеш. maxEntries <= 0 снимает ограничение размера, ttl <= 0 отключает истечение.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	return &Memory{lru: expirable.NewLRU[string, []byte](maxEntries, nil, ttl)}
}

// Get возвращает значение и поднимает его в начало очереди вытеснения
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	value, ok := m.lru.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

// Set сохраняет значение, вытесняя самую старую запись при переполнении
func (m *Memory) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.lru.Add(key, value)
	return nil
}

// Len количество записей
func (m *Memory) Len() int {
	return m.lru.Len()
}

// Close очищает кеш
func (m *Memory) Close() error {
	m.closed.Store(true)
	m.lru.Purge()
	return nil
}
