package repository

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/tempizhere/surl/internal/cache"
	"github.com/tempizhere/surl/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedRepository кеширует GetBySlug поверх другого Repository.
// Ссылки неизменяемы, поэтому кешированная запись остаётся верной; VisitCount в ней снимок.
// Промахи по одному слагу схлопываются в один запрос к хранилищу.
type CachedRepository struct {
	Repository
	cache  cache.Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedRepository оборачивает repo кешем
func NewCachedRepository(repo Repository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedRepository {
	return &CachedRepository{
		Repository: repo,
		cache:      c,
		ttl:        ttl,
		logger:     logger,
	}
}

func cacheKey(slug string) string {
	return "link:" + slug
}

// GetBySlug ищет ссылку в кеше, затем в хранилище.
// Отсутствие ссылки не кешируется, иначе только что созданный слаг отдавал бы 404.
// Общий запрос к хранилищу не наследует отмену первого вызвавшего: его ограничивает
// таймаут самого хранилища, а каждый вызывающий ждёт результат не дольше своего ctx.
func (r *CachedRepository) GetBySlug(ctx context.Context, slug string) (*models.Link, error) {
	key := cacheKey(slug)
	if data, err := r.cache.Get(ctx, key); err == nil {
		var link models.Link
		if err := json.Unmarshal(data, &link); err == nil {
			return &link, nil
		}
		r.logger.Warn("Corrupted cache entry", zap.String("slug", slug))
	}

	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		link, err := r.Repository.GetBySlug(shared, slug)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(link); err == nil {
			if err := r.cache.Set(shared, key, data, r.ttl); err != nil {
				r.logger.Warn("Failed to cache link", zap.String("slug", slug), zap.Error(err))
			}
		}
		return link, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		link := *res.Val.(*models.Link)
		return &link, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close закрывает кеш и хранилище
func (r *CachedRepository) Close() error {
	if err := r.cache.Close(); err != nil {
		r.logger.Warn("Failed to close cache", zap.Error(err))
	}
	return r.Repository.Close()
}
