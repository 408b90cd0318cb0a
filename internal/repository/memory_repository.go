package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/tempizhere/surl/internal/models"
)

// MemoryRepository реализует интерфейс Repository с использованием map.
// Данные живут до остановки процесса.
type MemoryRepository struct {
	mu     sync.RWMutex
	links  map[string]models.Link
	visits []models.VisitRecord
}

// NewMemoryRepository создаёт новый экземпляр MemoryRepository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		links: make(map[string]models.Link),
	}
}

// CreateIfAbsent сохраняет ссылку, если слаг ещё не занят
func (r *MemoryRepository) CreateIfAbsent(ctx context.Context, link *models.Link) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable("insert link", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.links[link.Slug]; exists {
		return false, nil
	}
	stored := *link
	stored.VisitCount = 0
	r.links[link.Slug] = stored
	return true, nil
}

// GetBySlug возвращает ссылку по слагу
func (r *MemoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("get link", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, exists := r.links[slug]
	if !exists {
		return nil, ErrNotFound
	}
	return &link, nil
}

// IncrementVisit увеличивает счётчик переходов
func (r *MemoryRepository) IncrementVisit(ctx context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, exists := r.links[slug]
	if !exists {
		return ErrNotFound
	}
	link.VisitCount++
	r.links[slug] = link
	return nil
}

// AppendVisitRecord дописывает переход в журнал
func (r *MemoryRepository) AppendVisitRecord(ctx context.Context, rec models.VisitRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.links[rec.Slug]; !exists {
		return ErrNotFound
	}
	r.visits = append(r.visits, rec)
	return nil
}

// Visits возвращает копию журнала переходов по слагу
func (r *MemoryRepository) Visits(slug string) []models.VisitRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.VisitRecord
	for _, v := range r.visits {
		if v.Slug == slug {
			out = append(out, v)
		}
	}
	return out
}

// ListByOwner возвращает ссылки владельца
func (r *MemoryRepository) ListByOwner(ctx context.Context, owner string) ([]models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Link
	for _, link := range r.links {
		if owner != "" && link.OwnerToken == owner {
			out = append(out, link)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Slug < out[j].Slug
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Stats возвращает агрегированную статистику
func (r *MemoryRepository) Stats(ctx context.Context) (models.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := models.Stats{Links: int64(len(r.links))}
	for _, link := range r.links {
		stats.Visits += int64(link.VisitCount)
	}
	return stats, nil
}

// Ping всегда успешен
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

// Close ничего не освобождает
func (r *MemoryRepository) Close() error {
	return nil
}
