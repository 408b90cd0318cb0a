package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempizhere/surl/internal/models"
)

func TestMemoryRepository_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	ok, err := repo.CreateIfAbsent(ctx, &models.Link{Slug: "abc12", TargetURL: "https://example.com"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CreateIfAbsent(ctx, &models.Link{Slug: "abc12", TargetURL: "https://evil.example"})
	require.NoError(t, err)
	assert.False(t, ok)

	link, err := repo.GetBySlug(ctx, "abc12")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", link.TargetURL)

	_, err = repo.GetBySlug(ctx, "nope1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_Visits(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.CreateIfAbsent(ctx, &models.Link{Slug: "abc12", TargetURL: "https://example.com"})
	require.NoError(t, err)

	require.NoError(t, repo.IncrementVisit(ctx, "abc12"))
	require.NoError(t, repo.IncrementVisit(ctx, "abc12"))
	assert.ErrorIs(t, repo.IncrementVisit(ctx, "nope1"), ErrNotFound)

	rec := models.VisitRecord{Slug: "abc12", VisitedAt: time.Now(), ClientAddress: "203.0.113.0"}
	require.NoError(t, repo.AppendVisitRecord(ctx, rec))
	assert.ErrorIs(t, repo.AppendVisitRecord(ctx, models.VisitRecord{Slug: "nope1"}), ErrNotFound)
	assert.Equal(t, []models.VisitRecord{rec}, repo.Visits("abc12"))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Links: 1, Visits: 2}, stats)
}

func TestMemoryRepository_ListByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, slug := range []string{"aaaa1", "bbbb2"} {
		_, err := repo.CreateIfAbsent(ctx, &models.Link{Slug: slug, OwnerToken: "owner-1", CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}
	_, err := repo.CreateIfAbsent(ctx, &models.Link{Slug: "cccc3", CreatedAt: base})
	require.NoError(t, err)

	links, err := repo.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "bbbb2", links[0].Slug)

	links, err = repo.ListByOwner(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestMemoryRepository_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.CreateIfAbsent(ctx, &models.Link{Slug: fmt.Sprintf("s%04d", i%50)})
		}(i)
	}
	wg.Wait()

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), stats.Links)
}

func TestMemoryRepository_CancelledContext(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.CreateIfAbsent(ctx, &models.Link{Slug: "abc12", TargetURL: "https://example.com"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = repo.GetBySlug(ctx, "abc12")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}
