package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tempizhere/surl/internal/config"
	"github.com/tempizhere/surl/internal/models"
	"github.com/tempizhere/surl/internal/repository"
	"go.uber.org/zap"
)

func TestParseDatabaseURL(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name        string
		raw         string
		wantDriver  string
		wantDialect repository.Dialect
		wantDSN     string
		wantErr     bool
	}{
		{name: "postgres", raw: "postgres://u:p@localhost:5432/surl", wantDriver: "pgx",
			wantDialect: repository.DialectPostgres, wantDSN: "postgres://u:p@localhost:5432/surl"},
		{name: "postgresql", raw: "postgresql://localhost/surl", wantDriver: "pgx",
			wantDialect: repository.DialectPostgres, wantDSN: "postgresql://localhost/surl"},
		{name: "sqlite scheme", raw: "sqlite://data/surl.db", wantDriver: "sqlite",
			wantDialect: repository.DialectSQLite, wantDSN: repository.SQLiteDSN("data/surl.db", cfg.PoolTimeout)},
		{name: "file prefix", raw: "file:surl.db", wantDriver: "sqlite",
			wantDialect: repository.DialectSQLite, wantDSN: repository.SQLiteDSN("surl.db", cfg.PoolTimeout)},
		{name: "bare path", raw: "/var/lib/surl.db", wantDriver: "sqlite",
			wantDialect: repository.DialectSQLite, wantDSN: repository.SQLiteDSN("/var/lib/surl.db", cfg.PoolTimeout)},
		{name: "libsql", raw: "libsql://db.example.turso.io?authToken=x", wantDriver: "libsql",
			wantDialect: repository.DialectSQLite, wantDSN: "libsql://db.example.turso.io?authToken=x"},
		{name: "sqlite absolute four slashes", raw: "sqlite:////dev/shm/surl.sqlite?mode=rwc", wantDriver: "sqlite",
			wantDialect: repository.DialectSQLite, wantDSN: repository.SQLiteDSN("/dev/shm/surl.sqlite", cfg.PoolTimeout)},
		{name: "sqlite three slashes", raw: "sqlite:///srv/surl.db", wantDriver: "sqlite",
			wantDialect: repository.DialectSQLite, wantDSN: repository.SQLiteDSN("/srv/surl.db", cfg.PoolTimeout)},
		{name: "sqlite opaque path", raw: "sqlite:surl.db", wantDriver: "sqlite",
			wantDialect: repository.DialectSQLite, wantDSN: repository.SQLiteDSN("surl.db", cfg.PoolTimeout)},
		{name: "sqlite in memory", raw: "sqlite::memory:", wantDriver: "sqlite",
			wantDialect: repository.DialectSQLite, wantDSN: repository.SQLiteDSN(":memory:", cfg.PoolTimeout)},
		{name: "file url", raw: "file:///var/lib/surl.db", wantDriver: "sqlite",
			wantDialect: repository.DialectSQLite, wantDSN: repository.SQLiteDSN("/var/lib/surl.db", cfg.PoolTimeout)},
		{name: "memory", raw: "memory://", wantDriver: memoryBackend},
		{name: "empty", raw: "  ", wantErr: true},
		{name: "empty sqlite path", raw: "sqlite://", wantErr: true},
		{name: "unknown scheme", raw: "mysql://localhost/surl", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDatabaseURL(tt.raw, cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, got.driver)
			assert.Equal(t, tt.wantDialect, got.dialect)
			if tt.wantDSN != "" {
				assert.Equal(t, tt.wantDSN, got.dsn)
			}
		})
	}
}

func TestParseDatabaseURL_SQLiteMemory(t *testing.T) {
	for _, raw := range []string{"sqlite://:memory:", "sqlite::memory:"} {
		got, err := parseDatabaseURL(raw, config.Default())
		require.NoError(t, err, raw)
		assert.True(t, got.single, raw)
	}
}

func TestNewRepository_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseURL = "memory://"

	repo, err := NewRepository(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()
	assert.IsType(t, &repository.MemoryRepository{}, repo)
}

func TestNewRepository_SQLiteWithCache(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseURL = "sqlite://" + filepath.Join(t.TempDir(), "surl.sqlite")
	cfg.CacheSize = 16

	ctx := context.Background()
	repo, err := NewRepository(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()
	require.IsType(t, &repository.CachedRepository{}, repo)

	ok, err := repo.CreateIfAbsent(ctx, &models.Link{Slug: "abcde", TargetURL: "https://example.com", CreatedAt: time.Now()})
	require.NoError(t, err)
	require.True(t, ok)

	link, err := repo.GetBySlug(ctx, "abcde")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", link.TargetURL)
	assert.NoError(t, repo.Ping(ctx))
}

func TestNewRepository_SQLiteWithoutCache(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "surl.sqlite")
	cfg.CacheSize = 0

	repo, err := NewRepository(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()
	assert.IsType(t, &repository.SQLRepository{}, repo)
}

func TestNewRepository_BadRedis(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "surl.sqlite")
	cfg.RedisURL = "not-a-redis-url"

	_, err := NewRepository(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewRepository_SQLiteURLForms(t *testing.T) {
	dir := t.TempDir()
	forms := map[string]string{
		"absolute with query": "sqlite://" + filepath.Join(dir, "abs.sqlite") + "?mode=rwc",
		"in memory":           "sqlite::memory:",
	}
	if filepath.IsAbs(dir) {
		forms["four slashes"] = "sqlite:///" + filepath.Join(dir, "four.sqlite") + "?mode=rwc"
	}

	for name, raw := range forms {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.DatabaseURL = raw
			cfg.CacheSize = 0

			ctx := context.Background()
			repo, err := NewRepository(ctx, cfg, zap.NewNop())
			require.NoError(t, err)
			defer repo.Close()

			ok, err := repo.CreateIfAbsent(ctx, &models.Link{Slug: "abcde", TargetURL: "https://example.com", CreatedAt: time.Now()})
			require.NoError(t, err)
			assert.True(t, ok)
			_, err = repo.GetBySlug(ctx, "abcde")
			assert.NoError(t, err)
		})
	}
}
