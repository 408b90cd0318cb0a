package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/tempizhere/surl/internal/cache"
	"github.com/tempizhere/surl/internal/config"
	"github.com/tempizhere/surl/internal/repository"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix = "surl"
	memoryBackend  = "memory"
)

// storeTarget результат разбора URL базы данных
type storeTarget struct {
	driver  string
	dsn     string
	dialect repository.Dialect
	// single база в памяти SQLite живёт в одном соединении
	single bool
}

// parseDatabaseURL выбирает драйвер по схеме URL.
// postgres:// и postgresql:// идут в pgx; sqlite:, file: и голый путь в modernc sqlite;
// libsql:// и wss:// в libsql; memory:// в хранилище в памяти.
// Для sqlite понимаются формы sqlite://rel.db, sqlite:////abs.db и sqlite::memory:.
func parseDatabaseURL(raw string, cfg *config.Config) (storeTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return storeTarget{}, errors.New("database URL is empty")
	}

	scheme := ""
	if i := strings.IndexByte(raw, ':'); i > 0 {
		scheme = strings.ToLower(raw[:i])
	}

	switch scheme {
	case "memory":
		return storeTarget{driver: memoryBackend}, nil
	case "postgres", "postgresql":
		return storeTarget{driver: "pgx", dsn: raw, dialect: repository.DialectPostgres}, nil
	case "libsql", "wss", "https", "http":
		if _, err := url.Parse(raw); err != nil {
			return storeTarget{}, fmt.Errorf("parse database URL: %w", err)
		}
		return storeTarget{driver: "libsql", dsn: raw, dialect: repository.DialectSQLite}, nil
	case "sqlite", "sqlite3", "file":
		return sqliteTarget(sqlitePath(raw[len(scheme)+1:]), cfg)
	default:
		if strings.Contains(raw, "://") {
			return storeTarget{}, fmt.Errorf("unsupported database scheme %q", scheme)
		}
		return sqliteTarget(raw, cfg)
	}
}

// sqlitePath убирает authority-часть "//" после схемы.
// sqlite:////abs.db даёт /abs.db, sqlite://rel.db даёт rel.db.
func sqlitePath(rest string) string {
	rest = strings.TrimPrefix(rest, "//")
	for strings.HasPrefix(rest, "//") {
		rest = rest[1:]
	}
	return rest
}

func sqliteTarget(path string, cfg *config.Config) (storeTarget, error) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return storeTarget{}, errors.New("sqlite path is empty")
	}
	return storeTarget{
		driver:  "sqlite",
		dsn:     repository.SQLiteDSN(path, cfg.PoolTimeout),
		dialect: repository.DialectSQLite,
		single:  path == ":memory:",
	}, nil
}

// NewRepository открывает хранилище по cfg.DatabaseURL, применяет миграции
// и оборачивает его кешем: Redis, если задан SURL_REDIS_URL, иначе LRU в памяти.
func NewRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Repository, error) {
	target, err := parseDatabaseURL(cfg.DatabaseURL, cfg)
	if err != nil {
		return nil, err
	}

	if target.driver == memoryBackend {
		logger.Info("Using in-memory store")
		return repository.NewMemoryRepository(), nil
	}

	repo, err := openSQL(ctx, target, cfg, logger)
	if err != nil {
		return nil, err
	}

	c, err := newCache(ctx, cfg, logger)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	if c == nil {
		return repo, nil
	}
	return repository.NewCachedRepository(repo, c, cfg.CacheTTL, logger), nil
}

func openSQL(ctx context.Context, target storeTarget, cfg *config.Config, logger *zap.Logger) (*repository.SQLRepository, error) {
	db, err := sql.Open(target.driver, target.dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", target.driver, err)
	}
	poolMax := cfg.PoolMax
	if target.single {
		poolMax = 1
	}
	db.SetMaxOpenConns(poolMax)
	db.SetMaxIdleConns(poolMax)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PoolTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", repository.ErrStoreUnavailable, target.driver, err)
	}

	if err := repository.Migrate(ctx, db, target.dialect, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	repo, err := repository.NewSQLRepository(db, target.dialect, cfg.PoolTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("Store opened",
		zap.String("driver", target.driver),
		zap.String("dialect", string(target.dialect)),
		zap.Int("pool_max", poolMax))
	return repo, nil
}

// newCache возвращает nil, если кеш отключён
func newCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	if cfg.RedisURL != "" {
		c, err := cache.OpenRedis(ctx, cfg.RedisURL, redisKeyPrefix, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Redis link cache", zap.Duration("ttl", cfg.CacheTTL))
		return c, nil
	}
	if cfg.CacheSize > 0 {
		logger.Info("Using in-memory link cache", zap.Int("size", cfg.CacheSize), zap.Duration("ttl", cfg.CacheTTL))
		return cache.NewMemory(cfg.CacheSize, cfg.CacheTTL), nil
	}
	return nil, nil
}
