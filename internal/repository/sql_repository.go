package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tempizhere/surl/internal/models"
	"go.uber.org/zap"
)

// SQLRepository реализует интерфейс Repository поверх database/sql.
// Один тип обслуживает PostgreSQL и SQLite, различаются только тексты запросов.
type SQLRepository struct {
	db      Database
	dialect Dialect
	q       queries
	timeout time.Duration
	logger  *zap.Logger
}

// NewSQLRepository создаёт новый экземпляр SQLRepository.
// timeout ограничивает каждую операцию, включая ожидание свободного соединения пула.
func NewSQLRepository(db Database, dialect Dialect, timeout time.Duration, logger *zap.Logger) (*SQLRepository, error) {
	if db == nil {
		return nil, errors.New("database is nil")
	}
	if dialect != DialectPostgres && dialect != DialectSQLite {
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}
	return &SQLRepository{
		db:      db,
		dialect: dialect,
		q:       newQueries(dialect),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Dialect возвращает диалект хранилища
func (r *SQLRepository) Dialect() Dialect {
	return r.dialect
}

func (r *SQLRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// unavailable оборачивает ошибку драйвера в ErrStoreUnavailable
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// CreateIfAbsent вставляет ссылку, конфликт по slug не считается ошибкой
func (r *SQLRepository) CreateIfAbsent(ctx context.Context, link *models.Link) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.q.insertLink,
		link.Slug, link.TargetURL, nullString(link.OwnerToken), r.dialect.timeArg(link.CreatedAt))
	if err != nil {
		r.logger.Error("Failed to insert link", zap.String("slug", link.Slug), zap.Error(err))
		return false, unavailable("insert link", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("insert link", err)
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (models.Link, error) {
	var (
		link  models.Link
		owner sql.NullString
		count int64
	)
	if err := row.Scan(&link.Slug, &link.TargetURL, &owner, scanTime{&link.CreatedAt}, &count); err != nil {
		return models.Link{}, err
	}
	link.OwnerToken = owner.String
	if count > 0 {
		link.VisitCount = uint64(count)
	}
	return link, nil
}

// GetBySlug возвращает ссылку по слагу
func (r *SQLRepository) GetBySlug(ctx context.Context, slug string) (*models.Link, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	link, err := scanLink(r.db.QueryRowContext(ctx, r.q.selectLink, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get link", zap.String("slug", slug), zap.Error(err))
		return nil, unavailable("get link", err)
	}
	return &link, nil
}

// IncrementVisit увеличивает счётчик переходов
func (r *SQLRepository) IncrementVisit(ctx context.Context, slug string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.q.incrementVisit, slug)
	if err != nil {
		return unavailable("increment visit", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendVisitRecord дописывает переход в журнал
func (r *SQLRepository) AppendVisitRecord(ctx context.Context, rec models.VisitRecord) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.q.insertVisit,
		rec.Slug, r.dialect.timeArg(rec.VisitedAt), nullString(rec.ClientAddress))
	if err != nil {
		return unavailable("append visit", err)
	}
	return nil
}

// ListByOwner возвращает ссылки владельца, новые первыми
func (r *SQLRepository) ListByOwner(ctx context.Context, owner string) ([]models.Link, error) {
	if owner == "" {
		return nil, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.q.selectByOwner, owner)
	if err != nil {
		r.logger.Error("Failed to list links", zap.String("owner", owner), zap.Error(err))
		return nil, unavailable("list links", err)
	}
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, unavailable("scan link", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list links", err)
	}
	return links, nil
}

// Stats возвращает количество ссылок и суммарное число переходов
func (r *SQLRepository) Stats(ctx context.Context) (models.Stats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var stats models.Stats
	if err := r.db.QueryRowContext(ctx, r.q.stats).Scan(&stats.Links, &stats.Visits); err != nil {
		r.logger.Error("Failed to get stats", zap.Error(err))
		return models.Stats{}, unavailable("stats", err)
	}
	return stats, nil
}

// Ping проверяет соединение с базой данных
func (r *SQLRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close закрывает соединение с базой данных
func (r *SQLRepository) Close() error {
	return r.db.Close()
}
