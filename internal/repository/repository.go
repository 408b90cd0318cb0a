// Package repository содержит хранилища коротких ссылок и журнала переходов.
package repository

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tempizhere/surl/internal/models"
)

var (
	// ErrNotFound возвращается, если слага нет в хранилище
	ErrNotFound = errors.New("link not found")
	// ErrStoreUnavailable возвращается при недоступности хранилища или истечении ожидания соединения
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Repository определяет интерфейс хранилища ссылок
type Repository interface {
	// CreateIfAbsent атомарно вставляет ссылку, если слаг свободен.
	// Возвращает false без ошибки, если слаг уже занят.
	CreateIfAbsent(ctx context.Context, link *models.Link) (bool, error)
	// GetBySlug возвращает ссылку по слагу или ErrNotFound
	GetBySlug(ctx context.Context, slug string) (*models.Link, error)
	// IncrementVisit увеличивает счётчик переходов
	IncrementVisit(ctx context.Context, slug string) error
	// AppendVisitRecord дописывает строку в журнал переходов
	AppendVisitRecord(ctx context.Context, rec models.VisitRecord) error
	// ListByOwner возвращает ссылки владельца, новые первыми
	ListByOwner(ctx context.Context, owner string) ([]models.Link, error)
	// Stats возвращает количество ссылок и суммарное число переходов
	Stats(ctx context.Context) (models.Stats, error)
	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error
	// Close освобождает ресурсы хранилища
	Close() error
}

// Database определяет интерфейс для работы с базой данных. *sql.DB ему удовлетворяет.
type Database interface {
	// PingContext проверяет соединение с базой данных
	PingContext(ctx context.Context) error
	// Close закрывает соединение с базой данных
	Close() error
	// ExecContext выполняет SQL-команду без возврата результатов
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	// QueryContext выполняет SQL-запрос и возвращает результаты
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	// QueryRowContext выполняет SQL-запрос и возвращает одну строку результата
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
