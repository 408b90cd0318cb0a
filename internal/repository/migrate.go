package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations
var migrations embed.FS

// Migrate применяет встроенные миграции для диалекта.
// Используется goose.Provider, глобальное состояние goose не трогается.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, logger *zap.Logger) error {
	var gooseDialect goose.Dialect
	switch dialect {
	case DialectPostgres:
		gooseDialect = goose.DialectPostgres
	case DialectSQLite:
		gooseDialect = goose.DialectSQLite3
	default:
		return fmt.Errorf("unknown dialect %q", dialect)
	}

	fsys, err := fs.Sub(migrations, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		logger.Info("Migration applied",
			zap.String("dialect", string(dialect)),
			zap.String("source", res.Source.Path),
			zap.Int64("version", res.Source.Version),
			zap.Duration("duration", res.Duration))
	}
	return nil
}
