package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// gooseLogger joga o log do goose no zap
type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.log.Fatalf(format, v...) }
func (l gooseLogger) Printf(format string, v ...interface{}) { l.log.Infof(format, v...) }

func setupGoose(log *zap.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: log.Sugar()})
	return goose.SetDialect("postgres")
}

// Migrate aplica todas as migrations pendentes.
func Migrate(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	if err := setupGoose(log); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("erro ao aplicar migrations: %w", err)
	}
	return nil
}

// Rollback desfaz a última migration.
func Rollback(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	if err := setupGoose(log); err != nil {
		return err
	}
	return goose.DownContext(ctx, db, migrationsDir)
}

func MigrationStatus(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	if err := setupGoose(log); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, migrationsDir)
}
