package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// Migrate applies every pending migration found at the root of migrations.
// The sql.DB bridge shares the pool's connections and is left open.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log})
	if table != "" {
		goose.SetTableName(table)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, stdlib.OpenDBFromPool(pool), "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...), slog.String("component", "migrator"))
}

// Fatalf only logs; goose returns the error to Migrate afterwards.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...), slog.String("component", "migrator"))
}
