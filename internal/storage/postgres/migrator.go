package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"

	"github.com/vladislavdragonenkov/order-service/internal/storage/sqlmigrate"
)

const migrationLockKey = int64(20417301)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

var dialect = sqlmigrate.Dialect{
	Name: "postgres",
	TableDDL: `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Lock: func(ctx context.Context, conn *sql.Conn) (func(), error) {
		lockCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
		defer cancel()
		if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
			return nil, err
		}
		return func() {
			_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey)
		}, nil
	},
}

// MigrateUp применяет up-миграции.
// steps=0 означает "применить все доступные".
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	runner, err := s.migrationRunner()
	if err != nil {
		return err
	}
	return runner.Up(ctx, steps)
}

// MigrateDown откатывает миграции.
// steps<=0 интерпретируется как 1 шаг.
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	runner, err := s.migrationRunner()
	if err != nil {
		return err
	}
	return runner.Down(ctx, steps)
}

// MigrationStatus возвращает текущую версию и количество применённых миграций.
func (s *Store) MigrationStatus(ctx context.Context) (int64, int, error) {
	runner, err := s.migrationRunner()
	if err != nil {
		return 0, 0, err
	}
	queryCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return runner.Status(queryCtx)
}

func (s *Store) migrationRunner() (*sqlmigrate.Runner, error) {
	if s == nil || s.db == nil {
		return nil, errNotInitialized
	}
	migrations, err := sqlmigrate.Load(migrationsFS, "sql/migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("load postgres migrations: %w", err)
	}
	return sqlmigrate.NewRunner(s.db, dialect, migrations, s.logger), nil
}
