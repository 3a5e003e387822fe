// Package sqlite — встраиваемое хранилище заказов на чистом Go (modernc.org/sqlite).
// Подходит для одиночного инстанса и локального запуска без внешней БД.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/vladislavdragonenkov/order-service/internal/storage/sqlmigrate"
)

const (
	driverName = "sqlite"
	opTimeout  = 5 * time.Second
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

var dialect = sqlmigrate.Dialect{
	Name: "sqlite",
	TableDDL: `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	Placeholder: func(int) string { return "?" },
}

var errNotInitialized = errors.New("sqlite store is not initialized")

// Store оборачивает подключение к файлу SQLite.
type Store struct {
	db     *sql.DB
	logger *log.Entry
}

// Open открывает (или создаёт) базу по пути, включает WAL и применяет миграции.
func Open(ctx context.Context, path string, logger *log.Entry) (*Store, error) {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Один writer: конкурентные транзакции SQLite сериализует сама.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	store := &Store{db: db, logger: logger.WithField("storage", "sqlite")}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrations, err := sqlmigrate.Load(migrationsFS, "sql/migrations/*.sql")
	if err != nil {
		return fmt.Errorf("load sqlite migrations: %w", err)
	}
	if err := sqlmigrate.NewRunner(s.db, dialect, migrations, s.logger).Up(ctx, 0); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

// Ping проверяет доступность базы.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close закрывает базу.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", raw, err)
	}
	return t.UTC(), nil
}
