package sqlmigrate

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Dialect описывает различия СУБД, важные для раннера.
type Dialect struct {
	Name string
	// TableDDL создаёт таблицу schema_migrations(version, name, applied_at).
	TableDDL string
	// Placeholder возвращает плейсхолдер n-го параметра (начиная с 1).
	Placeholder func(n int) string
	// Lock захватывает эксклюзивную блокировку миграций на соединении.
	// nil означает, что блокировка не нужна (например, SQLite с одним writer).
	Lock func(ctx context.Context, conn *sql.Conn) (unlock func(), err error)
}

// Runner применяет и откатывает миграции.
type Runner struct {
	db         *sql.DB
	dialect    Dialect
	migrations []Migration
	logger     *log.Entry
}

// NewRunner создаёт раннер. logger может быть nil.
func NewRunner(db *sql.DB, dialect Dialect, migrations []Migration, logger *log.Entry) *Runner {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Runner{
		db:         db,
		dialect:    dialect,
		migrations: migrations,
		logger:     logger.WithField("component", "migrator").WithField("dialect", dialect.Name),
	}
}

// Up применяет up-миграции. steps=0 означает "применить все доступные".
func (r *Runner) Up(ctx context.Context, steps int) error {
	return r.withConn(ctx, func(conn *sql.Conn) error {
		applied, err := r.appliedVersions(ctx, conn)
		if err != nil {
			return err
		}

		done := 0
		for _, m := range r.migrations {
			if applied[m.Version] {
				continue
			}
			insert := fmt.Sprintf(
				"INSERT INTO schema_migrations (version, name) VALUES (%s, %s)",
				r.dialect.Placeholder(1), r.dialect.Placeholder(2),
			)
			if err := r.apply(ctx, conn, m, "up", m.UpSQL, insert, m.Version, m.Name); err != nil {
				return err
			}
			done++
			if steps > 0 && done >= steps {
				break
			}
		}
		return nil
	})
}

// Down откатывает миграции. steps<=0 интерпретируется как 1 шаг.
func (r *Runner) Down(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	byVersion := make(map[int64]Migration, len(r.migrations))
	for _, m := range r.migrations {
		byVersion[m.Version] = m
	}

	return r.withConn(ctx, func(conn *sql.Conn) error {
		versions, err := r.appliedVersionsDesc(ctx, conn, steps)
		if err != nil {
			return err
		}
		for _, version := range versions {
			m, ok := byVersion[version]
			if !ok {
				return fmt.Errorf("cannot rollback unknown migration version %d", version)
			}
			del := "DELETE FROM schema_migrations WHERE version = " + r.dialect.Placeholder(1)
			if err := r.apply(ctx, conn, m, "down", m.DownSQL, del, m.Version); err != nil {
				return err
			}
		}
		return nil
	})
}

// Status возвращает текущую версию и количество применённых миграций.
func (r *Runner) Status(ctx context.Context) (int64, int, error) {
	if _, err := r.db.ExecContext(ctx, r.dialect.TableDDL); err != nil {
		return 0, 0, fmt.Errorf("ensure migration table: %w", err)
	}

	var (
		version int64
		count   int
	)
	if err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0), COUNT(*)
		FROM schema_migrations
	`).Scan(&version, &count); err != nil {
		return 0, 0, fmt.Errorf("query migration status: %w", err)
	}
	return version, count, nil
}

func (r *Runner) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	if r.dialect.Lock != nil {
		unlock, err := r.dialect.Lock(ctx, conn)
		if err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		defer unlock()
	}

	if _, err := conn.ExecContext(ctx, r.dialect.TableDDL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return fn(conn)
}

func (r *Runner) apply(ctx context.Context, conn *sql.Conn, m Migration, direction, body, bookkeeping string, args ...any) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx (%s %d): %w", direction, m.Version, err)
	}
	if _, err := tx.ExecContext(ctx, body); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute %s migration %d_%s: %w", direction, m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record %s migration %d_%s: %w", direction, m.Version, m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s migration %d_%s: %w", direction, m.Version, m.Name, err)
	}

	r.logger.WithFields(log.Fields{
		"version":   m.Version,
		"name":      m.Name,
		"direction": direction,
	}).Info("migration applied")
	return nil
}

func (r *Runner) appliedVersions(ctx context.Context, conn *sql.Conn) (map[int64]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]bool)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration version: %w", err)
		}
		result[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return result, nil
}

func (r *Runner) appliedVersionsDesc(ctx context.Context, conn *sql.Conn, limit int) ([]int64, error) {
	rows, err := conn.QueryContext(ctx,
		"SELECT version FROM schema_migrations ORDER BY version DESC LIMIT "+r.dialect.Placeholder(1), limit)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations desc: %w", err)
	}
	defer rows.Close()

	versions := make([]int64, 0, limit)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration desc: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations desc: %w", err)
	}
	return versions, nil
}
