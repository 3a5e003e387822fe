package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт SQLite-реализацию OrderRepository.
// Позиции заказа хранятся JSON-массивом в колонке lines.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.db}
}

type storedLine struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	s := order.Snapshot()
	lines, err := encodeLines(s.Lines)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, status, payment_status, lines, version, seq, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM orders), ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, s.ID, s.CustomerID, s.Status, s.PaymentStatus, lines, s.Version, formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderAlreadyExists
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, status, payment_status, lines, version, created_at, updated_at
		FROM orders WHERE id = ?
	`, id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, status, payment_status, lines, version, created_at, updated_at
		FROM orders ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	s := order.Snapshot()
	lines, err := encodeLines(s.Lines)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET customer_id = ?, status = ?, payment_status = ?, lines = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`, s.CustomerID, s.Status, s.PaymentStatus, lines, formatTime(s.UpdatedAt), s.ID, s.Version)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE id = ?`, s.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check order exists: %w", err)
		}
		if exists == 0 {
			return domain.ErrOrderNotFound
		}
		return domain.ErrOrderVersionConflict
	}

	order.AdvanceVersion()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		s                    domain.OrderSnapshot
		rawLines             string
		createdAt, updatedAt string
	)
	if err := row.Scan(&s.ID, &s.CustomerID, &s.Status, &s.PaymentStatus, &rawLines, &s.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var stored []storedLine
	if err := json.Unmarshal([]byte(rawLines), &stored); err != nil {
		return nil, fmt.Errorf("decode order lines: %w", err)
	}
	for _, l := range stored {
		s.Lines = append(s.Lines, domain.OrderLineSnapshot{ID: l.ID, ProductID: l.ProductID})
	}

	var err error
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return domain.RestoreOrder(s), nil
}

func encodeLines(lines []domain.OrderLineSnapshot) (string, error) {
	stored := make([]storedLine, 0, len(lines))
	for _, l := range lines {
		stored = append(stored, storedLine{ID: l.ID, ProductID: l.ProductID})
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode order lines: %w", err)
	}
	return string(raw), nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
