package domain

import "context"

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ErrOrderAlreadyExists, если запись с таким ID уже есть.
	Create(ctx context.Context, order *Order) error
	// Save применяет изменения заказа с учётом optimistic locking.
	Save(ctx context.Context, order *Order) error
	// FindByID возвращает заказ или ErrOrderNotFound.
	FindByID(ctx context.Context, id string) (*Order, error)
	// GetAll возвращает все заказы в порядке создания.
	GetAll(ctx context.Context) ([]*Order, error)
}
