package orders

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

const opGetOrdersByStatus = "get_orders_by_status"

// GetOrdersByStatusRequest — фильтры списка заказов. Пустое поле не фильтрует.
type GetOrdersByStatusRequest struct {
	Status     string
	CustomerID string
}

// GetOrdersByStatusUseCase возвращает заказы, отфильтрованные по статусу и клиенту.
type GetOrdersByStatusUseCase struct {
	orders domain.OrderRepository
	opts   Options
}

// NewGetOrdersByStatusUseCase создаёт use case фильтрации заказов.
func NewGetOrdersByStatusUseCase(orders domain.OrderRepository, options ...Option) *GetOrdersByStatusUseCase {
	return &GetOrdersByStatusUseCase{orders: orders, opts: buildOptions("list-orders", options)}
}

// Execute применяет фильтр по статусу, затем по клиенту (логическое И).
// Относительный порядок заказов сохраняется. Ошибкой может закончиться
// только чтение из хранилища.
func (uc *GetOrdersByStatusUseCase) Execute(ctx context.Context, req GetOrdersByStatusRequest) domain.Result[OrdersResponse] {
	var err error
	defer uc.opts.observe(opGetOrdersByStatus, time.Now(), &err)

	all, err := uc.orders.GetAll(ctx)
	if err != nil {
		uc.opts.Logger.WithError(err).Error("list orders failed")
		err = domain.NewError(domain.KindPersistenceFailure, opGetOrdersByStatus, err)
		return domain.Fail[OrdersResponse](err)
	}

	filtered := all
	if req.Status != "" {
		filtered = filterOrders(filtered, func(o *domain.Order) bool {
			return o.Status().String() == req.Status
		})
	}
	if req.CustomerID != "" {
		filtered = filterOrders(filtered, func(o *domain.Order) bool {
			return o.CustomerID().String() == req.CustomerID
		})
	}

	return domain.Ok(OrdersResponse{Orders: filtered})
}

func filterOrders(orders []*domain.Order, keep func(*domain.Order) bool) []*domain.Order {
	out := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
