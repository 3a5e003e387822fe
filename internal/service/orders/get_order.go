package orders

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

const opGetOrderByID = "get_order_by_id"

// GetOrderByIDRequest — запрос заказа по идентификатору.
type GetOrderByIDRequest struct {
	ID string
}

// GetOrderByIDUseCase читает заказ из репозитория.
type GetOrderByIDUseCase struct {
	orders domain.OrderRepository
	opts   Options
}

// NewGetOrderByIDUseCase создаёт use case чтения заказа.
func NewGetOrderByIDUseCase(orders domain.OrderRepository, options ...Option) *GetOrderByIDUseCase {
	return &GetOrderByIDUseCase{orders: orders, opts: buildOptions("get-order", options)}
}

// Execute возвращает заказ или ошибку вида NotFound.
func (uc *GetOrderByIDUseCase) Execute(ctx context.Context, req GetOrderByIDRequest) domain.Result[OrderResponse] {
	var err error
	defer uc.opts.observe(opGetOrderByID, time.Now(), &err)

	order, err := loadOrder(ctx, uc.orders, opGetOrderByID, req.ID)
	if err != nil {
		return domain.Fail[OrderResponse](err)
	}
	return domain.Ok(OrderResponse{Order: order})
}

// loadOrder читает заказ и переводит ошибку репозитория в ошибку use case.
func loadOrder(ctx context.Context, orders domain.OrderRepository, op, id string) (*domain.Order, error) {
	order, err := orders.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NewError(classify(err, domain.KindPersistenceFailure), op, err)
	}
	if order == nil {
		return nil, domain.NewError(domain.KindNotFound, op, domain.ErrOrderNotFound)
	}
	return order, nil
}
