package orders

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

const opChangeOrderStatus = "change_order_status"

// ChangeOrderStatusRequest — целевой статус приготовления.
type ChangeOrderStatusRequest struct {
	ID     string
	Status string
}

// ChangeOrderStatusUseCase переводит заказ по таблице статусов.
// При переходе в PREPARING платёжный сервис получает подтверждение начала приготовления.
type ChangeOrderStatusUseCase struct {
	orders  domain.OrderRepository
	payment domain.PaymentGateway
	opts    Options
}

// NewChangeOrderStatusUseCase создаёт use case смены статуса.
func NewChangeOrderStatusUseCase(orders domain.OrderRepository, payment domain.PaymentGateway, options ...Option) *ChangeOrderStatusUseCase {
	return &ChangeOrderStatusUseCase{orders: orders, payment: payment, opts: buildOptions("change-status", options)}
}

// Execute выполняет переход. Повтор текущего статуса ничего не сохраняет.
func (uc *ChangeOrderStatusUseCase) Execute(ctx context.Context, req ChangeOrderStatusRequest) domain.Result[OrderResponse] {
	var err error
	defer uc.opts.observe(opChangeOrderStatus, time.Now(), &err)

	next, err := domain.NewStatus(req.Status)
	if err != nil {
		err = domain.NewError(domain.KindInvalidArgument, opChangeOrderStatus, err)
		return domain.Fail[OrderResponse](err)
	}

	order, err := loadOrder(ctx, uc.orders, opChangeOrderStatus, req.ID)
	if err != nil {
		return domain.Fail[OrderResponse](err)
	}

	previous := order.Status()
	if previous == next {
		return domain.Ok(OrderResponse{Order: order})
	}
	if err = order.SetStatus(next); err != nil {
		err = domain.NewError(domain.KindInvalidTransition, opChangeOrderStatus, err)
		return domain.Fail[OrderResponse](err)
	}

	if err = uc.orders.Save(ctx, order); err != nil {
		uc.opts.Logger.WithError(err).WithField("order_id", req.ID).Error("save status failed")
		err = domain.NewError(classify(err, domain.KindPersistenceFailure), opChangeOrderStatus, err)
		return domain.Fail[OrderResponse](err)
	}

	logger := uc.opts.Logger.WithFields(log.Fields{
		"order_id": req.ID,
		"from":     previous.String(),
		"to":       next.String(),
	})
	uc.opts.Events.Record(ctx, order, domain.EventOrderStatusChanged, previous.String())
	logger.Info("order status changed")

	if next == domain.StatusPreparing && uc.payment != nil {
		if err = uc.payment.UpdateOrderStatus(ctx, req.ID); err != nil {
			logger.WithError(err).Warn("payment service was not notified about preparation start")
			err = domain.NewError(domain.KindUpstreamUnavailable, opChangeOrderStatus, err)
			return domain.Fail[OrderResponse](err)
		}
	}

	return domain.Ok(OrderResponse{Order: order})
}
