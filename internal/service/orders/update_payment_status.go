package orders

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

const opUpdatePaymentStatus = "update_order_payment_status"

// UpdateOrderPaymentStatusRequest — новый статус оплаты заказа.
type UpdateOrderPaymentStatusRequest struct {
	ID            string
	PaymentStatus string
}

// UpdateOrderPaymentStatusUseCase заменяет статус оплаты заказа.
// Платёжный сервис отсюда не вызывается: синхронизация идёт через outbox.
type UpdateOrderPaymentStatusUseCase struct {
	orders domain.OrderRepository
	opts   Options
}

// NewUpdateOrderPaymentStatusUseCase создаёт use case обновления статуса оплаты.
func NewUpdateOrderPaymentStatusUseCase(orders domain.OrderRepository, options ...Option) *UpdateOrderPaymentStatusUseCase {
	return &UpdateOrderPaymentStatusUseCase{orders: orders, opts: buildOptions("update-payment-status", options)}
}

// Execute загружает заказ, назначает статус оплаты и сохраняет заказ одним вызовом Save.
func (uc *UpdateOrderPaymentStatusUseCase) Execute(ctx context.Context, req UpdateOrderPaymentStatusRequest) domain.Result[OrderResponse] {
	var err error
	defer uc.opts.observe(opUpdatePaymentStatus, time.Now(), &err)

	order, err := loadOrder(ctx, uc.orders, opUpdatePaymentStatus, req.ID)
	if err != nil {
		return domain.Fail[OrderResponse](err)
	}

	status, err := domain.NewPaymentStatus(req.PaymentStatus)
	if err != nil {
		err = domain.NewError(domain.KindInvalidArgument, opUpdatePaymentStatus, err)
		return domain.Fail[OrderResponse](err)
	}
	order.SetPaymentStatus(status)

	if err = uc.orders.Save(ctx, order); err != nil {
		uc.opts.Logger.WithError(err).WithField("order_id", req.ID).Error("save payment status failed")
		err = domain.NewError(classify(err, domain.KindPersistenceFailure), opUpdatePaymentStatus, err)
		return domain.Fail[OrderResponse](err)
	}

	uc.opts.Events.Record(ctx, order, domain.EventOrderPaymentStatusUpdated, "")
	uc.opts.Logger.WithFields(log.Fields{
		"order_id":       req.ID,
		"payment_status": status.String(),
	}).Info("payment status updated")

	return domain.Ok(OrderResponse{Order: order})
}
