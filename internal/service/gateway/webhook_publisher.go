package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

// PaymentWebhookPublisher — OutboxPublisher, который пересылает изменения
// статуса оплаты в webhook платёжного сервиса. Остальные события пропускаются.
type PaymentWebhookPublisher struct {
	payments domain.PaymentGateway
}

// NewPaymentWebhookPublisher создаёт публикатор поверх платёжного gateway.
func NewPaymentWebhookPublisher(payments domain.PaymentGateway) *PaymentWebhookPublisher {
	return &PaymentWebhookPublisher{payments: payments}
}

// Publish вызывает NotifyPaymentService для событий order.payment_status_updated.
func (p *PaymentWebhookPublisher) Publish(ctx context.Context, msg domain.OutboxMessage) error {
	if msg.EventType != domain.EventOrderPaymentStatusUpdated {
		return nil
	}

	var event domain.OrderEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("decode order event %s: %w", msg.ID, err)
	}
	if event.OrderID == "" {
		event.OrderID = msg.AggregateID
	}
	return p.payments.NotifyPaymentService(ctx, event.OrderID, event.PaymentStatus)
}

var _ domain.OutboxPublisher = (*PaymentWebhookPublisher)(nil)
