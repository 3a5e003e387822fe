package domain

import "time"

// Типы событий жизненного цикла заказа.
const (
	EventOrderCreated              = "order.created"
	EventOrderPaymentStatusUpdated = "order.payment_status_updated"
	EventOrderStatusChanged        = "order.status_changed"
)

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	OrderID  string    `json:"order_id"`
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

// OrderEvent — полезная нагрузка событий заказа в outbox.
type OrderEvent struct {
	OrderID       string    `json:"orderId"`
	CustomerID    string    `json:"customerId"`
	Status        string    `json:"status,omitempty"`
	PaymentStatus string    `json:"paymentStatus,omitempty"`
	ProductIDs    []string  `json:"productIds,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewOrderEvent снимает текущее состояние заказа в событие.
func NewOrderEvent(order *Order) OrderEvent {
	ids := order.Lines().ProductIDs()
	productIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		productIDs = append(productIDs, id.String())
	}
	return OrderEvent{
		OrderID:       order.ID().String(),
		CustomerID:    order.CustomerID().String(),
		Status:        order.Status().String(),
		PaymentStatus: order.PaymentStatus().String(),
		ProductIDs:    productIDs,
		OccurredAt:    order.UpdatedAt(),
	}
}
