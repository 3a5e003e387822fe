package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
	"github.com/vladislavdragonenkov/order-service/internal/service/orders"
)

// CreateOrderRequest — тело POST /orders.
type CreateOrderRequest struct {
	CustomerID string   `json:"customerId" validate:"required"`
	ProductIDs []string `json:"productIds" validate:"required,min=1,dive,required"`
}

// UpdatePaymentStatusRequest — тело PATCH /orders/:id/payment-status.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

// ChangeStatusRequest — тело PATCH /orders/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderLineDTO — строка заказа в ответе.
type OrderLineDTO struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
}

// OrderDTO — представление заказа в API.
type OrderDTO struct {
	ID            string         `json:"id"`
	CustomerID    string         `json:"customerId"`
	Status        string         `json:"status,omitempty"`
	PaymentStatus string         `json:"paymentStatus,omitempty"`
	Products      []OrderLineDTO `json:"products"`
	Version       int64          `json:"version"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// OrderDetailsDTO — заказ с клиентом и продуктами.
type OrderDetailsDTO struct {
	Order    OrderDTO         `json:"order"`
	Customer domain.Customer  `json:"customer"`
	Products []domain.Product `json:"products"`
}

// TimelineEventDTO — событие жизненного цикла.
type TimelineEventDTO struct {
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func toOrderDTO(order *domain.Order) OrderDTO {
	items := order.Lines().Items()
	lines := make([]OrderLineDTO, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLineDTO{ID: item.ID().String(), ProductID: item.ProductID().String()})
	}
	return OrderDTO{
		ID:            order.ID().String(),
		CustomerID:    order.CustomerID().String(),
		Status:        order.Status().String(),
		PaymentStatus: order.PaymentStatus().String(),
		Products:      lines,
		Version:       order.Version(),
		CreatedAt:     order.CreatedAt(),
		UpdatedAt:     order.UpdatedAt(),
	}
}

func toOrderDTOs(list []*domain.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(list))
	for _, order := range list {
		out = append(out, toOrderDTO(order))
	}
	return out
}

func toDetailsDTO(details orders.OrderDetailsResponse) OrderDetailsDTO {
	products := details.Products
	if products == nil {
		products = []domain.Product{}
	}
	return OrderDetailsDTO{
		Order:    toOrderDTO(details.Order),
		Customer: details.Customer,
		Products: products,
	}
}

func toTimelineDTOs(events []domain.TimelineEvent) []TimelineEventDTO {
	out := make([]TimelineEventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, TimelineEventDTO{Type: event.Type, Reason: event.Reason, Occurred: event.Occurred})
	}
	return out
}
