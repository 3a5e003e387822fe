package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

func TestMockGateway_SeededCatalog(t *testing.T) {
	m := NewMockGateway()
	ctx := context.Background()

	customer, err := m.GetCustomerByCPF(ctx, "12345678901")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", customer.Name)

	for _, id := range []string{"product-1", "product-2"} {
		_, err := m.GetProductByID(ctx, id)
		assert.NoError(t, err, id)
	}

	_, err = m.GetProductByID(ctx, "product-9")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	_, err = m.GetCustomerByCPF(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestPaymentWebhookPublisher(t *testing.T) {
	m := NewMockGateway()
	publisher := NewPaymentWebhookPublisher(m)
	ctx := context.Background()

	payload, err := json.Marshal(domain.OrderEvent{OrderID: "order-1", PaymentStatus: "Aprovado"})
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(ctx, domain.OutboxMessage{
		ID:          "msg-1",
		AggregateID: "order-1",
		EventType:   domain.EventOrderCreated,
		Payload:     payload,
	}))
	assert.Empty(t, m.Notifications())

	require.NoError(t, publisher.Publish(ctx, domain.OutboxMessage{
		ID:          "msg-2",
		AggregateID: "order-1",
		EventType:   domain.EventOrderPaymentStatusUpdated,
		Payload:     payload,
	}))
	assert.Equal(t, []PaymentNotification{{OrderID: "order-1", PaymentStatus: "Aprovado"}}, m.Notifications())

	m.NotifyErr = errors.New("webhook down")
	err = publisher.Publish(ctx, domain.OutboxMessage{EventType: domain.EventOrderPaymentStatusUpdated, Payload: payload})
	assert.EqualError(t, err, "webhook down")

	err = publisher.Publish(ctx, domain.OutboxMessage{EventType: domain.EventOrderPaymentStatusUpdated, Payload: []byte("{")})
	assert.Error(t, err)
}
