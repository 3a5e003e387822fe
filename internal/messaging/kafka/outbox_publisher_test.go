package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
)

func TestOutboxPublisher_Publish(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	publisher := NewOutboxPublisher(NewProducerFromSync(mockProducer, nil), "")

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var envelope OutboxEnvelope
		if err := json.Unmarshal(value, &envelope); err != nil {
			return err
		}
		if envelope.ID != "msg-1" || envelope.AggregateID != "order-1" || envelope.EventType != domain.EventOrderCreated {
			return errors.New("unexpected envelope")
		}
		if string(envelope.Payload) != `{"orderId":"order-1"}` {
			return errors.New("unexpected payload")
		}
		return nil
	})

	err := publisher.Publish(context.Background(), domain.OutboxMessage{
		ID:            "msg-1",
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     domain.EventOrderCreated,
		Payload:       []byte(`{"orderId":"order-1"}`),
	})
	require.NoError(t, err)
	require.NoError(t, mockProducer.Close())
}

func TestOutboxPublisher_EmptyPayload(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	publisher := NewOutboxPublisher(NewProducerFromSync(mockProducer, nil), TopicOrderEvents)

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var envelope OutboxEnvelope
		if err := json.Unmarshal(value, &envelope); err != nil {
			return err
		}
		if string(envelope.Payload) != "null" {
			return errors.New("expected null payload")
		}
		return nil
	})

	require.NoError(t, publisher.Publish(context.Background(), domain.OutboxMessage{ID: "msg-2"}))
	require.NoError(t, mockProducer.Close())
}

func TestOutboxPublisher_Guards(t *testing.T) {
	var nilPublisher *OutboxTopicPublisher
	assert.Error(t, nilPublisher.Publish(context.Background(), domain.OutboxMessage{}))

	mockProducer := mocks.NewSyncProducer(t, nil)
	publisher := NewOutboxPublisher(NewProducerFromSync(mockProducer, nil), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, publisher.Publish(ctx, domain.OutboxMessage{ID: "msg-3"}), context.Canceled)
	require.NoError(t, mockProducer.Close())
}
