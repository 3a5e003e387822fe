package app

import (
	"context"
	"testing"

	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/order-service/internal/domain"
	"github.com/vladislavdragonenkov/order-service/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/order-service/internal/service/gateway"
	"github.com/vladislavdragonenkov/order-service/internal/storage/memory"
)

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	producer, err := initKafkaProducer(nil, log.WithField("test", "kafka"))

	require.NoError(t, err)
	assert.Nil(t, producer)
}

func TestCloseKafka(t *testing.T) {
	logger := log.WithField("test", "kafka")

	closeKafka(nil, logger)

	producer := kafka.NewProducerFromSync(mocks.NewSyncProducer(t, nil), logger)
	closeKafka(producer, logger)
}

func TestStopConsumer_Nil(t *testing.T) {
	stopConsumer(nil, log.WithField("test", "kafka"))
}

func TestPaymentStatusApplier(t *testing.T) {
	repo := memory.NewOrderRepository()
	deps := NewDependencies(DependenciesParams{
		Repo:         repo,
		TimelineRepo: memory.NewTimelineRepository(),
		Gateway:      gateway.NewMockGateway(),
	})

	order := domain.NewOrder(domain.NewOrderParams{CustomerID: domain.EntityIDFrom("12345678901")})
	require.NoError(t, repo.Create(context.Background(), order))

	apply := paymentStatusApplier(deps.UseCases.UpdatePaymentStatus)

	require.NoError(t, apply(context.Background(), order.ID().String(), "Aprovado"))
	stored, err := repo.FindByID(context.Background(), order.ID().String())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusApproved, stored.PaymentStatus())

	err = apply(context.Background(), "missing", "Aprovado")
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	err = apply(context.Background(), order.ID().String(), "  ")
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
}
