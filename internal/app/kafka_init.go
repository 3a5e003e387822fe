package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-service/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/order-service/internal/service/orders"
)

// paymentConsumerGroup — consumer group для статусов оплаты.
const paymentConsumerGroup = "order-service"

// initKafkaProducer создаёт producer, если brokers не пустой.
// Возвращает nil, nil при пустом списке брокеров.
func initKafkaProducer(brokers []string, logger *log.Entry) (*kafka.Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers, logger.WithField("component", "kafka-producer"))
	if err != nil {
		return nil, err
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer, nil
}

// startPaymentConsumer подписывается на payments.status и применяет
// статусы оплаты через use case. Сообщения, которые не удалось обработать,
// уходят в DLQ через producer.
func startPaymentConsumer(ctx context.Context, brokers []string, producer *kafka.Producer, updater *orders.UpdateOrderPaymentStatusUseCase, counter kafka.ConsumedCounter, logger *log.Entry) (*kafka.Consumer, error) {
	group, err := kafka.NewConsumerGroup(brokers, paymentConsumerGroup)
	if err != nil {
		return nil, err
	}

	consumerLogger := logger.WithField("component", "payment-consumer")
	handler := kafka.NewPaymentStatusHandler(paymentStatusApplier(updater), consumerLogger)

	opts := []kafka.ConsumerOption{
		kafka.WithConsumerLogger(consumerLogger),
		kafka.WithConsumedCounter(counter),
	}
	if producer != nil {
		opts = append(opts, kafka.WithDLQ(producer, kafka.TopicDeadLetterQueue))
	}

	consumer := kafka.NewConsumer(group, []string{kafka.TopicPaymentStatus}, handler, opts...)
	consumer.Start(ctx)
	return consumer, nil
}

// paymentStatusApplier адаптирует use case к обработчику сообщений.
func paymentStatusApplier(updater *orders.UpdateOrderPaymentStatusUseCase) kafka.PaymentStatusFunc {
	return func(ctx context.Context, orderID, paymentStatus string) error {
		return updater.Execute(ctx, orders.UpdateOrderPaymentStatusRequest{
			ID:            orderID,
			PaymentStatus: paymentStatus,
		}).Err()
	}
}

// stopConsumer останавливает consumer, если он запущен.
func stopConsumer(consumer *kafka.Consumer, logger *log.Entry) {
	if consumer == nil {
		return
	}
	if err := consumer.Stop(); err != nil {
		logger.WithError(err).Warn("failed to stop kafka consumer")
	}
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
